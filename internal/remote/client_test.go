package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nhle/rdq-notify/internal/model"
)

// recorded is what the test server saw for one request.
type recorded struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   string
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recorded) {
	t.Helper()

	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		reqs = append(reqs, recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			header: r.Header.Clone(),
			body:   string(body),
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return srv, &reqs
}

func staticToken(tok string) TokenFunc {
	return func() string { return tok }
}

func TestClientSendsBearerToken(t *testing.T) {
	srv, reqs := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	c := NewClient(srv.URL+"/", staticToken("abc123"), srv.Client(), nil)
	if err := c.Put(context.Background(), "/api/notifications/1/read", nil, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got := (*reqs)[0]
	if got.header.Get("Authorization") != "Bearer abc123" {
		t.Errorf("Authorization = %q", got.header.Get("Authorization"))
	}
	if got.header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set")
	}
	if got.path != "/api/notifications/1/read" {
		t.Errorf("path = %q", got.path)
	}
}

func TestClientSendsEmptyAuthorizationWithoutToken(t *testing.T) {
	srv, reqs := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	c := NewClient(srv.URL, nil, srv.Client(), nil)
	if err := c.Get(context.Background(), "/api/notifications/stats", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}

	got := (*reqs)[0]
	values, ok := got.header["Authorization"]
	if !ok {
		t.Fatal("Authorization header missing")
	}
	if len(values) != 1 || values[0] != "" {
		t.Errorf("Authorization = %q, want empty", values)
	}
}

func TestClientHTTPErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "message field", status: 404, body: `{"message":"Notification not found"}`, want: "Notification not found"},
		{name: "error field", status: 401, body: `{"error":"invalid token"}`, want: "invalid token"},
		{name: "plain text", status: 500, body: "boom\n", want: "boom"},
		{name: "empty body", status: 503, body: "", want: "HTTP error (status 503)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			c := NewClient(srv.URL, staticToken("t"), srv.Client(), nil)
			err := c.Get(context.Background(), "/api/notifications", nil)

			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("error %v is not an *HTTPError", err)
			}
			if httpErr.StatusCode != tt.status || httpErr.Message != tt.want {
				t.Errorf("got status %d message %q", httpErr.StatusCode, httpErr.Message)
			}
			if !IsStatus(err, tt.status) {
				t.Errorf("IsStatus(%d) = false", tt.status)
			}
		})
	}
}

func TestAdapterListNotifications(t *testing.T) {
	body := `{
		"notifications": [
			{"id": 3, "type": "RDQ_OVERDUE", "title": "Overdue", "message": "RDQ-42 is overdue",
			 "read": false, "critical": true, "createdAt": "2026-03-01 09:15:00", "userId": 7,
			 "rdqId": 42, "rdqInfo": {"id": 42, "number": "RDQ-42", "title": "Pump check", "status": "OPEN"}},
			{"id": 2, "type": "RDQ_ASSIGNED", "title": "Assigned", "message": "RDQ-41 assigned",
			 "read": true, "critical": false, "createdAt": "2026-02-28T08:00:00Z", "userId": 7}
		],
		"totalElements": 12, "totalPages": 6, "currentPage": 1, "pageSize": 2,
		"hasNext": true, "hasPrevious": true, "unreadCount": 5, "criticalCount": 1
	}`
	srv, reqs := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	})

	a := NewAdapter(NewClient(srv.URL, staticToken("t"), srv.Client(), nil))
	page, err := a.ListNotifications(context.Background(), model.SearchCriteria{
		Page:     1,
		Size:     2,
		Type:     model.TypePtr(model.TypeRdqOverdue),
		Critical: model.Bool(true),
	})
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}

	q := (*reqs)[0].query
	for key, want := range map[string]string{
		"page":          "1",
		"size":          "2",
		"type":          "RDQ_OVERDUE",
		"critical":      "true",
		"sortBy":        "createdAt",
		"sortDirection": "DESC",
	} {
		if q.Get(key) != want {
			t.Errorf("query %s = %q, want %q", key, q.Get(key), want)
		}
	}
	if q.Has("read") || q.Has("rdqId") {
		t.Errorf("unset filters sent: %v", q)
	}

	if len(page.Notifications) != 2 || page.TotalElements != 12 || !page.HasNext || page.UnreadCount != 5 {
		t.Fatalf("page = %+v", page)
	}
	first := page.Notifications[0]
	wantCreated := time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC)
	if !first.CreatedAt.Equal(wantCreated) {
		t.Errorf("createdAt = %v, want %v", first.CreatedAt, wantCreated)
	}
	if first.RdqInfo == nil || first.RdqInfo.Number != "RDQ-42" || *first.RdqID != 42 {
		t.Errorf("rdq link = %+v / %+v", first.RdqID, first.RdqInfo)
	}
	second := page.Notifications[1]
	if !second.Read || second.ReadAt == nil {
		t.Errorf("read notification without readAt: %+v", second)
	}
}

func TestAdapterMutationsHitEndpoints(t *testing.T) {
	srv, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/notifications/preferences/") {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(model.NotificationPreference{
				ID: 5, NotificationType: model.TypeRdqCancelled, Enabled: false, EmailEnabled: false,
			})
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	a := NewAdapter(NewClient(srv.URL, staticToken("t"), srv.Client(), nil))
	ctx := context.Background()

	if err := a.MarkRead(ctx, 9); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := a.MarkAllRead(ctx); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if err := a.DeleteNotification(ctx, 9); err != nil {
		t.Fatalf("DeleteNotification: %v", err)
	}
	pref, err := a.UpdatePreference(ctx, 5, model.PreferenceUpdate{Enabled: model.Bool(false)})
	if err != nil {
		t.Fatalf("UpdatePreference: %v", err)
	}
	if pref.ID != 5 || pref.Enabled {
		t.Errorf("preference = %+v", pref)
	}

	want := []struct{ method, path string }{
		{http.MethodPut, "/api/notifications/9/read"},
		{http.MethodPut, "/api/notifications/mark-all-read"},
		{http.MethodDelete, "/api/notifications/9"},
		{http.MethodPut, "/api/notifications/preferences/5"},
	}
	if len(*reqs) != len(want) {
		t.Fatalf("requests = %d, want %d", len(*reqs), len(want))
	}
	for i, w := range want {
		if got := (*reqs)[i]; got.method != w.method || got.path != w.path {
			t.Errorf("request %d = %s %s, want %s %s", i, got.method, got.path, w.method, w.path)
		}
	}
	if body := (*reqs)[3].body; body != `{"enabled":false}` {
		t.Errorf("preference body = %s", body)
	}
}

func TestAdapterWrapsHTTPError(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Notification not found"}`)
	})

	a := NewAdapter(NewClient(srv.URL, staticToken("t"), srv.Client(), nil))
	err := a.DeleteNotification(context.Background(), 77)
	if !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("err = %v, want 404", err)
	}
	if !strings.Contains(err.Error(), "Notification not found") {
		t.Errorf("err = %v", err)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2026-03-01T09:15:00Z", want: time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC)},
		{in: "2026-03-01T09:15:00.123", want: time.Date(2026, 3, 1, 9, 15, 0, 123e6, time.UTC)},
		{in: "2026-03-01T09:15:00", want: time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC)},
		{in: "2026-03-01 09:15:00", want: time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC)},
		{in: "", want: time.Time{}},
		{in: "yesterday", want: time.Time{}},
	}

	for _, tt := range tests {
		if got := parseTime(tt.in); !got.Equal(tt.want) {
			t.Errorf("parseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
