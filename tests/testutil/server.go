package testutil

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nhle/rdq-notify/internal/model"
	"github.com/nhle/rdq-notify/internal/server"
	"github.com/nhle/rdq-notify/internal/store"
)

// TestSecret signs tokens for test servers.
const TestSecret = "test-secret"

// NewTestStore opens an in-memory notification store with the schema
// applied. It is closed when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})
	return s
}

// NewTestServer starts the notification API over a fresh in-memory store.
// ratePerMinute 0 disables rate limiting. Both are closed when the test
// completes.
func NewTestServer(t *testing.T, ratePerMinute int) (*httptest.Server, *store.SQLiteStore) {
	t.Helper()

	st := NewTestStore(t)
	srv := server.New(st, model.ServerConfig{
		JWTSecret:     TestSecret,
		RatePerMinute: ratePerMinute,
	}, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts, st
}

// Token mints a session token for userID signed with TestSecret.
func Token(t *testing.T, userID int64) string {
	t.Helper()

	tok, err := server.IssueToken([]byte(TestSecret), userID, time.Hour)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	return tok
}

// Seed stores n and returns it as the store reports it back.
func Seed(t *testing.T, st *store.SQLiteStore, n model.Notification) *model.Notification {
	t.Helper()

	created, err := st.CreateNotification(context.Background(), n)
	if err != nil {
		t.Fatalf("seeding notification %q: %v", n.Title, err)
	}
	return created
}

// SeedInbox gives userID unread assignment notifications followed by read
// ones.
func SeedInbox(t *testing.T, st *store.SQLiteStore, userID int64, unread, read int) {
	t.Helper()

	for i := 0; i < unread+read; i++ {
		Seed(t, st, model.Notification{
			UserID: userID,
			Type:   model.TypeRdqAssigned,
			Title:  "assigned",
			Read:   i >= unread,
		})
	}
}
