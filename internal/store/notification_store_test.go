package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nhle/rdq-notify/internal/model"
	"github.com/nhle/rdq-notify/internal/store"
	"github.com/nhle/rdq-notify/tests/testutil"
)

func TestCreateNotificationDefaults(t *testing.T) {
	s := testutil.NewTestStore(t)

	n := testutil.Seed(t, s, model.Notification{
		UserID:  1,
		Type:    model.TypeRdqOverdue,
		Title:   "RDQ-42 overdue",
		Message: "The meeting date has passed",
		RdqInfo: &model.RdqSummary{ID: 42, Number: "RDQ-42", Title: "Pump check", Status: "OPEN"},
	})

	if n.ID == 0 || n.CreatedAt.IsZero() {
		t.Errorf("id/createdAt not set: %+v", n)
	}
	if !n.Critical {
		t.Error("overdue notification not critical by default")
	}
	if n.Read || n.ReadAt != nil {
		t.Error("new notification is read")
	}
	if n.RdqID == nil || *n.RdqID != 42 || n.RdqInfo.Number != "RDQ-42" {
		t.Errorf("rdq link = %v / %+v", n.RdqID, n.RdqInfo)
	}

	if _, err := s.CreateNotification(context.Background(), model.Notification{UserID: 1, Type: "BOGUS", Title: "x"}); err == nil {
		t.Error("unknown type accepted")
	}
	if _, err := s.CreateNotification(context.Background(), model.Notification{UserID: 1, Type: model.TypeGeneralInfo}); err == nil {
		t.Error("empty title accepted")
	}
}

func TestListNotificationsFiltersAndPages(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		typ := model.TypeRdqAssigned
		if i%5 == 0 {
			typ = model.TypeRdqCancelled
		}
		testutil.Seed(t, s, model.Notification{
			UserID:    1,
			Type:      typ,
			Title:     "n",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	testutil.Seed(t, s, model.Notification{UserID: 2, Type: model.TypeRdqAssigned, Title: "other user"})

	page, err := s.ListNotifications(ctx, 1, model.SearchCriteria{Page: 0, Size: 10})
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(page.Notifications) != 10 || page.TotalElements != 25 || page.TotalPages != 3 || !page.HasNext || page.HasPrevious {
		t.Fatalf("page 0 = %d items, total %d, pages %d, next %v", len(page.Notifications), page.TotalElements, page.TotalPages, page.HasNext)
	}
	if !page.Notifications[0].CreatedAt.After(page.Notifications[1].CreatedAt) {
		t.Error("default sort is not newest first")
	}
	if page.UnreadCount != 25 || page.CriticalCount != 5 {
		t.Errorf("counters unread %d critical %d, want 25 and 5", page.UnreadCount, page.CriticalCount)
	}

	last, err := s.ListNotifications(ctx, 1, model.SearchCriteria{Page: 2, Size: 10})
	if err != nil {
		t.Fatalf("ListNotifications page 2: %v", err)
	}
	if len(last.Notifications) != 5 || last.HasNext || !last.HasPrevious {
		t.Errorf("page 2 = %d items, next %v, prev %v", len(last.Notifications), last.HasNext, last.HasPrevious)
	}

	critical, err := s.ListNotifications(ctx, 1, model.SearchCriteria{
		Size:          50,
		Type:          model.TypePtr(model.TypeRdqCancelled),
		Critical:      model.Bool(true),
		SortDirection: model.SortAsc,
	})
	if err != nil {
		t.Fatalf("ListNotifications filtered: %v", err)
	}
	if critical.TotalElements != 5 {
		t.Errorf("filtered total = %d, want 5", critical.TotalElements)
	}
	for _, n := range critical.Notifications {
		if n.Type != model.TypeRdqCancelled || n.UserID != 1 {
			t.Errorf("filter leaked %+v", n)
		}
	}
	if !critical.Notifications[0].CreatedAt.Before(critical.Notifications[1].CreatedAt) {
		t.Error("ASC sort not applied")
	}

	if _, err := s.ListNotifications(ctx, 1, model.SearchCriteria{Type: model.TypePtr("NOPE")}); err == nil {
		t.Error("unknown type filter accepted")
	}
}

func TestMarkReadKeepsFirstReadAt(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	n := testutil.Seed(t, s, model.Notification{UserID: 1, Type: model.TypeRdqUpdated, Title: "updated"})

	if err := s.MarkRead(ctx, 1, n.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	first, err := s.GetNotification(ctx, 1, n.ID)
	if err != nil {
		t.Fatalf("GetNotification: %v", err)
	}
	if !first.Read || first.ReadAt == nil {
		t.Fatalf("not read: %+v", first)
	}

	time.Sleep(5 * time.Millisecond)
	if err := s.MarkRead(ctx, 1, n.ID); err != nil {
		t.Fatalf("second MarkRead: %v", err)
	}
	second, _ := s.GetNotification(ctx, 1, n.ID)
	if !second.ReadAt.Equal(*first.ReadAt) {
		t.Errorf("readAt changed from %v to %v", first.ReadAt, second.ReadAt)
	}

	if err := s.MarkRead(ctx, 2, n.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("MarkRead by another user = %v, want ErrNotFound", err)
	}
}

func TestMarkAllReadAndDelete(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		ids = append(ids, testutil.Seed(t, s, model.Notification{UserID: 1, Type: model.TypeRdqCommented, Title: "c"}).ID)
	}
	if err := s.MarkRead(ctx, 1, ids[0]); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	changed, err := s.MarkAllRead(ctx, 1)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if changed != 2 {
		t.Errorf("changed = %d, want 2", changed)
	}
	if n, _ := s.UnreadCount(ctx, 1); n != 0 {
		t.Errorf("unread = %d, want 0", n)
	}

	if err := s.DeleteNotification(ctx, 1, ids[1]); err != nil {
		t.Fatalf("DeleteNotification: %v", err)
	}
	if err := s.DeleteNotification(ctx, 1, ids[1]); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}

	stats, err := s.Stats(ctx, 1)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalCount != 2 || stats.ByType[model.TypeRdqCommented] != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestStatsCountsUnreadCritical(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	testutil.Seed(t, s, model.Notification{UserID: 3, Type: model.TypeSystemMaintenance, Title: "maintenance"})
	read := testutil.Seed(t, s, model.Notification{UserID: 3, Type: model.TypeRdqCancelled, Title: "cancelled"})
	testutil.Seed(t, s, model.Notification{UserID: 3, Type: model.TypeRdqCreated, Title: "created"})
	if err := s.MarkRead(ctx, 3, read.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	stats, err := s.Stats(ctx, 3)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalCount != 3 || stats.UnreadCount != 2 || stats.CriticalCount != 1 {
		t.Errorf("stats = %+v, want total 3 unread 2 critical 1", stats)
	}
	if len(stats.ByType) != 3 {
		t.Errorf("byType = %v", stats.ByType)
	}
}
