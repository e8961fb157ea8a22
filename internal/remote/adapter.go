package remote

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/rdq-notify/internal/model"
)

const notificationsPath = "/api/notifications"

// Adapter exposes the notification endpoints as typed operations. It
// satisfies sync.NotificationStore and sync.PreferenceStore.
type Adapter struct {
	client *Client
}

// NewAdapter wraps an API client.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

// ListNotifications fetches one page of notifications matching criteria.
func (a *Adapter) ListNotifications(
	ctx context.Context,
	criteria model.SearchCriteria,
) (*model.NotificationPage, error) {
	path := notificationsPath + "?" + EncodeCriteria(criteria)

	var resp listResponse
	if err := a.client.Get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	return resp.toModel(), nil
}

// MarkRead marks a single notification as read.
func (a *Adapter) MarkRead(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/%d/read", notificationsPath, id)
	if err := a.client.Put(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("marking notification %d read: %w", id, err)
	}
	return nil
}

// MarkAllRead marks every notification of the caller as read.
func (a *Adapter) MarkAllRead(ctx context.Context) error {
	if err := a.client.Put(ctx, notificationsPath+"/mark-all-read", nil, nil); err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}

// DeleteNotification deletes a single notification.
func (a *Adapter) DeleteNotification(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/%d", notificationsPath, id)
	if err := a.client.Delete(ctx, path, nil); err != nil {
		return fmt.Errorf("deleting notification %d: %w", id, err)
	}
	return nil
}

// Stats fetches the caller's counters including the per-type breakdown.
func (a *Adapter) Stats(ctx context.Context) (*model.NotificationStats, error) {
	var stats model.NotificationStats
	if err := a.client.Get(ctx, notificationsPath+"/stats", &stats); err != nil {
		return nil, fmt.Errorf("fetching notification stats: %w", err)
	}
	return &stats, nil
}

// UnreadCount fetches only the caller's unread counter.
func (a *Adapter) UnreadCount(ctx context.Context) (int, error) {
	var resp unreadCountResponse
	if err := a.client.Get(ctx, notificationsPath+"/unread-count", &resp); err != nil {
		return 0, fmt.Errorf("fetching unread count: %w", err)
	}
	return resp.UnreadCount, nil
}

// ListPreferences fetches the caller's delivery preferences.
func (a *Adapter) ListPreferences(
	ctx context.Context,
) ([]model.NotificationPreference, error) {
	var prefs []model.NotificationPreference
	if err := a.client.Get(ctx, notificationsPath+"/preferences", &prefs); err != nil {
		return nil, fmt.Errorf("listing preferences: %w", err)
	}
	return prefs, nil
}

// UpdatePreference sends a partial update and returns the row as stored
// by the server.
func (a *Adapter) UpdatePreference(
	ctx context.Context,
	id int64,
	update model.PreferenceUpdate,
) (*model.NotificationPreference, error) {
	path := fmt.Sprintf("%s/preferences/%d", notificationsPath, id)

	var pref model.NotificationPreference
	if err := a.client.Put(ctx, path, update, &pref); err != nil {
		return nil, fmt.Errorf("updating preference %d: %w", id, err)
	}
	return &pref, nil
}

// EncodeCriteria renders criteria as the list endpoint's query string.
// Page and size are always sent; unset filters are omitted.
func EncodeCriteria(c model.SearchCriteria) string {
	c = c.Normalize()

	q := url.Values{}
	q.Set("page", strconv.Itoa(c.Page))
	q.Set("size", strconv.Itoa(c.Size))
	if c.Type != nil {
		q.Set("type", string(*c.Type))
	}
	if c.Read != nil {
		q.Set("read", strconv.FormatBool(*c.Read))
	}
	if c.Critical != nil {
		q.Set("critical", strconv.FormatBool(*c.Critical))
	}
	if c.RdqID != nil {
		q.Set("rdqId", strconv.FormatInt(*c.RdqID, 10))
	}
	q.Set("sortBy", string(c.SortBy))
	q.Set("sortDirection", string(c.SortDirection))

	return q.Encode()
}
