package store

import (
	"context"
	"errors"

	"github.com/nhle/rdq-notify/internal/model"
)

// ErrNotFound is returned when a notification or preference does not exist
// or belongs to another user.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface behind the notification API.
// Every operation is scoped to the calling user.
type Store interface {
	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) (*model.Notification, error)
	GetNotification(ctx context.Context, userID, id int64) (*model.Notification, error)
	ListNotifications(ctx context.Context, userID int64, criteria model.SearchCriteria) (*model.NotificationPage, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int, error)
	DeleteNotification(ctx context.Context, userID, id int64) error
	Stats(ctx context.Context, userID int64) (*model.NotificationStats, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)

	// === Preferences ===

	EnsurePreferences(ctx context.Context, userID int64) error
	ListPreferences(ctx context.Context, userID int64) ([]model.NotificationPreference, error)
	PreferenceFor(ctx context.Context, userID int64, t model.NotificationType) (*model.NotificationPreference, error)
	UpdatePreference(ctx context.Context, userID, id int64, update model.PreferenceUpdate) (*model.NotificationPreference, error)
}
