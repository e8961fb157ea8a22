package remote

import (
	"time"

	"github.com/nhle/rdq-notify/internal/model"
)

// notificationDTO is a notification as returned by GET /api/notifications.
// Timestamps are kept as strings because the backend and the dev server
// format them differently.
type notificationDTO struct {
	ID       int64                  `json:"id"`
	Type     model.NotificationType `json:"type"`
	Title    string                 `json:"title"`
	Message  string                 `json:"message"`
	Read     bool                   `json:"read"`
	Critical bool                   `json:"critical"`

	CreatedAt string `json:"createdAt"`
	ReadAt    string `json:"readAt,omitempty"`

	UserID  int64             `json:"userId"`
	RdqID   *int64            `json:"rdqId,omitempty"`
	RdqInfo *model.RdqSummary `json:"rdqInfo,omitempty"`
}

// listResponse is the paginated list envelope.
type listResponse struct {
	Notifications []notificationDTO `json:"notifications"`
	TotalElements int               `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
	CurrentPage   int               `json:"currentPage"`
	PageSize      int               `json:"pageSize"`
	HasNext       bool              `json:"hasNext"`
	HasPrevious   bool              `json:"hasPrevious"`
	UnreadCount   int               `json:"unreadCount"`
	CriticalCount int               `json:"criticalCount"`
}

// unreadCountResponse is the response from GET /api/notifications/unread-count.
type unreadCountResponse struct {
	UnreadCount int `json:"unreadCount"`
}

// toModel converts a wire notification to a model.Notification.
func (d notificationDTO) toModel() model.Notification {
	n := model.Notification{
		ID:        d.ID,
		Type:      d.Type,
		Title:     d.Title,
		Message:   d.Message,
		Read:      d.Read,
		Critical:  d.Critical,
		CreatedAt: parseTime(d.CreatedAt),
		UserID:    d.UserID,
		RdqID:     d.RdqID,
		RdqInfo:   d.RdqInfo,
	}
	if d.Read {
		if t := parseTime(d.ReadAt); !t.IsZero() {
			n.ReadAt = &t
		} else {
			// Keep the read/readAt pairing even when the server omits it.
			t := n.CreatedAt
			n.ReadAt = &t
		}
	}
	return n
}

// toModel converts the list envelope to a model.NotificationPage.
func (r listResponse) toModel() *model.NotificationPage {
	items := make([]model.Notification, 0, len(r.Notifications))
	for _, d := range r.Notifications {
		items = append(items, d.toModel())
	}
	return &model.NotificationPage{
		Notifications: items,
		TotalElements: r.TotalElements,
		TotalPages:    r.TotalPages,
		CurrentPage:   r.CurrentPage,
		PageSize:      r.PageSize,
		HasNext:       r.HasNext,
		HasPrevious:   r.HasPrevious,
		UnreadCount:   r.UnreadCount,
		CriticalCount: r.CriticalCount,
	}
}

// parseTime parses an API timestamp. The backend uses
// "2006-01-02 15:04:05"; the dev server emits RFC 3339.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
