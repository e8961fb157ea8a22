package model

import "time"

// NotificationType identifies the domain event that produced a notification.
type NotificationType string

const (
	TypeRdqCreated             NotificationType = "RDQ_CREATED"
	TypeRdqUpdated             NotificationType = "RDQ_UPDATED"
	TypeRdqAssigned            NotificationType = "RDQ_ASSIGNED"
	TypeRdqStatusChanged       NotificationType = "RDQ_STATUS_CHANGED"
	TypeRdqDeadlineApproaching NotificationType = "RDQ_DEADLINE_APPROACHING"
	TypeRdqOverdue             NotificationType = "RDQ_OVERDUE"
	TypeRdqCommented           NotificationType = "RDQ_COMMENTED"
	TypeRdqCancelled           NotificationType = "RDQ_CANCELLED"
	TypeSystemMaintenance      NotificationType = "SYSTEM_MAINTENANCE"
	TypeUserWelcome            NotificationType = "USER_WELCOME"
	TypeGeneralInfo            NotificationType = "GENERAL_INFO"
)

// AllNotificationTypes lists every notification type in display order.
var AllNotificationTypes = []NotificationType{
	TypeRdqCreated,
	TypeRdqUpdated,
	TypeRdqAssigned,
	TypeRdqStatusChanged,
	TypeRdqDeadlineApproaching,
	TypeRdqOverdue,
	TypeRdqCommented,
	TypeRdqCancelled,
	TypeSystemMaintenance,
	TypeUserWelcome,
	TypeGeneralInfo,
}

var typeLabels = map[NotificationType]string{
	TypeRdqCreated:             "RDQ created",
	TypeRdqUpdated:             "RDQ updated",
	TypeRdqAssigned:            "RDQ assigned",
	TypeRdqStatusChanged:       "RDQ status changed",
	TypeRdqDeadlineApproaching: "RDQ deadline approaching",
	TypeRdqOverdue:             "RDQ overdue",
	TypeRdqCommented:           "RDQ commented",
	TypeRdqCancelled:           "RDQ cancelled",
	TypeSystemMaintenance:      "System maintenance",
	TypeUserWelcome:            "Welcome",
	TypeGeneralInfo:            "General information",
}

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label returns the human-readable name of the type.
func (t NotificationType) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// DefaultCritical reports whether notifications of this type are flagged
// critical when the producer does not say otherwise.
func (t NotificationType) DefaultCritical() bool {
	switch t {
	case TypeRdqOverdue, TypeRdqCancelled, TypeSystemMaintenance:
		return true
	default:
		return false
	}
}

// RdqRelated reports whether the type refers to an RDQ.
func (t NotificationType) RdqRelated() bool {
	switch t {
	case TypeSystemMaintenance, TypeUserWelcome, TypeGeneralInfo:
		return false
	default:
		return true
	}
}

// RdqSummary is a denormalized snapshot of the related appointment, kept on
// the notification so it can be displayed without a join.
type RdqSummary struct {
	ID     int64  `json:"id"`
	Number string `json:"number,omitempty"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

// Notification is a single event notification owned by a user.
//
// ReadAt is set if and only if Read is true and never changes once set.
type Notification struct {
	ID       int64            `json:"id"`
	Type     NotificationType `json:"type"`
	Title    string           `json:"title"`
	Message  string           `json:"message"`
	Read     bool             `json:"read"`
	Critical bool             `json:"critical"`

	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`

	UserID int64 `json:"userId"`

	// RdqID and RdqInfo point at the related appointment, when there is one.
	RdqID   *int64      `json:"rdqId,omitempty"`
	RdqInfo *RdqSummary `json:"rdqInfo,omitempty"`
}

// MarkRead flags n as read at the given time. It is a no-op when n is
// already read, which keeps the first ReadAt.
func (n *Notification) MarkRead(at time.Time) bool {
	if n.Read {
		return false
	}
	n.Read = true
	t := at
	n.ReadAt = &t
	return true
}

// Clone returns a deep copy of n.
func (n Notification) Clone() Notification {
	c := n
	if n.ReadAt != nil {
		t := *n.ReadAt
		c.ReadAt = &t
	}
	if n.RdqID != nil {
		id := *n.RdqID
		c.RdqID = &id
	}
	if n.RdqInfo != nil {
		info := *n.RdqInfo
		c.RdqInfo = &info
	}
	return c
}

// NotificationStats holds the counters shown alongside the list.
type NotificationStats struct {
	UnreadCount   int                      `json:"unreadCount"`
	CriticalCount int                      `json:"criticalCount"`
	TotalCount    int                      `json:"totalCount"`
	ByType        map[NotificationType]int `json:"byType,omitempty"`
}

// Clone returns a deep copy of s.
func (s NotificationStats) Clone() NotificationStats {
	c := s
	if s.ByType != nil {
		c.ByType = make(map[NotificationType]int, len(s.ByType))
		for k, v := range s.ByType {
			c.ByType[k] = v
		}
	}
	return c
}

// Cursor is the pagination position of the displayed window. It is
// replaced wholesale by every successful fetch.
type Cursor struct {
	CurrentPage int
	TotalPages  int
	HasMore     bool
}

// NotificationPage is one page of notifications plus the counters the
// store computed for the same query.
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	TotalElements int            `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	CurrentPage   int            `json:"currentPage"`
	PageSize      int            `json:"pageSize"`
	HasNext       bool           `json:"hasNext"`
	HasPrevious   bool           `json:"hasPrevious"`
	UnreadCount   int            `json:"unreadCount"`
	CriticalCount int            `json:"criticalCount"`
}
