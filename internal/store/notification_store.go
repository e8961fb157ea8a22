package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/rdq-notify/internal/model"
)

// notificationRow is a notifications table row.
type notificationRow struct {
	ID        int64          `db:"id"`
	UserID    int64          `db:"user_id"`
	Type      string         `db:"type"`
	Title     string         `db:"title"`
	Message   string         `db:"message"`
	Read      bool           `db:"read"`
	Critical  bool           `db:"critical"`
	CreatedAt time.Time      `db:"created_at"`
	ReadAt    sql.NullTime   `db:"read_at"`
	RdqID     sql.NullInt64  `db:"rdq_id"`
	RdqNumber sql.NullString `db:"rdq_number"`
	RdqTitle  sql.NullString `db:"rdq_title"`
	RdqStatus sql.NullString `db:"rdq_status"`
}

func (r notificationRow) toModel() model.Notification {
	n := model.Notification{
		ID:        r.ID,
		Type:      model.NotificationType(r.Type),
		Title:     r.Title,
		Message:   r.Message,
		Read:      r.Read,
		Critical:  r.Critical,
		CreatedAt: r.CreatedAt.UTC(),
		UserID:    r.UserID,
	}
	if r.ReadAt.Valid {
		t := r.ReadAt.Time.UTC()
		n.ReadAt = &t
	}
	if r.RdqID.Valid {
		id := r.RdqID.Int64
		n.RdqID = &id
		n.RdqInfo = &model.RdqSummary{
			ID:     id,
			Number: r.RdqNumber.String,
			Title:  r.RdqTitle.String,
			Status: r.RdqStatus.String,
		}
	}
	return n
}

// sortColumns maps API sort fields to columns.
var sortColumns = map[model.SortField]string{
	model.SortByCreatedAt: "created_at",
	model.SortByType:      "type",
	model.SortByRead:      "read",
}

// CreateNotification inserts a notification and returns it as stored.
// Critical defaults to the type's classification when the caller leaves it
// false; a zero CreatedAt is set to now.
func (s *SQLiteStore) CreateNotification(
	ctx context.Context,
	n model.Notification,
) (*model.Notification, error) {
	if n.UserID <= 0 {
		return nil, fmt.Errorf("notification user must be set")
	}
	if !n.Type.Valid() {
		return nil, fmt.Errorf("unknown notification type %q", n.Type)
	}
	if strings.TrimSpace(n.Title) == "" {
		return nil, fmt.Errorf("notification title must not be empty")
	}

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if !n.Critical {
		n.Critical = n.Type.DefaultCritical()
	}

	var readAt *time.Time
	if n.Read {
		t := n.CreatedAt.UTC()
		if n.ReadAt != nil {
			t = n.ReadAt.UTC()
		}
		readAt = &t
	}

	var rdqNumber, rdqTitle, rdqStatus *string
	if n.RdqInfo != nil {
		if n.RdqID == nil {
			id := n.RdqInfo.ID
			n.RdqID = &id
		}
		rdqNumber, rdqTitle, rdqStatus = &n.RdqInfo.Number, &n.RdqInfo.Title, &n.RdqInfo.Status
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (
			user_id, type, title, message, read, critical,
			created_at, read_at, rdq_id, rdq_number, rdq_title, rdq_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.UserID, string(n.Type), n.Title, n.Message,
		boolToInt(n.Read), boolToInt(n.Critical),
		n.CreatedAt.UTC(), readAt, n.RdqID, rdqNumber, rdqTitle, rdqStatus,
	)
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading notification id: %w", err)
	}

	return s.GetNotification(ctx, n.UserID, id)
}

// GetNotification retrieves one of the user's notifications.
func (s *SQLiteStore) GetNotification(
	ctx context.Context,
	userID, id int64,
) (*model.Notification, error) {
	var row notificationRow
	err := s.db.GetContext(ctx, &row,
		"SELECT * FROM notifications WHERE id = ? AND user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification %d: %w", id, err)
	}

	n := row.toModel()
	return &n, nil
}

// ListNotifications returns one page of the user's notifications matching
// criteria. TotalElements and the page count cover the filtered set; the
// unread and critical counters are the user's overall ones.
func (s *SQLiteStore) ListNotifications(
	ctx context.Context,
	userID int64,
	criteria model.SearchCriteria,
) (*model.NotificationPage, error) {
	criteria = criteria.Normalize()
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	conditions := []string{"user_id = ?"}
	args := []interface{}{userID}

	if criteria.Type != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, string(*criteria.Type))
	}
	if criteria.Read != nil {
		conditions = append(conditions, "read = ?")
		args = append(args, boolToInt(*criteria.Read))
	}
	if criteria.Critical != nil {
		conditions = append(conditions, "critical = ?")
		args = append(args, boolToInt(*criteria.Critical))
	}
	if criteria.RdqID != nil {
		conditions = append(conditions, "rdq_id = ?")
		args = append(args, *criteria.RdqID)
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM notifications"+where, args...); err != nil {
		return nil, fmt.Errorf("counting notifications: %w", err)
	}

	direction := "DESC"
	if criteria.SortDirection == model.SortAsc {
		direction = "ASC"
	}
	query := fmt.Sprintf(
		"SELECT * FROM notifications%s ORDER BY %s %s, id %s LIMIT ? OFFSET ?",
		where, sortColumns[criteria.SortBy], direction, direction,
	)
	args = append(args, criteria.Size, criteria.Page*criteria.Size)

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}

	stats, err := s.counters(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]model.Notification, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toModel())
	}

	totalPages := (total + criteria.Size - 1) / criteria.Size

	return &model.NotificationPage{
		Notifications: items,
		TotalElements: total,
		TotalPages:    totalPages,
		CurrentPage:   criteria.Page,
		PageSize:      criteria.Size,
		HasNext:       criteria.Page+1 < totalPages,
		HasPrevious:   criteria.Page > 0,
		UnreadCount:   stats.Unread,
		CriticalCount: stats.CriticalUnread,
	}, nil
}

// MarkRead marks one notification read. read_at keeps its first value when
// the notification was already read.
func (s *SQLiteStore) MarkRead(ctx context.Context, userID, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = 1, read_at = COALESCE(read_at, ?)
		WHERE id = ? AND user_id = ?`,
		time.Now().UTC(), id, userID,
	)
	if err != nil {
		return fmt.Errorf("marking notification %d as read: %w", id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user read with one
// timestamp and returns how many changed.
func (s *SQLiteStore) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1, read_at = ? WHERE user_id = ? AND read = 0",
		time.Now().UTC(), userID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking all notifications as read: %w", err)
	}

	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// DeleteNotification removes one of the user's notifications.
func (s *SQLiteStore) DeleteNotification(ctx context.Context, userID, id int64) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting notification %d: %w", id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	return nil
}

// counterRow holds the aggregate counters of one user.
type counterRow struct {
	Total          int `db:"total"`
	Unread         int `db:"unread"`
	CriticalUnread int `db:"critical_unread"`
}

func (s *SQLiteStore) counters(ctx context.Context, userID int64) (counterRow, error) {
	var c counterRow
	err := s.db.GetContext(ctx, &c, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN read = 0 THEN 1 ELSE 0 END), 0) AS unread,
			COALESCE(SUM(CASE WHEN read = 0 AND critical = 1 THEN 1 ELSE 0 END), 0) AS critical_unread
		FROM notifications WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return counterRow{}, fmt.Errorf("counting notifications for user %d: %w", userID, err)
	}
	return c, nil
}

// Stats returns the user's counters with a per-type breakdown of all
// notifications. CriticalCount counts unread critical notifications.
func (s *SQLiteStore) Stats(ctx context.Context, userID int64) (*model.NotificationStats, error) {
	c, err := s.counters(ctx, userID)
	if err != nil {
		return nil, err
	}

	var byType []struct {
		Type  string `db:"type"`
		Count int    `db:"n"`
	}
	err = s.db.SelectContext(ctx, &byType,
		"SELECT type, COUNT(*) AS n FROM notifications WHERE user_id = ? GROUP BY type", userID)
	if err != nil {
		return nil, fmt.Errorf("counting notifications by type: %w", err)
	}

	stats := &model.NotificationStats{
		UnreadCount:   c.Unread,
		CriticalCount: c.CriticalUnread,
		TotalCount:    c.Total,
		ByType:        make(map[model.NotificationType]int, len(byType)),
	}
	for _, t := range byType {
		stats.ByType[model.NotificationType(t.Type)] = t.Count
	}

	return stats, nil
}

// UnreadCount returns the number of unread notifications of the user.
func (s *SQLiteStore) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0", userID)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return n, nil
}
