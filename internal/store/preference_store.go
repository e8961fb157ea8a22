package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nhle/rdq-notify/internal/model"
)

type preferenceRow struct {
	ID               int64  `db:"id"`
	UserID           int64  `db:"user_id"`
	NotificationType string `db:"notification_type"`
	Enabled          bool   `db:"enabled"`
	EmailEnabled     bool   `db:"email_enabled"`
}

func (r preferenceRow) toModel() model.NotificationPreference {
	t := model.NotificationType(r.NotificationType)
	return model.NotificationPreference{
		ID:               r.ID,
		UserID:           r.UserID,
		NotificationType: t,
		Enabled:          r.Enabled,
		EmailEnabled:     r.EmailEnabled,
		Description:      t.Label(),
	}
}

// EnsurePreferences seeds one preference per notification type for the
// user. Types are enabled in-app; email starts on for critical types only.
// Existing rows are left alone.
func (s *SQLiteStore) EnsurePreferences(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT OR IGNORE INTO notification_preferences (
			user_id, notification_type, enabled, email_enabled
		) VALUES (?, ?, 1, ?)`)
	if err != nil {
		return fmt.Errorf("preparing preference seed: %w", err)
	}
	defer stmt.Close()

	for _, t := range model.AllNotificationTypes {
		if _, err := stmt.ExecContext(ctx, userID, string(t), boolToInt(t.DefaultCritical())); err != nil {
			return fmt.Errorf("seeding preference %s for user %d: %w", t, userID, err)
		}
	}

	return tx.Commit()
}

// ListPreferences returns the user's preferences in type order, seeding
// them on first use.
func (s *SQLiteStore) ListPreferences(
	ctx context.Context,
	userID int64,
) ([]model.NotificationPreference, error) {
	if err := s.EnsurePreferences(ctx, userID); err != nil {
		return nil, err
	}

	var rows []preferenceRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM notification_preferences WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("querying preferences: %w", err)
	}

	prefs := make([]model.NotificationPreference, 0, len(rows))
	for _, r := range rows {
		prefs = append(prefs, r.toModel())
	}
	return prefs, nil
}

// PreferenceFor returns the user's preference for one type.
func (s *SQLiteStore) PreferenceFor(
	ctx context.Context,
	userID int64,
	t model.NotificationType,
) (*model.NotificationPreference, error) {
	if err := s.EnsurePreferences(ctx, userID); err != nil {
		return nil, err
	}

	var row preferenceRow
	err := s.db.GetContext(ctx, &row,
		"SELECT * FROM notification_preferences WHERE user_id = ? AND notification_type = ?",
		userID, string(t))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("preference %s: %w", t, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting preference %s: %w", t, err)
	}

	p := row.toModel()
	return &p, nil
}

// UpdatePreference applies a partial update to one of the user's
// preferences and returns the stored row. Disabling a type also disables
// its email delivery.
func (s *SQLiteStore) UpdatePreference(
	ctx context.Context,
	userID, id int64,
	update model.PreferenceUpdate,
) (*model.NotificationPreference, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var row preferenceRow
	err = tx.GetContext(ctx, &row,
		"SELECT * FROM notification_preferences WHERE id = ? AND user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("preference %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting preference %d: %w", id, err)
	}

	p := update.Apply(row.toModel())

	_, err = tx.ExecContext(ctx,
		"UPDATE notification_preferences SET enabled = ?, email_enabled = ? WHERE id = ?",
		boolToInt(p.Enabled), boolToInt(p.EmailEnabled), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating preference %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing preference %d: %w", id, err)
	}

	return &p, nil
}
