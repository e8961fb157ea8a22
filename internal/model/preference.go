package model

// NotificationPreference is the per-user delivery setting for one
// notification type. There is exactly one row per (user, type).
type NotificationPreference struct {
	ID               int64            `json:"id"`
	UserID           int64            `json:"userId"`
	NotificationType NotificationType `json:"notificationType"`
	Enabled          bool             `json:"enabled"`

	// EmailEnabled only matters when Enabled is true.
	EmailEnabled bool   `json:"emailEnabled"`
	Description  string `json:"description"`
}

// PreferenceUpdate is a partial update. Nil fields are left unchanged.
type PreferenceUpdate struct {
	Enabled      *bool `json:"enabled,omitempty"`
	EmailEnabled *bool `json:"emailEnabled,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u PreferenceUpdate) Empty() bool {
	return u.Enabled == nil && u.EmailEnabled == nil
}

// Apply returns p with the update applied. Disabling a type also disables
// its email delivery.
func (u PreferenceUpdate) Apply(p NotificationPreference) NotificationPreference {
	if u.Enabled != nil {
		p.Enabled = *u.Enabled
	}
	if u.EmailEnabled != nil {
		p.EmailEnabled = *u.EmailEnabled
	}
	if !p.Enabled {
		p.EmailEnabled = false
	}
	return p
}
