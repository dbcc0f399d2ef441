package models

import "time"

// UserPreferences holds a user's delivery preferences, one row per user.
// A user without a row gets DefaultPreferences; the fan-out engine never
// writes a row just to make a delivery decision.
type UserPreferences struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	// No gorm-level defaults on the flags: a zero value here must mean
	// an explicit false, never "fall back to the column default".
	NotifyOnNewEvent bool      `gorm:"not null" json:"notify_on_new_event"`
	NotifyOnReminder bool      `gorm:"not null" json:"notify_on_reminder"`
	EmailEnabled     bool      `gorm:"not null" json:"email_enabled"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

// DefaultPreferences returns the canonical all-enabled preference set
func DefaultPreferences(userID uint) UserPreferences {
	return UserPreferences{
		UserID:           userID,
		NotifyOnNewEvent: true,
		NotifyOnReminder: true,
		EmailEnabled:     true,
	}
}

// UpdatePreferencesRequest replaces all three flags at once.
// Pointers distinguish "false" from "missing" in the payload.
type UpdatePreferencesRequest struct {
	NotifyOnNewEvent *bool `json:"notify_on_new_event" binding:"required"`
	NotifyOnReminder *bool `json:"notify_on_reminder" binding:"required"`
	EmailEnabled     *bool `json:"email_enabled" binding:"required"`
}
