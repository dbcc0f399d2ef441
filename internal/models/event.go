package models

import "time"

// Event represents a scheduled study session belonging to a group.
// ReminderSentAt marks that the pre-start reminder fan-out has been
// dispatched, so neither the scheduler nor the creation-time shortcut
// can dispatch it twice.
type Event struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title          string     `gorm:"size:200;not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	StartTime      time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime        time.Time  `gorm:"not null" json:"end_time"`
	Location       string     `gorm:"size:255" json:"location"`
	GroupID        uint       `gorm:"not null;index" json:"group_id"`
	CreatedByID    uint       `gorm:"not null" json:"created_by_id"`
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`

	Group     Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	CreatedBy User  `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// CreateEventRequest represents the data needed to schedule a new event
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,min=2,max=200"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Location    string    `json:"location" binding:"max=255"`
}
