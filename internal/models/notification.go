package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType categorizes what a notification is about
type NotificationType string

const (
	NotificationEventCreated  NotificationType = "EVENT_CREATED"
	NotificationEventReminder NotificationType = "EVENT_REMINDER"
	NotificationJoinRequest   NotificationType = "GROUP_JOIN_REQUEST"
	NotificationJoinApproved  NotificationType = "GROUP_JOIN_APPROVED"
	NotificationJoinRejected  NotificationType = "GROUP_JOIN_REJECTED"
	NotificationMemberLeft    NotificationType = "GROUP_MEMBER_LEFT"
)

// Notification represents an in-app notification owned by its recipient.
// ReadAt is set when the notification transitions to read and cleared
// when it transitions back to unread.
type Notification struct {
	ID        uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	Title     string           `gorm:"size:255;not null" json:"title"`
	Message   string           `gorm:"size:1000;not null" json:"message"`
	Type      NotificationType `gorm:"size:30;not null" json:"type"`
	IsRead    bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time        `gorm:"not null;index" json:"created_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`

	// Correlation to the triggering event/group, when applicable
	EventID *uint `json:"event_id,omitempty"`
	GroupID *uint `json:"group_id,omitempty"`
}

// BeforeCreate hook is called before creating a new notification
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.IsRead = false
	n.ReadAt = nil
	return nil
}
