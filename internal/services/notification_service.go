package services

import (
	"errors"
	"fmt"
	"time"

	"edunion/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotNotificationOwner = errors.New("notification belongs to another user")
)

// NotificationService persists and queries per-user in-app notifications.
// Notifications are exclusively owned by their recipient: every mutating
// operation takes the caller's user ID and rejects foreign rows.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Create persists a notification with createdAt=now and isRead=false
func (s *NotificationService) Create(userID uint, title, message string, kind models.NotificationType, eventID, groupID *uint) (*models.Notification, error) {
	notification := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
		EventID: eventID,
		GroupID: groupID,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return &notification, nil
}

// ListForUser returns all of a user's notifications, newest first
func (s *NotificationService) ListForUser(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// ListUnread returns a user's unread notifications, newest first
func (s *NotificationService) ListUnread(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount returns how many of a user's notifications are unread
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// SetRead marks a notification read or unread. ReadAt is stamped on the
// transition to read and cleared on the transition back to unread.
func (s *NotificationService) SetRead(id, userID uint, read bool) (*models.Notification, error) {
	notification, err := s.getOwned(id, userID)
	if err != nil {
		return nil, err
	}

	notification.IsRead = read
	if read {
		now := time.Now()
		notification.ReadAt = &now
	} else {
		notification.ReadAt = nil
	}

	updates := map[string]any{"is_read": notification.IsRead, "read_at": notification.ReadAt}
	if err := s.db.Model(notification).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update notification: %w", err)
	}
	return notification, nil
}

// MarkAllRead marks every unread notification of a user as read
func (s *NotificationService) MarkAllRead(userID uint) error {
	now := time.Now()
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": &now}).Error
	if err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

// Delete removes a single notification owned by the user
func (s *NotificationService) Delete(id, userID uint) error {
	notification, err := s.getOwned(id, userID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(notification).Error; err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// DeleteAll removes every notification of a user
func (s *NotificationService) DeleteAll(userID uint) error {
	err := s.db.Where("user_id = ?", userID).Delete(&models.Notification{}).Error
	if err != nil {
		return fmt.Errorf("delete all notifications: %w", err)
	}
	return nil
}

func (s *NotificationService) getOwned(id, userID uint) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("load notification: %w", err)
	}
	if notification.UserID != userID {
		return nil, ErrNotNotificationOwner
	}
	return &notification, nil
}
