package services

import (
	"errors"
	"fmt"

	"edunion/internal/models"

	"gorm.io/gorm"
)

// PreferenceService manages per-user delivery preferences. A user without
// a stored row behaves exactly as if every flag were enabled.
type PreferenceService struct {
	db *gorm.DB
}

func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{db: db}
}

// Resolve returns the effective preferences for a user without ever
// writing a row. The fan-out engine uses this on every delivery decision,
// so an absent record must stay absent.
func (s *PreferenceService) Resolve(userID uint) (models.UserPreferences, error) {
	var prefs models.UserPreferences
	err := s.db.Where("user_id = ?", userID).First(&prefs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DefaultPreferences(userID), nil
		}
		return models.UserPreferences{}, fmt.Errorf("resolve preferences: %w", err)
	}
	return prefs, nil
}

// Get returns the stored preferences, materializing the default row on
// first explicit read. This is the preference-management path, not the
// delivery path.
func (s *PreferenceService) Get(userID uint) (*models.UserPreferences, error) {
	var prefs models.UserPreferences
	err := s.db.Where("user_id = ?", userID).First(&prefs).Error
	if err == nil {
		return &prefs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	prefs = models.DefaultPreferences(userID)
	if err := s.db.Create(&prefs).Error; err != nil {
		return nil, fmt.Errorf("create default preferences: %w", err)
	}
	return &prefs, nil
}

// Update replaces all three flags for a user, creating the row if needed
func (s *PreferenceService) Update(userID uint, notifyOnNewEvent, notifyOnReminder, emailEnabled bool) (*models.UserPreferences, error) {
	prefs, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	prefs.NotifyOnNewEvent = notifyOnNewEvent
	prefs.NotifyOnReminder = notifyOnReminder
	prefs.EmailEnabled = emailEnabled

	updates := map[string]any{
		"notify_on_new_event": notifyOnNewEvent,
		"notify_on_reminder":  notifyOnReminder,
		"email_enabled":       emailEnabled,
	}
	if err := s.db.Model(prefs).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	return prefs, nil
}
