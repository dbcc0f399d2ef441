package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"edunion/internal/models"

	"gorm.io/gorm"
)

// ReminderOffset is the lead time before an event's start at which the
// reminder fan-out becomes due.
const ReminderOffset = 30 * time.Minute

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrGroupNotFound        = errors.New("group not found")
	ErrNotGroupMember       = errors.New("user is not a member of this group")
	ErrNotGroupAdmin        = errors.New("only group admins can manage events")
	ErrEventInPast          = errors.New("event start time cannot be in the past")
	ErrEventEndsBeforeStart = errors.New("event end time cannot be before start time")
)

// EventService owns the event lifecycle and the notification fan-out:
// one trigger (event created, or reminder due) expands into independent
// per-recipient notification and email deliveries.
type EventService struct {
	db            *gorm.DB
	notifications *NotificationService
	prefs         *PreferenceService
	mailer        Mailer
	now           func() time.Time
}

func NewEventService(db *gorm.DB, mailer Mailer) *EventService {
	return &EventService{
		db:            db,
		notifications: NewNotificationService(db),
		prefs:         NewPreferenceService(db),
		mailer:        mailer,
		now:           time.Now,
	}
}

// Create schedules a new event for a group. Only ACTIVE group admins may
// create events. A CREATED fan-out always follows; a REMINDER fan-out
// follows immediately when the event starts within the reminder offset,
// covering events created too late for the scheduler to catch.
func (s *EventService) Create(req models.CreateEventRequest, groupID, userID uint) (*models.Event, error) {
	var membership models.GroupMember
	err := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotGroupMember
		}
		return nil, fmt.Errorf("load membership: %w", err)
	}
	if membership.Role != models.RoleAdmin || membership.Status != models.MemberStatusActive {
		return nil, ErrNotGroupAdmin
	}

	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("load group: %w", err)
	}

	now := s.now()
	if req.StartTime.Before(now) {
		return nil, ErrEventInPast
	}
	if req.EndTime.Before(req.StartTime) {
		return nil, ErrEventEndsBeforeStart
	}

	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		GroupID:     groupID,
		CreatedByID: userID,
		CreatedAt:   now,
	}
	if err := s.db.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	if err := s.FanOut(&event, models.NotificationEventCreated); err != nil {
		log.Printf("Warning: creation fan-out for event %d failed: %v", event.ID, err)
	}

	// Events starting inside the reminder window would have their due
	// window in the past already; remind them right away.
	if event.StartTime.After(now) && event.StartTime.Before(now.Add(ReminderOffset)) {
		if err := s.DispatchReminder(&event); err != nil {
			log.Printf("Warning: immediate reminder for event %d failed: %v", event.ID, err)
		}
	}

	return &event, nil
}

// Get returns an event with its group preloaded
func (s *EventService) Get(id uint) (*models.Event, error) {
	var event models.Event
	if err := s.db.Preload("Group").First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("load event: %w", err)
	}
	return &event, nil
}

// ListGroupEvents returns a group's events ordered by start time
func (s *EventService) ListGroupEvents(groupID uint) ([]models.Event, error) {
	var events []models.Event
	err := s.db.Where("group_id = ?", groupID).
		Order("start_time ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list group events: %w", err)
	}
	return events, nil
}

// ListUserEvents returns events of every group the user is an active member of
func (s *EventService) ListUserEvents(userID uint) ([]models.Event, error) {
	var events []models.Event
	err := s.db.
		Joins("JOIN group_members ON group_members.group_id = events.group_id").
		Where("group_members.user_id = ? AND group_members.status = ?", userID, models.MemberStatusActive).
		Order("events.start_time ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list user events: %w", err)
	}
	return events, nil
}

// Delete removes an event. Only ACTIVE group admins may delete.
func (s *EventService) Delete(id, userID uint) error {
	event, err := s.Get(id)
	if err != nil {
		return err
	}

	var membership models.GroupMember
	err = s.db.Where("group_id = ? AND user_id = ?", event.GroupID, userID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupMember
		}
		return fmt.Errorf("load membership: %w", err)
	}
	if membership.Role != models.RoleAdmin || membership.Status != models.MemberStatusActive {
		return ErrNotGroupAdmin
	}

	if err := s.db.Delete(&models.Event{}, id).Error; err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// recipient pairs an audience member with their effective preferences
type recipient struct {
	user  models.User
	prefs models.UserPreferences
}

// FanOut expands one trigger into independent per-recipient deliveries.
//
// The audience is resolved up front: active membership and preferences
// are read before anything is emitted, and a resolver failure aborts the
// whole fan-out with nothing sent. After that point each recipient is on
// their own — a failed email or notification insert is logged and never
// blocks the remaining recipients.
func (s *EventService) FanOut(event *models.Event, kind models.NotificationType) error {
	var members []models.GroupMember
	err := s.db.Where("group_id = ? AND status = ?", event.GroupID, models.MemberStatusActive).
		Preload("User").
		Find(&members).Error
	if err != nil {
		return fmt.Errorf("resolve active members: %w", err)
	}
	if len(members) == 0 {
		return nil
	}

	var group models.Group
	if err := s.db.First(&group, event.GroupID).Error; err != nil {
		return fmt.Errorf("load group %d: %w", event.GroupID, err)
	}

	recipients := make([]recipient, 0, len(members))
	for _, member := range members {
		prefs, err := s.prefs.Resolve(member.UserID)
		if err != nil {
			return fmt.Errorf("resolve preferences for user %d: %w", member.UserID, err)
		}
		recipients = append(recipients, recipient{user: member.User, prefs: prefs})
	}

	for _, r := range recipients {
		switch kind {
		case models.NotificationEventCreated:
			s.deliverCreated(event, &group, r)
		case models.NotificationEventReminder:
			s.deliverReminder(event, &group, r)
		}
	}
	return nil
}

// deliverCreated announces a new event: the in-app notification goes to
// every active member, email only to those who opted in.
func (s *EventService) deliverCreated(event *models.Event, group *models.Group, r recipient) {
	title := "New Study Session: " + event.Title
	message := fmt.Sprintf("A new study session '%s' has been scheduled in %s.", event.Title, group.Name)

	if _, err := s.notifications.Create(r.user.ID, title, message, models.NotificationEventCreated, &event.ID, &event.GroupID); err != nil {
		log.Printf("Warning: failed to create notification for user %d: %v", r.user.ID, err)
	}

	if r.prefs.NotifyOnNewEvent && r.prefs.EmailEnabled {
		if err := s.mailer.SendEventNotification(r.user.Email, r.user.Name, event, group.Name); err != nil {
			log.Printf("Warning: failed to send event notification to %s: %v", r.user.Email, err)
		}
	}
}

// deliverReminder is opt-in on both channels: notifyOnReminder gates
// everything, emailEnabled additionally gates the email.
func (s *EventService) deliverReminder(event *models.Event, group *models.Group, r recipient) {
	if !r.prefs.NotifyOnReminder {
		return
	}

	title := "Event Reminder: " + event.Title
	message := fmt.Sprintf("Your study session '%s' starts soon.", event.Title)

	if _, err := s.notifications.Create(r.user.ID, title, message, models.NotificationEventReminder, &event.ID, &event.GroupID); err != nil {
		log.Printf("Warning: failed to create reminder notification for user %d: %v", r.user.ID, err)
	}

	if r.prefs.EmailEnabled {
		if err := s.mailer.SendEventReminder(r.user.Email, r.user.Name, event, group.Name); err != nil {
			log.Printf("Warning: failed to send event reminder to %s: %v", r.user.Email, err)
		}
	}
}

// DispatchReminder runs the reminder fan-out for an event at most once.
// The conditional update claims the event's reminder marker; whoever
// loses the claim (scheduler tick vs. creation-time shortcut) skips.
func (s *EventService) DispatchReminder(event *models.Event) error {
	result := s.db.Model(&models.Event{}).
		Where("id = ? AND reminder_sent_at IS NULL", event.ID).
		Update("reminder_sent_at", s.now())
	if result.Error != nil {
		return fmt.Errorf("claim reminder for event %d: %w", event.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		// Already dispatched
		return nil
	}
	return s.FanOut(event, models.NotificationEventReminder)
}
