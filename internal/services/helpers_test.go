package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"edunion/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeMailer records deliveries and can be told to fail for specific
// addresses, standing in for the SendGrid sink.
type fakeMailer struct {
	mu      sync.Mutex
	failFor map[string]bool
	sent    []sentMail
}

type sentMail struct {
	kind    string // "notification" or "reminder"
	to      string
	eventID uint
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failFor: make(map[string]bool)}
}

func (m *fakeMailer) SendEventNotification(toEmail, toName string, event *models.Event, groupName string) error {
	return m.record("notification", toEmail, event.ID)
}

func (m *fakeMailer) SendEventReminder(toEmail, toName string, event *models.Event, groupName string) error {
	return m.record("reminder", toEmail, event.ID)
}

func (m *fakeMailer) record(kind, to string, eventID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[to] {
		return fmt.Errorf("smtp rejected %s", to)
	}
	m.sent = append(m.sent, sentMail{kind: kind, to: to, eventID: eventID})
	return nil
}

func (m *fakeMailer) sentCount(kind, to string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, s := range m.sent {
		if s.kind == kind && s.to == to {
			count++
		}
	}
	return count
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, HashedPass: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// seedGroup creates a group whose creator is an ACTIVE admin member
func seedGroup(t *testing.T, db *gorm.DB, admin models.User) models.Group {
	t.Helper()
	group := models.Group{Name: "Algorithms", Description: "weekly sessions", CreatedByID: admin.ID}
	require.NoError(t, db.Create(&group).Error)
	addMember(t, db, group.ID, admin.ID, models.RoleAdmin, models.MemberStatusActive)
	return group
}

func addMember(t *testing.T, db *gorm.DB, groupID, userID uint, role models.GroupMemberRole, status models.GroupMemberStatus) {
	t.Helper()
	member := models.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Role:     role,
		Status:   status,
		JoinedAt: time.Now(),
	}
	require.NoError(t, db.Create(&member).Error)
}

func setPrefs(t *testing.T, db *gorm.DB, userID uint, notifyNew, notifyReminder, emailEnabled bool) {
	t.Helper()
	prefs := models.UserPreferences{
		UserID:           userID,
		NotifyOnNewEvent: notifyNew,
		NotifyOnReminder: notifyReminder,
		EmailEnabled:     emailEnabled,
	}
	require.NoError(t, db.Create(&prefs).Error)
}

func seedEvent(t *testing.T, db *gorm.DB, group models.Group, createdBy uint, start time.Time) models.Event {
	t.Helper()
	event := models.Event{
		Title:       "Graph Theory Review",
		Description: "chapters 5-7",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Location:    "Library room 2",
		GroupID:     group.ID,
		CreatedByID: createdBy,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func countNotifications(t *testing.T, db *gorm.DB, userID uint, kind models.NotificationType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, kind).
		Count(&count).Error)
	return count
}

func countPreferenceRows(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.UserPreferences{}).Count(&count).Error)
	return count
}

// newTestEventService builds an EventService on the test DB with a fake
// mailer and a fixed clock.
func newTestEventService(t *testing.T, db *gorm.DB, mailer *fakeMailer, now time.Time) *EventService {
	t.Helper()
	svc := NewEventService(db, mailer)
	svc.now = func() time.Time { return now }
	return svc
}
