package services

import (
	"testing"
	"time"

	"edunion/internal/database/testutil"
	"edunion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestScheduler(db *gorm.DB, events *EventService) *ReminderScheduler {
	s := NewReminderScheduler(db, events)
	s.period = time.Minute
	s.offset = 30 * time.Minute
	return s
}

func TestTickDueWindowBoundaries(t *testing.T) {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		startAfter time.Duration // event start relative to base
		tickAt     time.Duration // tick time relative to base
		wantFire   bool
	}{
		{"tick exactly at the due instant fires", 30 * time.Minute, 0, true},
		{"tick halfway into the due window fires", 30*time.Minute + 30*time.Second, time.Minute, true},
		{"tick one period before due does not fire", 30 * time.Minute, -time.Minute, false},
		{"tick at due+period does not fire", 30 * time.Minute, time.Minute, false},
		{"due already in the past is skipped", 25 * time.Minute, 0, false},
		{"start far in the future is skipped", 2 * time.Hour, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := testutil.MustOpenTestDB(t)
			mailer := newFakeMailer()
			events := newTestEventService(t, db, mailer, base)

			admin := seedUser(t, db, "Asha", "asha@example.com")
			group := seedGroup(t, db, admin)
			seedEvent(t, db, group, admin.ID, base.Add(tc.startAfter))

			scheduler := newTestScheduler(db, events)
			scheduler.Tick(base.Add(tc.tickAt))

			want := int64(0)
			if tc.wantFire {
				want = 1
			}
			assert.Equal(t, want, countNotifications(t, db, admin.ID, models.NotificationEventReminder))
		})
	}
}

func TestTickFiresExactlyOnceAcrossConsecutiveTicks(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	mailer := newFakeMailer()
	events := newTestEventService(t, db, mailer, base)

	admin := seedUser(t, db, "Asha", "asha@example.com")
	group := seedGroup(t, db, admin)
	// Due at base+30s: inside the window of the tick at base+1m only
	seedEvent(t, db, group, admin.ID, base.Add(30*time.Minute+30*time.Second))

	scheduler := newTestScheduler(db, events)
	scheduler.Tick(base)
	scheduler.Tick(base.Add(time.Minute))
	scheduler.Tick(base.Add(2 * time.Minute))

	assert.EqualValues(t, 1, countNotifications(t, db, admin.ID, models.NotificationEventReminder))
	assert.Equal(t, 1, mailer.sentCount("reminder", "asha@example.com"))
}

func TestTickSkipsAlreadyDispatchedReminder(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	mailer := newFakeMailer()
	events := newTestEventService(t, db, mailer, base)

	admin := seedUser(t, db, "Asha", "asha@example.com")
	group := seedGroup(t, db, admin)
	event := seedEvent(t, db, group, admin.ID, base.Add(30*time.Minute))

	// Immediate-shortcut path already dispatched this event's reminder
	require.NoError(t, events.DispatchReminder(&event))
	require.EqualValues(t, 1, countNotifications(t, db, admin.ID, models.NotificationEventReminder))

	// The scheduler tick at the nominal due instant must not duplicate it
	scheduler := newTestScheduler(db, events)
	scheduler.Tick(base)

	assert.EqualValues(t, 1, countNotifications(t, db, admin.ID, models.NotificationEventReminder))
	assert.Equal(t, 1, mailer.sentCount("reminder", "asha@example.com"))
}

func TestTickIsolatesFailingEvent(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	mailer := newFakeMailer()
	events := newTestEventService(t, db, mailer, base)

	// Event A points at a group that no longer exists but still has a
	// member row; its fan-out errors after audience resolution.
	ghost := seedUser(t, db, "Ghost", "ghost@example.com")
	orphanGroupID := uint(9999)
	addMember(t, db, orphanGroupID, ghost.ID, models.RoleMember, models.MemberStatusActive)
	orphanEvent := models.Event{
		Title:       "Orphaned Session",
		StartTime:   base.Add(30 * time.Minute),
		EndTime:     base.Add(90 * time.Minute),
		GroupID:     orphanGroupID,
		CreatedByID: ghost.ID,
		CreatedAt:   base,
	}
	require.NoError(t, db.Create(&orphanEvent).Error)

	// Event B is healthy and due in the same tick
	admin := seedUser(t, db, "Asha", "asha@example.com")
	group := seedGroup(t, db, admin)
	seedEvent(t, db, group, admin.ID, base.Add(30*time.Minute))

	scheduler := newTestScheduler(db, events)
	scheduler.Tick(base)

	// B's audience is served despite A's failure
	assert.EqualValues(t, 1, countNotifications(t, db, admin.ID, models.NotificationEventReminder))
	assert.Equal(t, 1, mailer.sentCount("reminder", "asha@example.com"))
}

func TestSchedulerStartStop(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	mailer := newFakeMailer()
	events := NewEventService(db, mailer)

	scheduler := NewReminderScheduler(db, events)
	scheduler.Start()

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}
