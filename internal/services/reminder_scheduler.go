package services

import (
	"log"
	"time"

	"edunion/internal/models"

	"gorm.io/gorm"
)

// SchedulerTickPeriod is how often the reminder scheduler scans for due
// events. It must match the granularity of the due-window check.
const SchedulerTickPeriod = time.Minute

// ReminderScheduler periodically scans upcoming events and dispatches the
// reminder fan-out for those whose due instant (start − offset) fell into
// the current tick's window. It keeps no state of its own between ticks;
// idempotency comes from the event's reminder marker.
//
// Ticks run on a single goroutine, so a slow tick can never overlap the
// next one — time.Ticker drops missed ticks beyond a queue of one.
type ReminderScheduler struct {
	db     *gorm.DB
	events *EventService
	period time.Duration
	offset time.Duration
	now    func() time.Time
	stop   chan struct{}
	done   chan struct{}
}

func NewReminderScheduler(db *gorm.DB, events *EventService) *ReminderScheduler {
	return &ReminderScheduler{
		db:     db,
		events: events,
		period: SchedulerTickPeriod,
		offset: ReminderOffset,
		now:    time.Now,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the scheduler loop in the background
func (s *ReminderScheduler) Start() {
	go s.run()
	log.Printf("Reminder scheduler started (period %v, offset %v)", s.period, s.offset)
}

// Stop halts the scheduler and waits for an in-flight tick to finish
func (s *ReminderScheduler) Stop() {
	close(s.stop)
	<-s.done
	log.Println("Reminder scheduler stopped")
}

func (s *ReminderScheduler) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Tick(s.now())
		}
	}
}

// Tick processes a single scheduler pass at the given instant. Events are
// fetched with a band query bounding start time to (now+offset−period,
// now+offset], then checked exactly against the half-open due window.
// One event's failure never blocks its siblings within the tick.
func (s *ReminderScheduler) Tick(now time.Time) {
	bandStart := now.Add(s.offset - s.period)
	bandEnd := now.Add(s.offset)

	var events []models.Event
	err := s.db.
		Where("start_time > ? AND start_time <= ? AND reminder_sent_at IS NULL", bandStart, bandEnd).
		Find(&events).Error
	if err != nil {
		log.Printf("Error: reminder scan failed: %v", err)
		return
	}

	for i := range events {
		event := &events[i]
		if !s.dueThisTick(event, now) {
			continue
		}
		if err := s.events.DispatchReminder(event); err != nil {
			log.Printf("Error: reminder dispatch for event %d failed: %v", event.ID, err)
			continue
		}
		log.Printf("Dispatched reminder for event %d (%s)", event.ID, event.Title)
	}
}

// dueThisTick reports whether the event's due instant lies in the
// half-open window [due, due+period) containing now: a tick exactly at
// due fires, a tick at due+period does not.
func (s *ReminderScheduler) dueThisTick(event *models.Event, now time.Time) bool {
	due := event.StartTime.Add(-s.offset)
	return !due.After(now) && now.Before(due.Add(s.period))
}
