package reminder

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TimerScheduler fires reminders in process using one timer per item.
// fire runs on the timer's goroutine.
type TimerScheduler struct {
	fire func(Reminder)
	log  *zap.Logger
	now  func() time.Time

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewTimerScheduler returns a scheduler calling fire when a reminder is due.
func NewTimerScheduler(fire func(Reminder), log *zap.Logger) *TimerScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TimerScheduler{
		fire:   fire,
		log:    log.Named("reminder"),
		now:    time.Now,
		timers: make(map[string]*time.Timer),
	}
}

func (s *TimerScheduler) Schedule(ctx context.Context, r Reminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	delay := r.At.Sub(s.now())
	if delay <= 0 {
		s.Cancel(r.ItemID)
		return ErrPastDue
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	if t, ok := s.timers[r.ItemID]; ok {
		t.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		current := s.timers[r.ItemID] == timer
		if current {
			delete(s.timers, r.ItemID)
		}
		s.mu.Unlock()
		if current {
			s.fire(r)
		}
	})
	s.timers[r.ItemID] = timer
	s.log.Debug("reminder scheduled", zap.String("item_id", r.ItemID), zap.Time("at", r.At))
	return nil
}

func (s *TimerScheduler) Cancel(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[itemID]; ok {
		t.Stop()
		delete(s.timers, itemID)
		s.log.Debug("reminder cancelled", zap.String("item_id", itemID))
	}
}

// Pending returns the number of reminders still waiting to fire.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending reminder. Later Schedule calls are ignored.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.stopped = true
}
