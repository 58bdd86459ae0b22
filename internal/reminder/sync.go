package reminder

import (
	"context"
	stderrors "errors"

	"notes/internal/domain"
	"notes/internal/store"

	"go.uber.org/zap"
)

// Sync keeps a Scheduler in step with the store. Scheduling failures are
// logged and otherwise ignored.
type Sync struct {
	scheduler Scheduler
	log       *zap.Logger
}

// NewSync returns an observer for store.Subscribe.
func NewSync(scheduler Scheduler, log *zap.Logger) *Sync {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sync{scheduler: scheduler, log: log.Named("reminder")}
}

// ScheduleAll registers reminders for every eligible item, typically right
// after the store is loaded.
func (s *Sync) ScheduleAll(ctx context.Context, items []domain.Item) {
	for _, item := range items {
		s.apply(ctx, item)
	}
}

// Observe handles one store event.
func (s *Sync) Observe(ev store.Event) {
	ctx := context.Background()
	for _, item := range ev.Items {
		if ev.Type == store.EventDeleted {
			s.scheduler.Cancel(item.ID)
			continue
		}
		s.apply(ctx, item)
	}
}

func (s *Sync) apply(ctx context.Context, item domain.Item) {
	r, ok := For(item)
	if !ok {
		s.scheduler.Cancel(item.ID)
		return
	}
	err := s.scheduler.Schedule(ctx, r)
	switch {
	case err == nil:
	case stderrors.Is(err, ErrPastDue):
		s.log.Debug("reminder not scheduled, due date passed", zap.String("item_id", item.ID))
	default:
		s.log.Warn("reminder not scheduled", zap.String("item_id", item.ID), zap.Error(err))
	}
}
