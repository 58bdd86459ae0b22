package tui

import (
	"context"

	"notes/internal/api"
	"notes/internal/config"
	"notes/internal/projection"
	"notes/internal/reminder"
	"notes/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Options configures Run
type Options struct {
	API       api.ItemsAPI
	Subscribe func(func(store.Event)) (unsubscribe func())
	Config    *config.Config
	Logger    *zap.Logger
	// Warnings, when set, is handed a sink that shows store warnings in the
	// status line while the program runs.
	Warnings func(sink func(error))
}

// eventBuffer bounds the messages queued from store observers and timers.
// A full buffer drops the message; the next refresh catches up.
const eventBuffer = 64

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("tui")

	events := make(chan tea.Msg, eventBuffer)
	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		default:
			log.Debug("event dropped", zap.Any("msg", msg))
		}
	}

	unsubscribe := opts.Subscribe(func(ev store.Event) {
		send(storeChangedMsg{event: ev.Type})
	})
	defer unsubscribe()

	if opts.Warnings != nil {
		opts.Warnings(func(err error) { send(warningMsg{err: err}) })
	}

	if opts.Config != nil && opts.Config.Reminders.Enabled {
		scheduler := reminder.NewTimerScheduler(func(r reminder.Reminder) {
			send(reminderMsg{reminder: r})
		}, log)
		defer scheduler.Stop()

		sync := reminder.NewSync(scheduler, log)
		listing, err := opts.API.ListItems(ctx, api.ListOptions{View: projection.ViewTasks})
		if err != nil {
			return err
		}
		sync.ScheduleAll(ctx, listing.Items)

		unsubscribeReminders := opts.Subscribe(sync.Observe)
		defer unsubscribeReminders()
		log.Debug("reminders scheduled", zap.Int("pending", scheduler.Pending()))
	}

	p := tea.NewProgram(New(ctx, opts.API, opts.Config, events), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
