// Package reminder schedules due-date notifications for tasks.
package reminder

import (
	"context"
	stderrors "errors"
	"time"

	"notes/internal/domain"
)

// ErrPastDue is returned when a reminder's time has already passed.
var ErrPastDue = stderrors.New("reminder time is in the past")

// Title is the heading of every reminder.
const Title = "Reminder"

// Reminder is a one-shot notification for an item.
type Reminder struct {
	ItemID string
	Title  string
	Body   string
	At     time.Time
}

// For builds the reminder for item. Only unfinished tasks with a due date
// have one.
func For(item domain.Item) (Reminder, bool) {
	due := item.DueDate()
	if due == nil || item.IsDone() {
		return Reminder{}, false
	}
	return Reminder{
		ItemID: item.ID,
		Title:  Title,
		Body:   item.Content,
		At:     due.Truncate(time.Minute),
	}, true
}

// Scheduler delivers reminders. Scheduling an item that already has a
// reminder replaces it.
type Scheduler interface {
	Schedule(ctx context.Context, r Reminder) error
	Cancel(itemID string)
}
