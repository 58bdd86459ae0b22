package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind distinguishes plain notes from tasks.
type Kind string

const (
	KindNote Kind = "note"
	KindTask Kind = "task"
)

// ParseKind converts user or wire input into a Kind. "plain" is accepted as
// an alias of note.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "note", "plain":
		return KindNote, nil
	case "task":
		return KindTask, nil
	default:
		return "", fmt.Errorf("unknown item kind %q", s)
	}
}

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	return k == KindNote || k == KindTask
}

// TaskState holds the fields only tasks carry.
type TaskState struct {
	Done    bool
	DueDate *time.Time
}

// Item is a single note or task.
// Task is non-nil exactly when Kind is KindTask.
type Item struct {
	ID        string
	Content   string
	CreatedAt time.Time
	Kind      Kind
	Task      *TaskState
}

// NewItem builds an item of the given kind. The due date is dropped for notes.
func NewItem(id, content string, kind Kind, createdAt time.Time, due *time.Time) Item {
	item := Item{
		ID:        id,
		Content:   content,
		CreatedAt: createdAt.UTC().Round(0),
		Kind:      kind,
	}
	if kind == KindTask {
		item.Task = &TaskState{DueDate: NormalizeDue(due)}
	}
	return item
}

// IsTask reports whether the item carries task state.
func (i Item) IsTask() bool {
	return i.Kind == KindTask && i.Task != nil
}

// IsDone is false for plain notes.
func (i Item) IsDone() bool {
	return i.IsTask() && i.Task.Done
}

// DueDate returns the due date of a task, or nil.
func (i Item) DueDate() *time.Time {
	if !i.IsTask() {
		return nil
	}
	return i.Task.DueDate
}

// HasDueDate reports whether the item is a task with a due date.
func (i Item) HasDueDate() bool {
	return i.DueDate() != nil
}

// IsOverdue reports whether the item is an unfinished task whose due date is
// strictly before now.
func (i Item) IsOverdue(now time.Time) bool {
	due := i.DueDate()
	if due == nil || i.Task.Done {
		return false
	}
	return due.Before(now)
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	c := i
	if i.Task != nil {
		c.Task = &TaskState{
			Done:    i.Task.Done,
			DueDate: copyTime(i.Task.DueDate),
		}
	}
	return c
}

// Title returns the first non-empty line of the content.
func (i Item) Title() string {
	for _, line := range strings.Split(i.Content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// String returns the item title for display purposes.
func (i Item) String() string {
	return i.Title()
}

// CloneItems deep-copies a slice of items. A nil slice yields an empty one.
func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for idx, item := range items {
		out[idx] = item.Clone()
	}
	return out
}

// NormalizeDue returns a copy of due in UTC without a monotonic reading, the
// form a due date has after a round trip through storage.
func NormalizeDue(due *time.Time) *time.Time {
	if due == nil {
		return nil
	}
	v := due.UTC().Round(0)
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
