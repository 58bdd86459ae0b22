// Package projection derives read-only views from a snapshot of the item
// collection. Nothing is cached; every call recomputes from its input.
package projection

import (
	"sort"
	"time"

	"notes/internal/domain"
)

// View selects which items a listing shows.
type View string

const (
	ViewAll   View = "all"
	ViewNotes View = "notes"
	ViewTasks View = "tasks"
)

// Apply returns the items visible in view. Tasks are ordered by due date.
func Apply(items []domain.Item, view View) []domain.Item {
	switch view {
	case ViewNotes:
		return ByKind(items, domain.KindNote)
	case ViewTasks:
		return TasksSortedByDueDate(items)
	default:
		return domain.CloneItems(items)
	}
}

// ByKind returns the items of one kind in their original order.
func ByKind(items []domain.Item, kind domain.Kind) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if item.Kind == kind {
			out = append(out, item.Clone())
		}
	}
	return out
}

// TasksSortedByDueDate returns only tasks, earliest due date first. Tasks
// without a due date come last; ties keep store order.
func TasksSortedByDueDate(items []domain.Item) []domain.Item {
	tasks := ByKind(items, domain.KindTask)
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].DueDate(), tasks[j].DueDate()
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return tasks
}

// SplitAlternating deals items into two columns: even positions left, odd
// positions right.
func SplitAlternating(items []domain.Item) (left, right []domain.Item) {
	left = make([]domain.Item, 0, (len(items)+1)/2)
	right = make([]domain.Item, 0, len(items)/2)
	for i, item := range items {
		if i%2 == 0 {
			left = append(left, item.Clone())
		} else {
			right = append(right, item.Clone())
		}
	}
	return left, right
}

// SplitDone partitions the tasks in items by completion. Notes are dropped.
func SplitDone(items []domain.Item) (pending, done []domain.Item) {
	pending = []domain.Item{}
	done = []domain.Item{}
	for _, item := range items {
		if !item.IsTask() {
			continue
		}
		if item.IsDone() {
			done = append(done, item.Clone())
		} else {
			pending = append(pending, item.Clone())
		}
	}
	return pending, done
}

// Overdue returns unfinished tasks whose due date is before now.
func Overdue(items []domain.Item, now time.Time) []domain.Item {
	out := []domain.Item{}
	for _, item := range items {
		if item.IsOverdue(now) {
			out = append(out, item.Clone())
		}
	}
	return out
}

// Stats summarises a collection.
type Stats struct {
	Notes   int
	Tasks   int
	Done    int
	Pending int
	Overdue int
}

// Total is the number of items counted.
func (s Stats) Total() int {
	return s.Notes + s.Tasks
}

// Count tallies items; overdue is judged against now.
func Count(items []domain.Item, now time.Time) Stats {
	var s Stats
	for _, item := range items {
		if !item.IsTask() {
			s.Notes++
			continue
		}
		s.Tasks++
		if item.IsDone() {
			s.Done++
		} else {
			s.Pending++
		}
		if item.IsOverdue(now) {
			s.Overdue++
		}
	}
	return s
}
