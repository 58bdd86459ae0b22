package domain

import "time"

// FormatDue renders a due date relative to now in now's location:
// "Today", "Tomorrow", "Jan 2" within the same year and "Jan 2, 2006" otherwise.
func FormatDue(due, now time.Time) string {
	due = due.In(now.Location())
	today := startOfDay(now)
	day := startOfDay(due)

	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	case due.Year() == now.Year():
		return due.Format("Jan 2")
	default:
		return due.Format("Jan 2, 2006")
	}
}

// FormatDue returns the relative due label of a task, or "" when there is none.
func (i Item) FormatDue(now time.Time) string {
	due := i.DueDate()
	if due == nil {
		return ""
	}
	return FormatDue(*due, now)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
