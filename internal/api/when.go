package api

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"notes/internal/errors"
)

// DefaultDueHour is used when a due date names a day but no time.
const DefaultDueHour = 9

var timeShorthandRegex = regexp.MustCompile(`^(\d+)(m|h|d|w|mo|y)$`)

// ParseWhen converts a due-date expression into a time relative to now.
// "none" and "clear" yield nil.
//
//	today, tomorrow        09:00 local
//	2006-01-02             09:00 local
//	2006-01-02 15:04       local
//	RFC 3339
//	30m, 2h, 1d, 2w, 3mo, 1y   from now
func ParseWhen(when string, now time.Time) (*time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(when))
	loc := now.Location()

	atDefaultHour := func(day time.Time) *time.Time {
		t := time.Date(day.Year(), day.Month(), day.Day(), DefaultDueHour, 0, 0, 0, loc)
		return &t
	}

	switch s {
	case "":
		return nil, errors.NewInvalidInputError("when", when, "a due date is required")
	case "none", "clear":
		return nil, nil
	case "today":
		return atDefaultHour(now), nil
	case "tomorrow":
		return atDefaultHour(now.AddDate(0, 0, 1)), nil
	}

	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return atDefaultHour(t), nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, loc); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(when)); err == nil {
		return &t, nil
	}
	if d, err := ParseTimeShorthand(s); err == nil {
		t := now.Add(d)
		return &t, nil
	}

	return nil, errors.NewInvalidInputError("when", when,
		"use today, tomorrow, YYYY-MM-DD, \"YYYY-MM-DD HH:MM\", RFC 3339 or an offset like 2h or 3d")
}

// ParseTimeShorthand parses time shorthand like "30m", "2h", "1d", etc.
func ParseTimeShorthand(shorthand string) (time.Duration, error) {
	matches := timeShorthandRegex.FindStringSubmatch(shorthand)
	if matches == nil {
		return 0, fmt.Errorf("invalid time format: %s", shorthand)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number in time format: %s", shorthand)
	}

	unit := matches[2]
	var duration time.Duration

	switch unit {
	case "m":
		duration = time.Duration(value) * time.Minute
	case "h":
		duration = time.Duration(value) * time.Hour
	case "d":
		duration = time.Duration(value) * 24 * time.Hour
	case "w":
		duration = time.Duration(value) * 7 * 24 * time.Hour
	case "mo":
		duration = time.Duration(value) * 30 * 24 * time.Hour
	case "y":
		duration = time.Duration(value) * 365 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("invalid time unit: %s", unit)
	}

	return duration, nil
}
