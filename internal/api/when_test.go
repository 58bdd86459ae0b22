package api

import (
	"testing"
	"time"

	"notes/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhen(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2024, 12, 17, 22, 15, 0, 0, loc)

	tests := []struct {
		when     string
		expected *time.Time
	}{
		{"today", timePtr(time.Date(2024, 12, 17, 9, 0, 0, 0, loc))},
		{"Tomorrow", timePtr(time.Date(2024, 12, 18, 9, 0, 0, 0, loc))},
		{"2025-01-05", timePtr(time.Date(2025, 1, 5, 9, 0, 0, 0, loc))},
		{"2025-01-05 17:45", timePtr(time.Date(2025, 1, 5, 17, 45, 0, 0, loc))},
		{"2025-01-05T17:45:00Z", timePtr(time.Date(2025, 1, 5, 17, 45, 0, 0, time.UTC))},
		{"30m", timePtr(now.Add(30 * time.Minute))},
		{"2w", timePtr(now.Add(14 * 24 * time.Hour))},
		{"none", nil},
		{" clear ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.when, func(t *testing.T) {
			got, err := ParseWhen(tt.when, now)
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.expected.Equal(*got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestParseWhen_Invalid(t *testing.T) {
	for _, when := range []string{"", "   ", "next week", "2025-13-01", "5x", "-1d"} {
		t.Run(when, func(t *testing.T) {
			_, err := ParseWhen(when, time.Now())
			assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
		})
	}
}

func TestParseTimeShorthand(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"30m", 30 * time.Minute, false},
		{"2h", 2 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"1w", 7 * 24 * time.Hour, false},
		{"3mo", 90 * 24 * time.Hour, false},
		{"1y", 365 * 24 * time.Hour, false},
		{"1", 0, true},
		{"h", 0, true},
		{"1.5h", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeShorthand(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
