package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelativeTime(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"30 days ago", now.Add(-30 * 24 * time.Hour)},
		{"2 weeks ago", now.Add(-14 * 24 * time.Hour)},
		{"6 hours ago", now.Add(-6 * time.Hour)},
		{"1 minute ago", now.Add(-time.Minute)},
		{"1 month ago", now.AddDate(0, -1, 0)},
		{"1 year ago", now.AddDate(-1, 0, 0)},
		{"  3 Days Ago  ", now.Add(-3 * 24 * time.Hour)},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseRelativeTime(tc.input, now)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestParseRelativeTimeInvalid(t *testing.T) {
	now := time.Now()
	for _, input := range []string{"", "yesterday", "30 days", "days ago", "-3 days ago"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseRelativeTime(input, now)
			assert.Error(t, err)
		})
	}
}

func TestParseHumanDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
	}{
		{"24h", 24 * time.Hour},
		{"90m", 90 * time.Minute},
		{"24 hours", 24 * time.Hour},
		{"1 day", 24 * time.Hour},
		{"2 weeks", 14 * 24 * time.Hour},
		{"1 month", 30 * 24 * time.Hour},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseHumanDuration(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestParseHumanDurationInvalid(t *testing.T) {
	for _, input := range []string{"", "0h", "0 hours", "soon", "ten days"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseHumanDuration(input)
			assert.Error(t, err)
		})
	}
}
