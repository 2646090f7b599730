package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{"valid date", "2026-01-27", time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC), false},
		{"invalid format", "27-01-2026", time.Time{}, true},
		{"invalid day", "2026-01-32", time.Time{}, true},
		{"empty", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got))
		})
	}
}

func TestParseDateInLocation(t *testing.T) {
	loc := time.FixedZone("TRT", 3*60*60)
	got, err := ParseDate("2026-03-01", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 21, 0, 0, 0, time.UTC), got.UTC())

	end := EndOfDay(got)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 1, end.Day())
	assert.Equal(t, loc, end.Location())
}

func TestLoadLocation(t *testing.T) {
	assert.Equal(t, time.UTC, LoadLocation("Mars/Olympus"))
	assert.Equal(t, "UTC", LoadLocation("UTC").String())
}
