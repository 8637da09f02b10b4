package exchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in       string
		expected Interval
	}{
		{"1m", OneMinute},
		{"1min", OneMinute},
		{"30M", ThirtyMinute},
		{"4hour", FourHour},
		{"1d", OneDay},
		{"1week", OneWeek},
		{"1M", OneMonth},
		{"1month", OneMonth},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			interval, err := ParseInterval(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, interval)
		})
	}
}

func TestParseIntervalUnknown(t *testing.T) {
	_, err := ParseInterval("7m")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestIntervalString(t *testing.T) {
	assert.Equal(t, "15m", FifteenMinute.String())
	assert.Equal(t, "1M", OneMonth.String())
	assert.Equal(t, "invalid", Interval(99).String())
}

func TestIntervalDuration(t *testing.T) {
	assert.Equal(t, 4*time.Hour, FourHour.Duration())
	assert.Equal(t, 7*24*time.Hour, OneWeek.Duration())
	assert.Zero(t, Interval(-1).Duration())
}

func TestIntervalTable(t *testing.T) {
	table := IntervalTable{OneMinute: "1min"}

	code, err := table.Code(OneMinute)
	require.NoError(t, err)
	assert.Equal(t, "1min", code)

	_, err = table.Code(OneMonth)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
