package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inmuebles-portal/internal/config"
)

func TestParseDailyTime(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"03:00", "0 3 * * *"},
		{"14:30", "30 14 * * *"},
		{"00:00", "0 0 * * *"},
		{"23:59", "59 23 * * *"},
		{"24:00", "0 3 * * *"},
		{"garbage", "0 3 * * *"},
		{"", "0 3 * * *"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseDailyTime(tt.input), "input %q", tt.input)
	}
}

func TestSchedulerDisabled(t *testing.T) {
	ran := false
	s := New(config.SyncConfig{DailyEnabled: false}, nil, func() error {
		ran = true
		return nil
	})

	require.NoError(t, s.Start())
	s.Stop()
	assert.False(t, ran)
}

func TestSchedulerStartStop(t *testing.T) {
	s := New(config.SyncConfig{DailyEnabled: true, DailyTime: "03:00"}, nil, func() error {
		return nil
	})

	require.NoError(t, s.Start())
	assert.True(t, s.isRunning)
	s.Stop()
	assert.False(t, s.isRunning)
}
