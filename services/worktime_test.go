package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anasco119/QueriesShot/config"
)

func khartoumWorkTime(t *testing.T) *WorkTimeService {
	t.Helper()
	s, err := NewWorkTimeService(config.WorkingHours{Start: 8, End: 19, Timezone: "Africa/Khartoum"})
	require.NoError(t, err)
	return s
}

func TestWorkTimeService_IsOpenBoundaries(t *testing.T) {
	s := khartoumWorkTime(t)
	loc, err := time.LoadLocation("Africa/Khartoum")
	require.NoError(t, err)

	cases := []struct {
		name string
		at   time.Time
		open bool
	}{
		{"one minute before opening", time.Date(2026, 3, 10, 7, 59, 0, 0, loc), false},
		{"exactly at opening", time.Date(2026, 3, 10, 8, 0, 0, 0, loc), true},
		{"midday", time.Date(2026, 3, 10, 13, 30, 0, 0, loc), true},
		{"one minute before closing", time.Date(2026, 3, 10, 18, 59, 0, 0, loc), true},
		{"exactly at closing", time.Date(2026, 3, 10, 19, 0, 0, 0, loc), false},
		{"midnight", time.Date(2026, 3, 10, 0, 0, 0, 0, loc), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.open, s.IsOpen(tc.at))
		})
	}
}

func TestWorkTimeService_IsOpenUsesBotTimezone(t *testing.T) {
	s := khartoumWorkTime(t)

	// 05:30 UTC is 07:30 in Khartoum (UTC+2): still closed even though a
	// UTC-configured server would consider it mid-morning.
	assert.False(t, s.IsOpen(time.Date(2026, 3, 10, 5, 30, 0, 0, time.UTC)))
	// 06:30 UTC is 08:30 in Khartoum: open.
	assert.True(t, s.IsOpen(time.Date(2026, 3, 10, 6, 30, 0, 0, time.UTC)))
}

func TestWorkTimeService_CurrentDate(t *testing.T) {
	s := khartoumWorkTime(t)
	loc, err := time.LoadLocation("Africa/Khartoum")
	require.NoError(t, err)

	// 23:30 UTC on the 10th is already the 11th in Khartoum.
	date := s.CurrentDate(time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, loc), date)

	// Two instants on the same Khartoum day normalize to the same date.
	morning := s.CurrentDate(time.Date(2026, 3, 11, 8, 0, 0, 0, loc))
	evening := s.CurrentDate(time.Date(2026, 3, 11, 18, 59, 0, 0, loc))
	assert.True(t, morning.Equal(evening))
}

func TestNewWorkTimeService_RejectsInvalidWindows(t *testing.T) {
	_, err := NewWorkTimeService(config.WorkingHours{Start: 19, End: 8, Timezone: "Africa/Khartoum"})
	assert.Error(t, err)

	_, err = NewWorkTimeService(config.WorkingHours{Start: 8, End: 19, Timezone: "Not/AZone"})
	assert.Error(t, err)
}
