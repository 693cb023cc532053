package services

import (
	"reployer/internal/models"
	"reployer/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(h, m, s int) time.Time {
	return time.Date(2026, 3, 1, h, m, s, 0, time.UTC)
}

func TestScheduleCalculator_DefaultTable(t *testing.T) {
	c := NewScheduleCalculator(&structures.Config{})

	for h := 0; h < 24; h++ {
		assert.Equal(t, DefaultRotation[h], c.MapForHour(h))
	}
	assert.Equal(t, UnknownScheduledMap, c.MapForHour(-1))
	assert.Equal(t, UnknownScheduledMap, c.MapForHour(24))
}

func TestScheduleCalculator_ConfiguredTable(t *testing.T) {
	hours := make([]string, 24)
	for h := range hours {
		hours[h] = "map" + string(rune('a'+h))
	}
	hours[5] = ""
	c := NewScheduleCalculator(&structures.Config{Schedule: structures.ScheduleConfig{Hours: hours}})

	assert.Equal(t, "mapa", c.MapForHour(0))
	assert.Equal(t, UnknownScheduledMap, c.MapForHour(5))
	assert.Len(t, c.Table(), 24)
	assert.Equal(t, UnknownScheduledMap, c.Table()[5])
}

func TestScheduleCalculator_Current(t *testing.T) {
	c := NewScheduleCalculator(&structures.Config{})

	tests := []struct {
		name     string
		now      time.Time
		hour     int
		seconds  int
		minutes  int
		previous int
		next     int
	}{
		{"top of hour", at(10, 0, 0), 10, 3600, 60, 9, 11},
		{"mid hour", at(10, 30, 15), 10, 1785, 29, 9, 11},
		{"last second", at(23, 59, 59), 23, 1, 0, 22, 0},
		{"midnight wraps previous", at(0, 1, 0), 0, 3540, 59, 23, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := c.Current(tt.now)
			assert.Equal(t, tt.hour, info.Hour)
			assert.Equal(t, tt.seconds, info.SecondsToNextHour)
			assert.Equal(t, tt.minutes, info.MinutesToNextHour)
			assert.Equal(t, DefaultRotation[tt.hour], info.Current)
			assert.Equal(t, DefaultRotation[tt.previous], info.Previous)
			assert.Equal(t, DefaultRotation[tt.next], info.Next)
		})
	}
}

func TestScheduleCalculator_CurrentUsesUTC(t *testing.T) {
	c := NewScheduleCalculator(&structures.Config{})
	local := time.FixedZone("UTC+3", 3*3600)

	info := c.Current(time.Date(2026, 3, 1, 13, 0, 0, 0, local))
	assert.Equal(t, 10, info.Hour)
}

func TestRestartWindowAt(t *testing.T) {
	tests := []struct {
		now  time.Time
		want models.RestartWindow
	}{
		{at(12, 58, 59), models.Online},
		{at(12, 59, 9), models.Online},
		{at(12, 59, 10), models.FirstRestart},
		{at(12, 59, 59), models.FirstRestart},
		{at(13, 0, 0), models.Online},
		{at(13, 0, 59), models.Online},
		{at(13, 1, 0), models.SecondRestart},
		{at(13, 1, 30), models.SecondRestart},
		{at(13, 1, 31), models.Online},
		{at(13, 30, 0), models.Online},
	}
	c := NewScheduleCalculator(&structures.Config{})
	for _, tt := range tests {
		t.Run(tt.now.Format("15:04:05"), func(t *testing.T) {
			assert.Equal(t, tt.want, RestartWindowAt(tt.now))
			assert.Equal(t, tt.want, c.RestartWindow(tt.now))
		})
	}
}
