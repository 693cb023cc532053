package services

import (
	"reployer/internal/models"
	"reployer/internal/structures"
	"time"
)

const UnknownScheduledMap = "unknown"

// DefaultRotation is used when the config does not list a rotation.
var DefaultRotation = []string{
	"ordinance", "ord_cry", "ord_err", "ord_ren", "ord_bld", "ord_mor",
	"ordinance", "ord_cry", "ord_err", "ord_ren", "ord_bld", "ord_mor",
	"ordinance", "ord_cry", "ord_err", "ord_ren", "ord_bld", "ord_mor",
	"ordinance", "ord_cry", "ord_err", "ord_ren", "ord_bld", "ord_mor",
}

// Restart window thresholds within the hour, UTC.
const (
	firstRestartMinute     = 59
	firstRestartFromSecond = 10
	secondRestartMinute    = 1
	secondRestartToSecond  = 30
)

type ScheduleCalculator struct {
	hours [24]string
}

func NewScheduleCalculator(conf *structures.Config) *ScheduleCalculator {
	table := conf.Schedule.Hours
	if len(table) != 24 {
		table = DefaultRotation
	}
	c := &ScheduleCalculator{}
	copy(c.hours[:], table)
	return c
}

// MapForHour returns the scheduled map for a UTC hour.
func (c *ScheduleCalculator) MapForHour(hour int) string {
	if hour < 0 || hour > 23 || c.hours[hour] == "" {
		return UnknownScheduledMap
	}
	return c.hours[hour]
}

func (c *ScheduleCalculator) Current(now time.Time) models.ScheduleInfo {
	now = now.UTC()
	hour := now.Hour()
	remaining := 3600 - now.Minute()*60 - now.Second()

	return models.ScheduleInfo{
		Hour:              hour,
		Current:           c.MapForHour(hour),
		Previous:          c.MapForHour((hour + 23) % 24),
		Next:              c.MapForHour((hour + 1) % 24),
		SecondsToNextHour: remaining,
		MinutesToNextHour: remaining / 60,
	}
}

// RestartWindow classifies an instant; it depends only on the clock.
func (c *ScheduleCalculator) RestartWindow(now time.Time) models.RestartWindow {
	return RestartWindowAt(now)
}

func RestartWindowAt(now time.Time) models.RestartWindow {
	now = now.UTC()
	minute, second := now.Minute(), now.Second()

	switch {
	case minute == firstRestartMinute && second >= firstRestartFromSecond:
		return models.FirstRestart
	case minute == secondRestartMinute && second <= secondRestartToSecond:
		return models.SecondRestart
	default:
		return models.Online
	}
}

// Table returns the 24 scheduled maps, index is the UTC hour.
func (c *ScheduleCalculator) Table() []string {
	out := make([]string, len(c.hours))
	for h := range c.hours {
		out[h] = c.MapForHour(h)
	}
	return out
}
