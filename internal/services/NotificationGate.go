package services

import (
	"fmt"
	"reployer/internal/models"
	"reployer/internal/structures"
	"strings"
	"time"
)

const noMilestone = -1

// NotificationState holds the only mutable markers of the gate. One
// instance lives for one monitor session.
type NotificationState struct {
	LastMap           string               `json:"last_map"`
	RestartNotified   models.RestartWindow `json:"restart_notified"`
	LastMilestoneMin  int                  `json:"last_milestone_minute"`
	LastMilestoneHour time.Time            `json:"last_milestone_hour"`
}

func newNotificationState() NotificationState {
	return NotificationState{RestartNotified: models.Online, LastMilestoneMin: noMilestone}
}

type NotificationGate struct {
	mapSounds     map[string]string
	prefix        string
	prefixSound   string
	milestones    map[int]string
	restartEvents map[models.RestartWindow]string
	state         NotificationState
}

func NewNotificationGate(conf *structures.Config) *NotificationGate {
	n := conf.Notifications
	g := &NotificationGate{
		mapSounds:   make(map[string]string, len(n.MapSounds)),
		prefix:      n.Prefix,
		prefixSound: n.PrefixSound,
		milestones:  make(map[int]string, len(n.Milestones)),
		restartEvents: map[models.RestartWindow]string{
			models.FirstRestart:  orDefault(n.FirstRestart, "restart_first"),
			models.SecondRestart: orDefault(n.SecondRestart, "restart_second"),
		},
		state: newNotificationState(),
	}
	// viper lowercases map keys, map names are compared the same way
	for k, v := range n.MapSounds {
		g.mapSounds[strings.ToLower(k)] = v
	}
	for _, m := range n.Milestones {
		g.milestones[m.Minute] = m.Sound
	}
	return g
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// CheckMapTransition fires when a known map replaces a different one.
// An empty previous map means nothing was observed yet.
func (g *NotificationGate) CheckMapTransition(previousMap, newMap string, at time.Time) *models.Event {
	g.state.LastMap = newMap
	if previousMap == "" || previousMap == newMap {
		return nil
	}

	sound, ok := g.mapSounds[strings.ToLower(newMap)]
	if !ok && g.prefix != "" && strings.HasPrefix(newMap, g.prefix) {
		sound, ok = g.prefixSound, g.prefixSound != ""
	}
	if !ok {
		return nil
	}

	return &models.Event{
		Kind:    models.EventMapChange,
		Name:    sound,
		Message: fmt.Sprintf("map changed %s -> %s", previousMap, newMap),
		At:      at,
	}
}

// CheckRestartTransition is edge-triggered: it fires once on entry into a
// restart window and rearms only after the window returns to Online.
func (g *NotificationGate) CheckRestartTransition(previousWindow, newWindow models.RestartWindow, at time.Time) *models.Event {
	if newWindow == models.Online {
		g.state.RestartNotified = models.Online
		return nil
	}
	if g.state.RestartNotified != models.Online {
		return nil
	}

	g.state.RestartNotified = newWindow
	msg := "server restart expected"
	if previousWindow != models.Online {
		msg = "server restart in progress"
	}
	return &models.Event{
		Kind:    models.EventRestart,
		Name:    g.restartEvents[newWindow],
		Message: fmt.Sprintf("%s (%s)", msg, newWindow),
		At:      at,
	}
}

// CheckMinuteMilestone fires at second 0 of a milestone minute, once per
// hour and minute, and rearms when the minute stops matching.
func (g *NotificationGate) CheckMinuteMilestone(now time.Time) *models.Event {
	now = now.UTC()
	minute := now.Minute()

	sound, ok := g.milestones[minute]
	if !ok {
		g.state.LastMilestoneMin = noMilestone
		return nil
	}
	if now.Second() != 0 {
		return nil
	}

	hour := now.Truncate(time.Hour)
	if g.state.LastMilestoneMin == minute && g.state.LastMilestoneHour.Equal(hour) {
		return nil
	}

	g.state.LastMilestoneMin = minute
	g.state.LastMilestoneHour = hour
	return &models.Event{
		Kind:    models.EventMilestone,
		Name:    sound,
		Message: fmt.Sprintf("%d minutes to the next hour", 60-minute),
		At:      now,
	}
}

func (g *NotificationGate) State() NotificationState {
	return g.state
}

func (g *NotificationGate) Reset() {
	g.state = newNotificationState()
}
