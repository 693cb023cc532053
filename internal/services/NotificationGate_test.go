package services

import (
	"reployer/internal/models"
	"reployer/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gateConfig() *structures.Config {
	return &structures.Config{
		Notifications: structures.NotificationConfig{
			MapSounds:   map[string]string{"ordinance": "map_ordinance", "Ord_Cry": "map_cry", "ord_ren": "map_ren"},
			Prefix:      "ord_",
			PrefixSound: "map_generic",
			Milestones: []structures.Milestone{
				{Minute: 30, Sound: "half_hour"},
				{Minute: 55, Sound: "five_minutes"},
			},
		},
	}
}

func TestCheckMapTransition(t *testing.T) {
	now := at(10, 0, 5)
	tests := []struct {
		name      string
		prev, new string
		sound     string
	}{
		{"first observation", "", "ordinance", ""},
		{"unchanged", "ordinance", "ordinance", ""},
		{"mapped sound", "ord_err", "ordinance", "map_ordinance"},
		{"mapped sound ignores case", "ordinance", "ord_cry", "map_cry"},
		{"special-cased prefix name", "ordinance", "ord_ren", "map_ren"},
		{"prefix fallback", "ordinance", "ord_bld", "map_generic"},
		{"prefix is case-sensitive", "ordinance", "ORD_bld", ""},
		{"no mapping", "ordinance", "de_dust2", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewNotificationGate(gateConfig())
			ev := g.CheckMapTransition(tt.prev, tt.new, now)
			if tt.sound == "" {
				assert.Nil(t, ev)
			} else {
				require.NotNil(t, ev)
				assert.Equal(t, models.EventMapChange, ev.Kind)
				assert.Equal(t, tt.sound, ev.Name)
				assert.Equal(t, now, ev.At)
			}
			assert.Equal(t, tt.new, g.State().LastMap)
		})
	}
}

func TestCheckRestartTransition_EdgeTriggered(t *testing.T) {
	g := NewNotificationGate(&structures.Config{})
	now := at(12, 59, 10)

	ev := g.CheckRestartTransition(models.Online, models.FirstRestart, now)
	require.NotNil(t, ev)
	assert.Equal(t, models.EventRestart, ev.Kind)
	assert.Equal(t, "restart_first", ev.Name)
	assert.Equal(t, models.FirstRestart, g.State().RestartNotified)

	for i := 0; i < 5; i++ {
		assert.Nil(t, g.CheckRestartTransition(models.FirstRestart, models.FirstRestart, now))
	}

	assert.Nil(t, g.CheckRestartTransition(models.FirstRestart, models.Online, now))
	assert.Equal(t, models.Online, g.State().RestartNotified)

	ev = g.CheckRestartTransition(models.Online, models.FirstRestart, now)
	require.NotNil(t, ev, "re-entry after Online must fire again")
}

func TestCheckRestartTransition_SecondWindow(t *testing.T) {
	conf := &structures.Config{Notifications: structures.NotificationConfig{SecondRestart: "custom_second"}}
	g := NewNotificationGate(conf)

	ev := g.CheckRestartTransition(models.Online, models.SecondRestart, at(13, 1, 0))
	require.NotNil(t, ev)
	assert.Equal(t, "custom_second", ev.Name)
}

func TestCheckMinuteMilestone(t *testing.T) {
	g := NewNotificationGate(gateConfig())

	assert.Nil(t, g.CheckMinuteMilestone(at(10, 29, 59)))

	ev := g.CheckMinuteMilestone(at(10, 30, 0))
	require.NotNil(t, ev)
	assert.Equal(t, models.EventMilestone, ev.Kind)
	assert.Equal(t, "half_hour", ev.Name)

	// repeated ticks within the same second and minute stay silent
	assert.Nil(t, g.CheckMinuteMilestone(at(10, 30, 0)))
	assert.Nil(t, g.CheckMinuteMilestone(at(10, 30, 0).Add(200*time.Millisecond)))
	assert.Nil(t, g.CheckMinuteMilestone(at(10, 30, 1)))

	// minute leaves the set, rearm
	assert.Nil(t, g.CheckMinuteMilestone(at(10, 31, 0)))
	assert.Equal(t, noMilestone, g.State().LastMilestoneMin)

	require.NotNil(t, g.CheckMinuteMilestone(at(10, 55, 0)))
	require.NotNil(t, g.CheckMinuteMilestone(at(11, 30, 0)))
}

func TestCheckMinuteMilestone_NextHourSameMinute(t *testing.T) {
	conf := &structures.Config{Notifications: structures.NotificationConfig{
		Milestones: []structures.Milestone{{Minute: 0, Sound: "top"}},
	}}
	g := NewNotificationGate(conf)

	require.NotNil(t, g.CheckMinuteMilestone(at(10, 0, 0)))
	assert.Nil(t, g.CheckMinuteMilestone(at(10, 0, 0)))
	require.NotNil(t, g.CheckMinuteMilestone(at(11, 0, 0)))
}

func TestNotificationGate_Reset(t *testing.T) {
	g := NewNotificationGate(gateConfig())
	g.CheckRestartTransition(models.Online, models.FirstRestart, at(12, 59, 10))
	g.CheckMinuteMilestone(at(12, 30, 0))
	g.CheckMapTransition("a", "b", at(12, 30, 0))

	g.Reset()
	state := g.State()
	assert.Equal(t, models.Online, state.RestartNotified)
	assert.Equal(t, noMilestone, state.LastMilestoneMin)
	assert.Empty(t, state.LastMap)
}
