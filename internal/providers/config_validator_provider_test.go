package providers

import (
	"reployer/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *structures.Config {
	return &structures.Config{
		GameServer: structures.GameServer{Address: "203.0.113.7:27015", QueryTimeout: 5 * time.Second},
		Poll: structures.PollConfig{
			Interval:      5 * time.Second,
			ClockInterval: 250 * time.Millisecond,
			StopGrace:     2 * time.Second,
		},
		History: structures.HistoryConfig{FilePath: "/tmp/player_log.csv", Capacity: 60},
		WebServer: structures.Server{
			Host: "127.0.0.1",
			Port: 8090,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *structures.Config)
	}{
		{"empty host", func(c *structures.Config) { c.WebServer.Host = "" }},
		{"zero port", func(c *structures.Config) { c.WebServer.Port = 0 }},
		{"empty log level", func(c *structures.Config) { c.Logger.Level = "" }},
		{"invalid log level", func(c *structures.Config) { c.Logger.Level = "verbose" }},
		{"missing address", func(c *structures.Config) { c.GameServer.Address = "" }},
		{"address without port", func(c *structures.Config) { c.GameServer.Address = "203.0.113.7" }},
		{"address port out of range", func(c *structures.Config) { c.GameServer.Address = "203.0.113.7:70000" }},
		{"zero poll interval", func(c *structures.Config) { c.Poll.Interval = 0 }},
		{"negative stop grace", func(c *structures.Config) { c.Poll.StopGrace = -time.Second }},
		{"zero capacity", func(c *structures.Config) { c.History.Capacity = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, NewCnfValidator(c).Validate())
		})
	}
}

func TestConfigValidator_ScheduleHours(t *testing.T) {
	c := validConfig()
	c.Schedule.Hours = []string{"ord_cry", "ord_err"}
	assert.ErrorIs(t, NewCnfValidator(c).Validate(), ErrScheduleHours)

	c.Schedule.Hours = make([]string, 24)
	assert.NoError(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_MilestoneRange(t *testing.T) {
	c := validConfig()
	c.Notifications.Milestones = []structures.Milestone{{Minute: 60, Sound: "late"}}
	assert.ErrorIs(t, NewCnfValidator(c).Validate(), ErrMilestone)
}

func TestConfigValidator_Epoch(t *testing.T) {
	c := validConfig()
	c.Schedule.Epoch = "2025-01-01T02:00:00+02:00"
	require.NoError(t, NewCnfValidator(c).Validate())
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), c.Schedule.EpochTime)

	c.Schedule.Epoch = "yesterday"
	assert.ErrorIs(t, NewCnfValidator(c).Validate(), ErrEpoch)
}

func TestValidHostPort(t *testing.T) {
	assert.True(t, validHostPort("localhost:1"))
	assert.True(t, validHostPort("[::1]:27015"))
	assert.False(t, validHostPort(":27015"))
	assert.False(t, validHostPort("host:0"))
	assert.False(t, validHostPort("host:abc"))
}
