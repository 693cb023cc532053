package providers

import (
	"reployer/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigProvider_SampleConfig(t *testing.T) {
	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: "../../config.yaml"})
	require.NoError(t, err)

	assert.Equal(t, AppName, conf.AppName)
	assert.Equal(t, "127.0.0.1:27015", conf.GameServer.Address)
	assert.Equal(t, 5*time.Second, conf.Poll.Interval)
	assert.Equal(t, 60, conf.History.Capacity)

	n := conf.Notifications
	assert.Equal(t, "ord_", n.Prefix)
	assert.Equal(t, map[string]string{
		"ordinance": "map_ordinance",
		"ord_cry":   "map_cry",
		"ord_err":   "map_err",
		"ord_ren":   "map_ren",
	}, n.MapSounds)
	assert.False(t, conf.Schedule.EpochTime.IsZero())
}
