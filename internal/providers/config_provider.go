package providers

import (
	"fmt"
	"path/filepath"
	"reployer/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const AppName = "Reployer"

func setDefaults(v *viper.Viper) {
	v.SetDefault("gameServer.queryTimeout", 5*time.Second)
	v.SetDefault("poll.interval", 5*time.Second)
	v.SetDefault("poll.clockInterval", 250*time.Millisecond)
	v.SetDefault("poll.stopGrace", 2*time.Second)
	v.SetDefault("poll.queueSize", 16)
	v.SetDefault("history.filePath", "player_log.csv")
	v.SetDefault("history.capacity", 60)
	v.SetDefault("history.archiveDir", "archive")
	v.SetDefault("history.rotateInterval", time.Hour)
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8090)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", ".")
	v.SetDefault("feed.reconnectDelay", 5*time.Second)
	v.SetDefault("download.dir", ".")
	v.SetDefault("download.timeout", 10*time.Minute)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	setDefaults(v)

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	_ = v.BindEnv("gameServer.address", "REPLOYER_SERVER_ADDRESS")
	_ = v.BindEnv("poll.interval", "REPLOYER_POLL_INTERVAL")
	_ = v.BindEnv("logger.level", "REPLOYER_LOG_LEVEL")
	_ = v.BindEnv("history.filePath", "REPLOYER_HISTORY_FILE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
