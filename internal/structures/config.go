package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Methods map[string]http.Handler
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1|max:65535"`
}

// GameServer describes the monitored game server and how it is queried.
type GameServer struct {
	Address      string        `yaml:"address" validate:"required|hostPort"`
	QueryTimeout time.Duration `yaml:"queryTimeout" validate:"required"`
}

type PollConfig struct {
	Interval      time.Duration `yaml:"interval" validate:"required"`
	ClockInterval time.Duration `yaml:"clockInterval" validate:"required"`
	StopGrace     time.Duration `yaml:"stopGrace" validate:"required"`
	QueueSize     int           `yaml:"queueSize"`
}

type HistoryConfig struct {
	FilePath       string        `yaml:"filePath" validate:"required"`
	Capacity       int           `yaml:"capacity" validate:"required"`
	ArchiveDir     string        `yaml:"archiveDir"`
	MaxBytes       int64         `yaml:"maxBytes"`
	RotateInterval time.Duration `yaml:"rotateInterval"`
}

type ScheduleConfig struct {
	Hours []string `yaml:"hours"`
	// Epoch is an RFC3339 instant; the elapsed time since it is shown in snapshots.
	Epoch     string    `yaml:"epoch"`
	EpochTime time.Time `yaml:"-" mapstructure:"-"`
}

type Milestone struct {
	Minute int    `yaml:"minute"`
	Sound  string `yaml:"sound" validate:"required"`
}

type NotificationConfig struct {
	MapSounds    map[string]string `yaml:"mapSounds"`
	Prefix       string            `yaml:"prefix"`
	PrefixSound  string            `yaml:"prefixSound"`
	Milestones   []Milestone       `yaml:"milestones"`
	FirstRestart string            `yaml:"firstRestart"`
	// SecondRestart is the event name used on entry into the second restart window.
	SecondRestart string `yaml:"secondRestart"`
	OpenSound     string `yaml:"openSound"`
	CloseSound    string `yaml:"closeSound"`
	ViewSound     string `yaml:"viewSound"`
}

type ConnectTarget struct {
	Name        string   `yaml:"name" validate:"required"`
	Command     string   `yaml:"command" validate:"required"`
	RequireMap  string   `yaml:"requireMap"`
	ExcludeMaps []string `yaml:"excludeMaps"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
	Channel  string `yaml:"channel"`
}

type FeedConfig struct {
	URL            string        `yaml:"url"`
	ReconnectDelay time.Duration `yaml:"reconnectDelay"`
}

type DownloadConfig struct {
	Dir     string        `yaml:"dir"`
	Timeout time.Duration `yaml:"timeout"`
}

type Config struct {
	AppName       string
	Debug         bool
	Path          string
	GameServer    GameServer         `yaml:"gameServer"`
	Poll          PollConfig         `yaml:"poll"`
	History       HistoryConfig      `yaml:"history"`
	Schedule      ScheduleConfig     `yaml:"schedule"`
	Notifications NotificationConfig `yaml:"notifications"`
	Connect       []ConnectTarget    `yaml:"connect"`
	WebServer     Server             `yaml:"webServer"`
	Logger        LoggerConfig       `yaml:"logger"`
	Cache         CacheConfig        `yaml:"cache"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Redis         RedisConfig        `yaml:"redis"`
	Feed          FeedConfig         `yaml:"feed"`
	Download      DownloadConfig     `yaml:"download"`
}
