package providers

import (
	"bytes"
	"os"
	"path/filepath"
	"reployer/internal/structures"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogTypeByRequestType(t *testing.T) {
	assert.Equal(t, TypePost, GetLogTypeByRequestType("POST"))
	assert.Equal(t, TypeGet, GetLogTypeByRequestType("GET"))
	assert.Equal(t, TypeGet, GetLogTypeByRequestType("PUT"))
}

func TestNewLogProvider_WritesLogFile(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Logger: structures.LoggerConfig{Level: "info", Mode: 0644, Dir: dir},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)

	logger.Infof(TypePoll, "query %s ok", "127.0.0.1:27015")
	logger.Debugf(TypeGet, "filtered out")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"poll"`)
	assert.Contains(t, string(data), "query 127.0.0.1:27015 ok")
	assert.NotContains(t, string(data), "filtered out")
}

func TestNewLogProvider_DebugFlagOverridesLevel(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Debug:  true,
		Logger: structures.LoggerConfig{Level: "error", Mode: 0644, Dir: dir},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)
	logger.Debugf(TypeHistory, "visible")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible")
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{Level: "info", Mode: 0644, Dir: "/nonexistent/directory/path"},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{Level: "loud", Mode: 0644, Dir: t.TempDir()},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}

func TestLogProvider_TypeField(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogProvider(nil, zerolog.InfoLevel, &buf)

	logger.Warnf(TypeFeed, "feed %d", 1)
	logger.Errorf(TypeNotify, "notify")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"warn"`)
	assert.Contains(t, lines[0], `"type":"feed"`)
	assert.Contains(t, lines[1], `"type":"notify"`)
}
