package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Command: "go run ./cmd/app"},
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("empty server command", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Command = "  "

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "command cannot be empty")
	})

	t.Run("malformed env entry", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Env = []string{"NO_EQUALS_SIGN"}

		assert.Error(t, cfg.Validate())
	})

	t.Run("negative debounce", func(t *testing.T) {
		cfg := validConfig()
		cfg.Watch.DebounceMs = -1

		assert.Error(t, cfg.Validate())
	})

	t.Run("negative cooldown", func(t *testing.T) {
		cfg := validConfig()
		cfg.Watch.CooldownMs = -100

		assert.Error(t, cfg.Validate())
	})

	t.Run("code extension without dot", func(t *testing.T) {
		cfg := validConfig()
		cfg.Watch.CodeExtensions = []string{"go"}

		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid refresh port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Refresh.Port = 70000

		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid CORS origin", func(t *testing.T) {
		cfg := validConfig()
		cfg.Refresh.CORSOrigins = []string{"localhost:3000"}

		assert.Error(t, cfg.Validate())
	})

	t.Run("wildcard CORS origin allowed", func(t *testing.T) {
		cfg := validConfig()
		cfg.Refresh.CORSOrigins = []string{"*"}

		assert.NoError(t, cfg.Validate())
	})
}

func TestWatchConfigDefaults(t *testing.T) {
	var w WatchConfig

	assert.Equal(t, 50*time.Millisecond, w.GetDebounce())
	assert.Equal(t, time.Duration(0), w.GetStep())
	assert.Equal(t, time.Duration(0), w.GetCooldown())
	assert.Equal(t, []string{".go"}, w.GetCodeExtensions())
}

func TestWatchConfigExplicitValues(t *testing.T) {
	w := WatchConfig{
		DebounceMs:     100,
		StepMs:         500,
		CooldownMs:     2000,
		CodeExtensions: []string{".go", ".tmpl"},
	}

	assert.Equal(t, 100*time.Millisecond, w.GetDebounce())
	assert.Equal(t, 500*time.Millisecond, w.GetStep())
	assert.Equal(t, 2*time.Second, w.GetCooldown())
	assert.Equal(t, []string{".go", ".tmpl"}, w.GetCodeExtensions())
}

func TestRefreshConfigDefaults(t *testing.T) {
	var r RefreshConfig

	assert.Equal(t, "localhost", r.GetHost())
	assert.Equal(t, 35729, r.GetPort())
	assert.NotEmpty(t, r.GetCORSOrigins())
}

func TestLoggingConfigReloadEvents(t *testing.T) {
	var l LoggingConfig
	assert.True(t, l.ShouldLogReloadEvents(), "unset means enabled")

	off := false
	l.LogReloadEvents = &off
	assert.False(t, l.ShouldLogReloadEvents())

	on := true
	l.LogReloadEvents = &on
	assert.True(t, l.ShouldLogReloadEvents())
}
