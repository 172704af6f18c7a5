package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fredcamaral/hotserve/internal/domain/entities"
)

func TestMergeConfigsOverridesSetFields(t *testing.T) {
	target := GetDefaultConfig()
	source := &entities.Config{
		Server: entities.ServerConfig{
			Command: "go run .",
			Env:     []string{"PORT=8080"},
		},
		Build: entities.BuildConfig{Command: "go build ./..."},
		Watch: entities.WatchConfig{
			ReloadInclude: []string{"cmd"},
			DebounceMs:    200,
			CooldownMs:    1500,
		},
		Refresh: entities.RefreshConfig{Enabled: true, Port: 4100},
	}

	MergeConfigs(target, source)

	assert.Equal(t, "go run .", target.Server.Command)
	assert.Equal(t, []string{"PORT=8080"}, target.Server.Env)
	assert.Equal(t, "go build ./...", target.Build.Command)
	assert.Equal(t, []string{"cmd"}, target.Watch.ReloadInclude)
	assert.Equal(t, 200, target.Watch.DebounceMs)
	assert.Equal(t, 1500, target.Watch.CooldownMs)
	assert.True(t, target.Refresh.Enabled)
	assert.Equal(t, 4100, target.Refresh.Port)
}

func TestMergeConfigsKeepsUnsetFields(t *testing.T) {
	target := GetDefaultConfig()
	source := &entities.Config{
		Server: entities.ServerConfig{Command: "go run ."},
	}

	MergeConfigs(target, source)

	// Defaults survive where the source is silent.
	assert.Equal(t, ".", target.Server.Dir)
	assert.Equal(t, []string{"."}, target.Watch.ReloadInclude)
	assert.Equal(t, []string{".git", "vendor", "node_modules"}, target.Watch.ReloadExclude)
	assert.Equal(t, 50, target.Watch.DebounceMs)
	assert.Equal(t, "localhost", target.Refresh.Host)
	assert.Equal(t, 35729, target.Refresh.Port)
}

func TestMergeConfigsLayering(t *testing.T) {
	target := GetDefaultConfig()

	global := &entities.Config{
		Server: entities.ServerConfig{Command: "make serve"},
		Watch:  entities.WatchConfig{DebounceMs: 100},
	}
	local := &entities.Config{
		Watch: entities.WatchConfig{DebounceMs: 300},
	}

	MergeConfigs(target, global)
	MergeConfigs(target, local)

	// Local wins for fields it sets; global survives for the rest.
	assert.Equal(t, 300, target.Watch.DebounceMs)
	assert.Equal(t, "make serve", target.Server.Command)
}

func TestMergeLogReloadEventsOnlyWhenSet(t *testing.T) {
	off := false

	target := GetDefaultConfig()
	MergeConfigs(target, &entities.Config{
		Logging: entities.LoggingConfig{LogReloadEvents: &off},
	})

	assert.False(t, target.Logging.ShouldLogReloadEvents())

	// A later source that does not mention the field leaves it alone.
	MergeConfigs(target, &entities.Config{})
	assert.False(t, target.Logging.ShouldLogReloadEvents())
}

func TestMergeWatchSpecLists(t *testing.T) {
	target := GetDefaultConfig()
	source := &entities.Config{
		Watch: entities.WatchConfig{
			AssetInclude:       []string{"static", "templates/*.html"},
			AssetExclude:       []string{"static/tmp"},
			ForcedRestartFiles: []string{".env", "config.toml"},
			CodeExtensions:     []string{".go", ".sql"},
		},
	}

	MergeConfigs(target, source)

	assert.Equal(t, []string{"static", "templates/*.html"}, target.Watch.AssetInclude)
	assert.Equal(t, []string{"static/tmp"}, target.Watch.AssetExclude)
	assert.Equal(t, []string{".env", "config.toml"}, target.Watch.ForcedRestartFiles)
	assert.Equal(t, []string{".go", ".sql"}, target.Watch.CodeExtensions)
}

func TestDefaultConfigIsValidOnceCommandSet(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Command = "go run ."

	assert.NoError(t, cfg.Validate())
}
