package config

import "github.com/fredcamaral/hotserve/internal/domain/entities"

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *entities.Config {
	return &entities.Config{
		Server: entities.ServerConfig{
			Command: "",
			Dir:     ".",
		},
		Build: entities.BuildConfig{
			Command: "",
		},
		Watch: entities.WatchConfig{
			ReloadInclude:      []string{"."},
			ReloadExclude:      []string{".git", "vendor", "node_modules"},
			AssetInclude:       []string{},
			AssetExclude:       []string{},
			ForcedRestartFiles: []string{},
			CodeExtensions:     []string{".go"},
			DebounceMs:         50,
			StepMs:             0,
			CooldownMs:         0,
		},
		Refresh: entities.RefreshConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    35729,
		},
		Logging: entities.LoggingConfig{
			Verbose:       false,
			ClearOnReload: false,
		},
	}
}
