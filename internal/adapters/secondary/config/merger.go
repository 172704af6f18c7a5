package config

import "github.com/fredcamaral/hotserve/internal/domain/entities"

// MergeConfigs merges source config into target config (source takes
// precedence for any field it sets)
func MergeConfigs(target, source *entities.Config) {
	mergeServerConfig(target, source)
	mergeBuildConfig(target, source)
	mergeWatchConfig(target, source)
	mergeRefreshConfig(target, source)
	mergeLoggingConfig(target, source)
}

// mergeServerConfig merges server configuration from source to target
func mergeServerConfig(target, source *entities.Config) {
	if source.Server.Command != "" {
		target.Server.Command = source.Server.Command
	}
	if source.Server.Dir != "" {
		target.Server.Dir = source.Server.Dir
	}
	if len(source.Server.Env) > 0 {
		target.Server.Env = source.Server.Env
	}
}

// mergeBuildConfig merges build configuration from source to target
func mergeBuildConfig(target, source *entities.Config) {
	if source.Build.Command != "" {
		target.Build.Command = source.Build.Command
	}
}

// mergeWatchConfig merges watch configuration from source to target
func mergeWatchConfig(target, source *entities.Config) {
	if len(source.Watch.ReloadInclude) > 0 {
		target.Watch.ReloadInclude = source.Watch.ReloadInclude
	}
	if len(source.Watch.ReloadExclude) > 0 {
		target.Watch.ReloadExclude = source.Watch.ReloadExclude
	}
	if len(source.Watch.AssetInclude) > 0 {
		target.Watch.AssetInclude = source.Watch.AssetInclude
	}
	if len(source.Watch.AssetExclude) > 0 {
		target.Watch.AssetExclude = source.Watch.AssetExclude
	}
	if len(source.Watch.ForcedRestartFiles) > 0 {
		target.Watch.ForcedRestartFiles = source.Watch.ForcedRestartFiles
	}
	if len(source.Watch.CodeExtensions) > 0 {
		target.Watch.CodeExtensions = source.Watch.CodeExtensions
	}
	if source.Watch.DebounceMs != 0 {
		target.Watch.DebounceMs = source.Watch.DebounceMs
	}
	if source.Watch.StepMs != 0 {
		target.Watch.StepMs = source.Watch.StepMs
	}
	if source.Watch.CooldownMs != 0 {
		target.Watch.CooldownMs = source.Watch.CooldownMs
	}
}

// mergeRefreshConfig merges refresh configuration from source to target
func mergeRefreshConfig(target, source *entities.Config) {
	target.Refresh.Enabled = source.Refresh.Enabled
	if source.Refresh.Host != "" {
		target.Refresh.Host = source.Refresh.Host
	}
	if source.Refresh.Port != 0 {
		target.Refresh.Port = source.Refresh.Port
	}
	if len(source.Refresh.CORSOrigins) > 0 {
		target.Refresh.CORSOrigins = source.Refresh.CORSOrigins
	}
}

// mergeLoggingConfig merges logging configuration from source to target
func mergeLoggingConfig(target, source *entities.Config) {
	target.Logging.Verbose = source.Logging.Verbose
	if source.Logging.LogReloadEvents != nil {
		target.Logging.LogReloadEvents = source.Logging.LogReloadEvents
	}
	target.Logging.ClearOnReload = source.Logging.ClearOnReload
}
