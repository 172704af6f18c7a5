package entities

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Build   BuildConfig   `toml:"build"`
	Watch   WatchConfig   `toml:"watch"`
	Refresh RefreshConfig `toml:"refresh"`
	Logging LoggingConfig `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	if err := c.Refresh.Validate(); err != nil {
		return fmt.Errorf("refresh config: %w", err)
	}

	return nil
}

// ServerConfig describes the supervised server process
type ServerConfig struct {
	// Command is the shell command that starts the server
	Command string `toml:"command"`
	// Dir is the working directory for the command (default: cwd)
	Dir string `toml:"dir"`
	// Env lists extra KEY=VALUE pairs for the command environment
	Env []string `toml:"env"`
}

// Validate validates the server configuration
func (s ServerConfig) Validate() error {
	if strings.TrimSpace(s.Command) == "" {
		return errors.New("command cannot be empty")
	}

	for _, kv := range s.Env {
		if !strings.Contains(kv, "=") {
			return fmt.Errorf("invalid env entry %q (expected KEY=VALUE)", kv)
		}
	}

	return nil
}

// BuildConfig describes the optional build step run before each start
type BuildConfig struct {
	// Command is run with the changed paths before a new instance starts.
	// Empty means no build step.
	Command string `toml:"command"`
}

// WatchConfig scopes change classification and batching
type WatchConfig struct {
	ReloadInclude      []string `toml:"reload_include"`
	ReloadExclude      []string `toml:"reload_exclude"`
	AssetInclude       []string `toml:"asset_include"`
	AssetExclude       []string `toml:"asset_exclude"`
	ForcedRestartFiles []string `toml:"forced_restart_files"`
	CodeExtensions     []string `toml:"code_extensions"`
	DebounceMs         int      `toml:"debounce_ms"`
	StepMs             int      `toml:"step_ms"`
	CooldownMs         int      `toml:"cooldown_ms"`
}

// Validate validates the watch configuration
func (w WatchConfig) Validate() error {
	if w.DebounceMs < 0 {
		return errors.New("debounce_ms must be non-negative")
	}

	if w.StepMs < 0 {
		return errors.New("step_ms must be non-negative")
	}

	if w.CooldownMs < 0 {
		return errors.New("cooldown_ms must be non-negative")
	}

	for _, ext := range w.CodeExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("code extension %q must start with a dot", ext)
		}
	}

	return nil
}

// GetDebounce returns the debounce window, defaulting to a short quiet
// period when unset
func (w WatchConfig) GetDebounce() time.Duration {
	if w.DebounceMs <= 0 {
		return 50 * time.Millisecond
	}
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// GetStep returns the maximum batch age; zero means unbounded
func (w WatchConfig) GetStep() time.Duration {
	if w.StepMs <= 0 {
		return 0
	}
	return time.Duration(w.StepMs) * time.Millisecond
}

// GetCooldown returns the minimum spacing between server starts
func (w WatchConfig) GetCooldown() time.Duration {
	if w.CooldownMs <= 0 {
		return 0
	}
	return time.Duration(w.CooldownMs) * time.Millisecond
}

// GetCodeExtensions returns the source-code suffixes, defaulting to Go
// sources. Files with these suffixes always classify as code changes.
func (w WatchConfig) GetCodeExtensions() []string {
	if len(w.CodeExtensions) == 0 {
		return []string{".go"}
	}
	return w.CodeExtensions
}

// RefreshConfig controls the browser auto-refresh channel
type RefreshConfig struct {
	Enabled     bool     `toml:"enabled"`
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Validate validates the refresh configuration
func (r RefreshConfig) Validate() error {
	if r.Port < 0 || r.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if r.Host != "" {
		if ip := net.ParseIP(r.Host); ip == nil {
			if _, err := net.LookupHost(r.Host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
		}
	}

	for _, origin := range r.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// GetHost returns the refresh server host with a default
func (r RefreshConfig) GetHost() string {
	if r.Host == "" {
		return "localhost"
	}
	return r.Host
}

// GetPort returns the refresh server port with a default
func (r RefreshConfig) GetPort() int {
	if r.Port == 0 {
		return 35729
	}
	return r.Port
}

// GetCORSOrigins returns CORS origins with localhost defaults if empty
func (r RefreshConfig) GetCORSOrigins() []string {
	if len(r.CORSOrigins) == 0 {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:8080",
			"http://127.0.0.1:8080",
		}
	}
	return r.CORSOrigins
}

// LoggingConfig contains logging behavior configuration
type LoggingConfig struct {
	Verbose bool `toml:"verbose"`
	// LogReloadEvents controls the per-change warning logs; nil means on
	LogReloadEvents *bool `toml:"log_reload_events"`
	// ClearOnReload clears the terminal before each restart
	ClearOnReload bool `toml:"clear_on_reload"`
}

// ShouldLogReloadEvents reports whether per-change logs are enabled
func (l LoggingConfig) ShouldLogReloadEvents() bool {
	return l.LogReloadEvents == nil || *l.LogReloadEvents
}
