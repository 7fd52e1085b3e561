// Package config provides configuration management for the modelspec CLI.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Policy is the validation error policy: accumulate or fail-fast.
	Policy string `koanf:"policy"`
	// OutputFormat is one of auto, text, markdown, json.
	OutputFormat string `koanf:"output"`
	// StatePath is the validation history database.
	StatePath string `koanf:"state_path"`
	// Record stores every validate run in the history database.
	Record  bool `koanf:"record"`
	Verbose bool `koanf:"verbose"`
	// Watch holds settings for validate --watch.
	Watch *WatchConfig `koanf:"watch"`
	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// WatchConfig holds configuration for validate --watch.
type WatchConfig struct {
	// DebounceMillis coalesces bursts of file events.
	DebounceMillis int `koanf:"debounce_ms"`
}

// DefaultWatchConfig returns a WatchConfig with default values.
func DefaultWatchConfig() *WatchConfig {
	return &WatchConfig{DebounceMillis: DefaultDebounceMillis}
}

// GetWatchConfig returns the watch config with defaults applied for any unset values.
func (c *Config) GetWatchConfig() *WatchConfig {
	if c.Watch == nil {
		return DefaultWatchConfig()
	}
	w := *c.Watch
	if w.DebounceMillis <= 0 {
		w.DebounceMillis = DefaultDebounceMillis
	}
	return &w
}

// Default configuration values.
const (
	DefaultPolicy         = "accumulate"
	DefaultOutput         = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultStateFile      = ".modelspec/history.db"
	DefaultDebounceMillis = 100
	ConfigFileName        = "modelspec.yaml"
	ConfigFileNameAlt     = "modelspec.yml"
	EnvPrefix             = "MODELSPEC_"
)
