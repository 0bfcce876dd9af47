// Package config loads pulse settings through viper: defaults, an optional
// YAML file under the user config directory and PULSE_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. PULSE_SERVER_PORT.
const EnvPrefix = "PULSE"

// Config is the complete pulse configuration.
type Config struct {
	Timeline TimelineConfig `mapstructure:"timeline"`
	Viewport ViewportConfig `mapstructure:"viewport"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Store    StoreConfig    `mapstructure:"store"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Claude   ClaudeConfig   `mapstructure:"claude"`
}

// TimelineConfig controls the date axis scale.
type TimelineConfig struct {
	// PixelsPerDay is the initial zoom level.
	PixelsPerDay float64 `mapstructure:"pixels_per_day"`
	// MinPixelsPerDay and MaxPixelsPerDay bound zooming.
	MinPixelsPerDay float64 `mapstructure:"min_pixels_per_day"`
	MaxPixelsPerDay float64 `mapstructure:"max_pixels_per_day"`
}

// ViewportConfig controls the infinite-scroll month window.
type ViewportConfig struct {
	InitialMonthsBefore int     `mapstructure:"initial_months_before"`
	InitialMonthsAfter  int     `mapstructure:"initial_months_after"`
	BatchMonths         int     `mapstructure:"batch_months"`
	EdgeThresholdPx     float64 `mapstructure:"edge_threshold_px"`
	CooldownMs          int     `mapstructure:"cooldown_ms"`
}

// Cooldown returns the loading cooldown as a duration.
func (c ViewportConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownMs) * time.Millisecond
}

// ScheduleConfig selects the forward scheduling strategy.
type ScheduleConfig struct {
	// Strategy is "relax" (bounded repeated passes) or "topological".
	Strategy string `mapstructure:"strategy"`
}

// StoreConfig selects where task documents live.
type StoreConfig struct {
	// Path is the default document path used when --file is not given.
	Path string `mapstructure:"path"`
	// Driver is "json", "yaml" or "sqlite". Empty infers it from Path.
	Driver string `mapstructure:"driver"`
}

// ServerConfig controls the HTTP viewer.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	// Dir receives pulse.log; empty logs to stderr.
	Dir string `mapstructure:"dir"`
}

// ClaudeConfig controls dependency inference.
type ClaudeConfig struct {
	Model     string `mapstructure:"model"`
	MaxTokens int64  `mapstructure:"max_tokens"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Timeline: TimelineConfig{
			PixelsPerDay:    24,
			MinPixelsPerDay: 2,
			MaxPixelsPerDay: 100,
		},
		Viewport: ViewportConfig{
			InitialMonthsBefore: 6,
			InitialMonthsAfter:  5,
			BatchMonths:         6,
			EdgeThresholdPx:     500,
			CooldownMs:          300,
		},
		Schedule: ScheduleConfig{Strategy: "relax"},
		Store:    StoreConfig{Path: "tasks.json"},
		Server:   ServerConfig{Port: 7171, Host: "127.0.0.1"},
		Logging:  LoggingConfig{Level: "info"},
		Claude:   ClaudeConfig{Model: "claude-sonnet-4-5-20250929", MaxTokens: 4096},
	}
}

// SetDefaults registers the defaults on v.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("timeline.pixels_per_day", d.Timeline.PixelsPerDay)
	v.SetDefault("timeline.min_pixels_per_day", d.Timeline.MinPixelsPerDay)
	v.SetDefault("timeline.max_pixels_per_day", d.Timeline.MaxPixelsPerDay)

	v.SetDefault("viewport.initial_months_before", d.Viewport.InitialMonthsBefore)
	v.SetDefault("viewport.initial_months_after", d.Viewport.InitialMonthsAfter)
	v.SetDefault("viewport.batch_months", d.Viewport.BatchMonths)
	v.SetDefault("viewport.edge_threshold_px", d.Viewport.EdgeThresholdPx)
	v.SetDefault("viewport.cooldown_ms", d.Viewport.CooldownMs)

	v.SetDefault("schedule.strategy", d.Schedule.Strategy)

	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.driver", d.Store.Driver)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.host", d.Server.Host)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.dir", d.Logging.Dir)

	v.SetDefault("claude.model", d.Claude.Model)
	v.SetDefault("claude.max_tokens", d.Claude.MaxTokens)
}

// Init prepares v: defaults, environment binding and the config file. An
// explicit file must exist; the default file is optional.
func Init(v *viper.Viper, file string) error {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		return v.ReadInConfig()
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}
	return nil
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}

// ConfigDir returns $XDG_CONFIG_HOME/pulse or ~/.config/pulse.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pulse")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pulse"
	}
	return filepath.Join(home, ".config", "pulse")
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StoreDriver returns the configured driver, inferring it from the path
// extension when unset.
func (c *Config) StoreDriver(path string) string {
	if c.Store.Driver != "" {
		return c.Store.Driver
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite"
	default:
		return "json"
	}
}
