// Package config loads server and engine settings from a YAML file,
// TIMELINE_* environment variables and defaults, in increasing precedence
// file < env.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/warp/timeline-engine/boundary"
)

// Config represents application configuration.
type Config struct {
	Environment string         `mapstructure:"environment"`
	HTTP        HTTPConfig     `mapstructure:"http"`
	Database    DatabaseConfig `mapstructure:"database"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Planning    PlanningConfig `mapstructure:"planning"`
	Log         LogConfig      `mapstructure:"log"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Bind           string        `mapstructure:"bind"`
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig selects the store. Driver is "sqlite" or "memory".
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// CacheConfig sizes the calculation caches. PurgeSchedule is a cron spec for
// dropping expired entries; empty disables the janitor.
type CacheConfig struct {
	Capacity      int           `mapstructure:"capacity"`
	TTL           time.Duration `mapstructure:"ttl"`
	PurgeSchedule string        `mapstructure:"purge_schedule"`
}

// PlanningConfig tunes the engine.
type PlanningConfig struct {
	OccurrenceCap      int     `mapstructure:"occurrence_cap"`
	DayModePixels      float64 `mapstructure:"day_mode_pixels"`
	WeekModePixels     float64 `mapstructure:"week_mode_pixels"`
	DefaultHoursPerDay float64 `mapstructure:"default_hours_per_day"`
}

// LogConfig configures zerolog.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Addr is the listen address.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("http.bind", "")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "timeline.db")
	v.SetDefault("cache.capacity", 500)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.purge_schedule", "@every 1m")
	v.SetDefault("planning.occurrence_cap", 100)
	v.SetDefault("planning.day_mode_pixels", boundary.DefaultDayModePixels)
	v.SetDefault("planning.week_mode_pixels", boundary.DefaultWeekModePixels)
	v.SetDefault("planning.default_hours_per_day", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Load reads configuration. An empty configPath searches ./config.yaml and
// /etc/timeline/config.yaml; a missing file is fine, a broken one is not.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/timeline")
	}

	v.SetEnvPrefix("TIMELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be 1-65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "memory":
	default:
		return fmt.Errorf("database.driver must be 'sqlite' or 'memory', got '%s'", c.Database.Driver)
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be positive")
	}
	if c.Planning.OccurrenceCap <= 0 {
		return fmt.Errorf("planning.occurrence_cap must be positive")
	}
	if c.Planning.DayModePixels <= 0 || c.Planning.WeekModePixels <= 0 {
		return fmt.Errorf("planning pixel widths must be positive")
	}
	if c.Planning.DefaultHoursPerDay <= 0 || c.Planning.DefaultHoursPerDay > 24 {
		return fmt.Errorf("planning.default_hours_per_day must be in (0, 24]")
	}
	return nil
}
