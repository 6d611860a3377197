package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	MinRefresh = 1 * time.Second
	MaxRefresh = 5 * time.Minute
)

// Config holds all runtime configuration for ls-cosmos.
// Values are populated from .ls-cosmos.yaml, LS_COSMOS_* env vars, and CLI flags.
type Config struct {
	LogLevel    string        `mapstructure:"log_level"`
	Refresh     time.Duration `mapstructure:"refresh"`
	ServerAddr  string        `mapstructure:"server_addr"`
	WSInterval  time.Duration `mapstructure:"ws_interval"`
	AlmanacPath string        `mapstructure:"almanac_path"`
	AlmanacDays int           `mapstructure:"almanac_days"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("refresh", 60*time.Second)
	viper.SetDefault("server_addr", ":8080")
	viper.SetDefault("ws_interval", 5*time.Second)
	viper.SetDefault("almanac_path", "")
	viper.SetDefault("almanac_days", 30)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Refresh = ClampRefresh(cfg.Refresh)
	if cfg.WSInterval <= 0 {
		cfg.WSInterval = 5 * time.Second
	}
	return cfg, nil
}

// ClampRefresh bounds a refresh interval to [MinRefresh, MaxRefresh].
func ClampRefresh(d time.Duration) time.Duration {
	if d < MinRefresh {
		return MinRefresh
	}
	if d > MaxRefresh {
		return MaxRefresh
	}
	return d
}
