package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName       string `mapstructure:"app_name"`
	Env           string `mapstructure:"app_env"`
	LogLevel      string `mapstructure:"log_level"`
	SeedsFile     string `mapstructure:"seeds_file"`
	ExportersFile string `mapstructure:"exporters_file"`

	MaxItems               int  `mapstructure:"max_items"`
	MaxPagesPerSeed        int  `mapstructure:"max_pages_per_seed"`
	MaxConsecutiveFailures int  `mapstructure:"max_consecutive_failures"`
	Concurrency            int  `mapstructure:"concurrency"`
	StrictDates            bool `mapstructure:"strict_dates"`
	WindowHours            int  `mapstructure:"window_hours"`
	WindowDays             int  `mapstructure:"window_days"`
	WindowYears            int  `mapstructure:"window_years"`
	DecodeTokenMaxLen      int  `mapstructure:"decode_token_max_len"`

	FetchTimeoutSeconds int64         `mapstructure:"fetch_timeout_seconds"`
	FetchTimeout        time.Duration `mapstructure:"-"`
	RequestsPerSecond   float64       `mapstructure:"requests_per_second"`

	RunIntervalSeconds int64         `mapstructure:"run_interval_seconds"`
	RunInterval        time.Duration `mapstructure:"-"`

	CacheType            string        `mapstructure:"cache_type"`
	BBoltPath            string        `mapstructure:"bbolt_path"`
	CacheTTLSeconds      int64         `mapstructure:"cache_ttl_seconds"`
	CacheCleanupSeconds  int64         `mapstructure:"cache_cleanup_interval_seconds"`
	CacheTTL             time.Duration `mapstructure:"-"`
	CacheCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "gnews-scraper")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("seeds_file", "./configs/seeds.yaml")
	v.SetDefault("exporters_file", "./configs/exporters.yaml")
	v.SetDefault("max_items", 50)
	v.SetDefault("max_pages_per_seed", 10)
	v.SetDefault("max_consecutive_failures", 3)
	v.SetDefault("concurrency", 1)
	v.SetDefault("strict_dates", false)
	v.SetDefault("window_hours", 0)
	v.SetDefault("window_days", 0)
	v.SetDefault("window_years", 0)
	v.SetDefault("decode_token_max_len", 2048)
	v.SetDefault("fetch_timeout_seconds", 10)
	v.SetDefault("requests_per_second", 2.0)
	v.SetDefault("run_interval_seconds", 0) // one-shot
	v.SetDefault("cache_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/decoded.db")
	v.SetDefault("cache_ttl_seconds", int64((5*24*time.Hour)/time.Second))
	v.SetDefault("cache_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.MaxItems <= 0 {
		return nil, fmt.Errorf("invalid max_items (must be positive)")
	}
	if cfg.MaxPagesPerSeed <= 0 {
		return nil, fmt.Errorf("invalid max_pages_per_seed (must be positive)")
	}
	if cfg.MaxConsecutiveFailures <= 0 {
		return nil, fmt.Errorf("invalid max_consecutive_failures (must be positive)")
	}
	if cfg.Concurrency <= 0 {
		return nil, fmt.Errorf("invalid concurrency (must be positive)")
	}
	if cfg.DecodeTokenMaxLen <= 0 {
		return nil, fmt.Errorf("invalid decode_token_max_len (must be positive)")
	}
	if cfg.WindowHours < 0 || cfg.WindowDays < 0 || cfg.WindowYears < 0 {
		return nil, fmt.Errorf("invalid time window (units must not be negative)")
	}

	if cfg.FetchTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid fetch_timeout_seconds (must be positive seconds)")
	}
	cfg.FetchTimeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second

	if cfg.RunIntervalSeconds < 0 {
		return nil, fmt.Errorf("invalid run_interval_seconds (must not be negative)")
	}
	cfg.RunInterval = time.Duration(cfg.RunIntervalSeconds) * time.Second

	if cfg.CacheTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid cache_ttl_seconds (must be positive seconds)")
	}
	if cfg.CacheCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid cache_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.CacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	cfg.CacheCleanupInterval = time.Duration(cfg.CacheCleanupSeconds) * time.Second

	return &cfg, nil
}
