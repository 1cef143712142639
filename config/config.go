package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Lookup    LookupConfig
	Cache     CacheConfig
	Matching  MatchingConfig
	Reconcile ReconcileConfig
	Aliases   AliasConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	LogLevel       string   `mapstructure:"log_level"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LookupConfig holds external catalog lookup configuration
type LookupConfig struct {
	BaseURL    string  `mapstructure:"base_url"`
	UserAgent  string  `mapstructure:"user_agent"`
	RatePerSec float64 `mapstructure:"rate_per_sec"`
	RateBurst  int     `mapstructure:"rate_burst"`
}

// CacheConfig holds lookup-cache configuration
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// MatchingConfig holds label-scan matching configuration
type MatchingConfig struct {
	ScanTopN        int    `mapstructure:"scan_top_n"`
	CatalogSeedPath string `mapstructure:"catalog_seed_path"`
}

// ReconcileConfig holds batch reconciliation configuration
type ReconcileConfig struct {
	TopN                 int           `mapstructure:"top_n"`
	AutoAcceptThreshold  float64       `mapstructure:"auto_accept_threshold"`
	QuickReviewThreshold float64       `mapstructure:"quick_review_threshold"`
	LookupTimeout        time.Duration `mapstructure:"lookup_timeout"`
}

// AliasConfig holds the static alias and synonym tables. Loaded once at
// startup; a malformed table is a fatal startup error.
type AliasConfig struct {
	Brands     map[string][]string `mapstructure:"brands"`
	Categories map[string][]string `mapstructure:"categories"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/cocoamatch/")

	v.SetEnvPrefix("COCOAMATCH")
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults suffice without it.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Lookup defaults
	v.SetDefault("lookup.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("lookup.user_agent", "CocoaMatch/1.0")
	v.SetDefault("lookup.rate_per_sec", 5.0)
	v.SetDefault("lookup.rate_burst", 10)

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// Matching defaults
	v.SetDefault("matching.scan_top_n", 5)
	v.SetDefault("matching.catalog_seed_path", "")

	// Reconciliation defaults
	v.SetDefault("reconcile.top_n", 4)
	v.SetDefault("reconcile.auto_accept_threshold", 120.0)
	v.SetDefault("reconcile.quick_review_threshold", 60.0)
	v.SetDefault("reconcile.lookup_timeout", "10s")

	// Known noisy spellings of catalog brands, and colloquial category
	// synonyms seen on labels. Extended in config.yaml per deployment.
	v.SetDefault("aliases.brands", map[string][]string{
		"valrhona":  {"valhrona", "valrona", "varlhona"},
		"lindt":     {"lindor", "lindt and sprungli"},
		"guittard":  {"guitard", "guittards"},
		"callebaut": {"calebaut", "callebout"},
		"amedei":    {"amadei"},
		"domori":    {"dommori"},
	})
	v.SetDefault("aliases.categories", map[string][]string{
		"dark":    {"noir", "bittersweet", "fondente", "extra dark"},
		"milk":    {"lait", "latte", "milch"},
		"white":   {"blanc", "bianco", "ivoire"},
		"truffle": {"truffe", "truffles", "ganache"},
	})
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Lookup.BaseURL == "" {
		return fmt.Errorf("lookup base URL is required")
	}

	if config.Matching.ScanTopN <= 0 {
		return fmt.Errorf("matching.scan_top_n must be positive, got: %d", config.Matching.ScanTopN)
	}
	if config.Reconcile.TopN <= 0 {
		return fmt.Errorf("reconcile.top_n must be positive, got: %d", config.Reconcile.TopN)
	}

	if config.Reconcile.QuickReviewThreshold <= 0 {
		return fmt.Errorf("reconcile.quick_review_threshold must be positive")
	}
	if config.Reconcile.AutoAcceptThreshold <= config.Reconcile.QuickReviewThreshold {
		return fmt.Errorf("reconcile.auto_accept_threshold (%.0f) must exceed quick_review_threshold (%.0f)",
			config.Reconcile.AutoAcceptThreshold, config.Reconcile.QuickReviewThreshold)
	}

	return nil
}
