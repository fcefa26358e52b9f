// Package config loads the service configuration from a YAML file with
// .env and environment variable overrides.
package config

import (
	"time"

	"github.com/jonesrussell/content-engine/internal/scraper"
)

// Default service configuration values.
const (
	defaultServiceName    = "content-engine"
	defaultServiceVersion = "1.0.0"
	defaultServicePort    = 8085
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
)

// Default pipeline configuration values.
const (
	defaultMaxArticles       = 20
	defaultDedupCachePath    = "data/dedup_cache.json"
	defaultDeliveryTimeout   = 60 * time.Second
	defaultNewsIntervalMin   = 30
	defaultMarketIntervalMin = 15
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Scraping  ScrapingConfig  `yaml:"scraping"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
	Dedup     DedupConfig     `yaml:"dedup"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Redis     RedisConfig     `yaml:"redis"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig holds service identity and runtime settings.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"CONTENT_ENGINE_PORT"    yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"              yaml:"debug"`
	APIKey  string `env:"CONTENT_ENGINE_API_KEY" yaml:"api_key"`
}

// ScrapingConfig holds source adapter settings.
type ScrapingConfig struct {
	Feeds          []scraper.FeedSource `yaml:"feeds"`
	NewsAPIKey     string               `env:"NEWSAPI_KEY" yaml:"newsapi_key"`
	TradingViewURL string               `yaml:"tradingview_url"`
	MaxArticles    int                  `env:"MAX_ARTICLES" yaml:"max_articles"`
}

// DeliveryConfig holds admin backend delivery settings.
type DeliveryConfig struct {
	BaseURL string        `env:"ADMIN_BACKEND_URL"     yaml:"base_url"`
	APIKey  string        `env:"ADMIN_BACKEND_API_KEY" yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// DedupConfig holds deduplication cache settings.
type DedupConfig struct {
	CachePath string `env:"DEDUP_CACHE_PATH" yaml:"cache_path"`
}

// SchedulerConfig holds cron scheduler settings.
type SchedulerConfig struct {
	Enabled               bool `env:"SCHEDULER_ENABLED" yaml:"enabled"`
	NewsIntervalMinutes   int  `yaml:"news_interval_minutes"`
	MarketIntervalMinutes int  `yaml:"market_interval_minutes"`
}

// RedisConfig holds optional Redis settings for run completion events.
// An empty address disables event publishing.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// SetDefaults applies default values to all configuration sections.
func (c *Config) SetDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = defaultServiceName
	}
	if c.Service.Version == "" {
		c.Service.Version = defaultServiceVersion
	}
	if c.Service.Port == 0 {
		c.Service.Port = defaultServicePort
	}

	if c.Scraping.MaxArticles == 0 {
		c.Scraping.MaxArticles = defaultMaxArticles
	}

	if c.Delivery.Timeout == 0 {
		c.Delivery.Timeout = defaultDeliveryTimeout
	}

	if c.Dedup.CachePath == "" {
		c.Dedup.CachePath = defaultDedupCachePath
	}

	if c.Scheduler.NewsIntervalMinutes == 0 {
		c.Scheduler.NewsIntervalMinutes = defaultNewsIntervalMin
	}
	if c.Scheduler.MarketIntervalMinutes == 0 {
		c.Scheduler.MarketIntervalMinutes = defaultMarketIntervalMin
	}

	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if portErr := validatePort("service.port", c.Service.Port); portErr != nil {
		return portErr
	}

	if c.Delivery.BaseURL == "" {
		return &ValidationError{Field: "delivery.base_url", Message: "is required"}
	}

	if c.Scraping.MaxArticles < 1 {
		return &ValidationError{Field: "scraping.max_articles", Message: "must be positive"}
	}

	if c.Scheduler.NewsIntervalMinutes < 1 {
		return &ValidationError{Field: "scheduler.news_interval_minutes", Message: "must be positive"}
	}

	if c.Scheduler.MarketIntervalMinutes < 1 {
		return &ValidationError{Field: "scheduler.market_interval_minutes", Message: "must be positive"}
	}

	return nil
}
