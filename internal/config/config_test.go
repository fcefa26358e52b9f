package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/content-engine/internal/config"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
delivery:
  base_url: http://localhost:8000
`)

	cfg, loadErr := config.Load(path)
	require.NoError(t, loadErr)

	assert.Equal(t, "content-engine", cfg.Service.Name)
	assert.Equal(t, 8085, cfg.Service.Port)
	assert.Equal(t, 20, cfg.Scraping.MaxArticles)
	assert.Equal(t, 60*time.Second, cfg.Delivery.Timeout)
	assert.Equal(t, "data/dedup_cache.json", cfg.Dedup.CachePath)
	assert.Equal(t, 30, cfg.Scheduler.NewsIntervalMinutes)
	assert.Equal(t, 15, cfg.Scheduler.MarketIntervalMinutes)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_ReadsYAMLValues(t *testing.T) {
	path := writeConfigFile(t, `
service:
  port: 9100
  debug: true
scraping:
  max_articles: 50
  feeds:
    - name: bbc
      url: http://feeds.bbci.co.uk/news/rss.xml
delivery:
  base_url: http://backend:8000
  api_key: secret
  timeout: 30s
scheduler:
  enabled: true
  news_interval_minutes: 10
redis:
  addr: localhost:6379
`)

	cfg, loadErr := config.Load(path)
	require.NoError(t, loadErr)

	assert.Equal(t, 9100, cfg.Service.Port)
	assert.True(t, cfg.Service.Debug)
	assert.Equal(t, 50, cfg.Scraping.MaxArticles)
	require.Len(t, cfg.Scraping.Feeds, 1)
	assert.Equal(t, "bbc", cfg.Scraping.Feeds[0].Name)
	assert.Equal(t, "http://backend:8000", cfg.Delivery.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Delivery.Timeout)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 10, cfg.Scheduler.NewsIntervalMinutes)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfigFile(t, `
service:
  port: 9100
delivery:
  base_url: http://backend:8000
`)

	t.Setenv("CONTENT_ENGINE_PORT", "9200")
	t.Setenv("NEWSAPI_KEY", "env-key")
	t.Setenv("APP_DEBUG", "yes")

	cfg, loadErr := config.Load(path)
	require.NoError(t, loadErr)

	assert.Equal(t, 9200, cfg.Service.Port)
	assert.Equal(t, "env-key", cfg.Scraping.NewsAPIKey)
	assert.True(t, cfg.Service.Debug)
}

func TestLoad_MissingFile(t *testing.T) {
	_, loadErr := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, loadErr)
}

func TestLoad_RequiresDeliveryBaseURL(t *testing.T) {
	path := writeConfigFile(t, `
service:
  port: 9100
`)

	_, loadErr := config.Load(path)
	require.Error(t, loadErr)
	assert.Contains(t, loadErr.Error(), "delivery.base_url")
}

func TestValidate_RejectsBadPort(t *testing.T) {
	path := writeConfigFile(t, `
service:
  port: 99999
delivery:
  base_url: http://backend:8000
`)

	_, loadErr := config.Load(path)
	require.Error(t, loadErr)
	assert.Contains(t, loadErr.Error(), "service.port")
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv("CONFIG_PATH", "/etc/engine/config.yml")
	assert.Equal(t, "/etc/engine/config.yml", config.GetConfigPath("config.yml"))
}
