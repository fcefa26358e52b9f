// Package bootstrap handles application initialization and lifecycle
// management for the content engine service.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/content-engine/internal/config"
	"github.com/jonesrussell/content-engine/internal/dedup"
	"github.com/jonesrussell/content-engine/internal/delivery"
	"github.com/jonesrussell/content-engine/internal/enrich"
	"github.com/jonesrussell/content-engine/internal/events"
	"github.com/jonesrussell/content-engine/internal/logger"
	"github.com/jonesrussell/content-engine/internal/metrics"
	"github.com/jonesrussell/content-engine/internal/pipeline"
	"github.com/jonesrussell/content-engine/internal/scheduler"
	"github.com/jonesrussell/content-engine/internal/scraper"
)

const (
	redisConnectTimeout  = 5 * time.Second
	schedulerStopTimeout = 10 * time.Second
)

// App holds the wired service components.
type App struct {
	Config       *config.Config
	Logger       logger.Logger
	Orchestrator *pipeline.Orchestrator
	Scheduler    *scheduler.Manager
	Announcer    *events.RedisAnnouncer
	Deliverer    delivery.Deliverer
	Metrics      *metrics.Metrics
}

// NewApp wires the pipeline components from configuration.
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	deduper := dedup.New(cfg.Dedup.CachePath, log)

	sources := []pipeline.Source{
		scraper.NewRSSSource(cfg.Scraping.Feeds, log),
	}
	if cfg.Scraping.NewsAPIKey != "" {
		sources = append(sources, scraper.NewNewsAPISource(cfg.Scraping.NewsAPIKey, log))
	}
	market := scraper.NewTradingViewSource(cfg.Scraping.TradingViewURL, log)

	deliverer := delivery.New(&delivery.Config{
		BaseURL: cfg.Delivery.BaseURL,
		APIKey:  cfg.Delivery.APIKey,
		Timeout: cfg.Delivery.Timeout,
	}, log)

	var announcer *events.RedisAnnouncer
	if cfg.Redis.Addr != "" {
		connectCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
		defer cancel()

		var redisErr error
		announcer, redisErr = events.New(connectCtx, events.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log)
		if redisErr != nil {
			return nil, fmt.Errorf("events: %w", redisErr)
		}
	}

	m := metrics.New()

	orchestrator := pipeline.New(&pipeline.Config{
		Sources:   sources,
		Market:    market,
		Dedup:     deduper,
		Enricher:  enrich.New(log),
		Deliverer: deliverer,
		Announcer: announcer,
		Metrics:   m,
		MaxItems:  cfg.Scraping.MaxArticles,
	}, log)

	sched, schedErr := scheduler.New(orchestrator, &scheduler.Config{
		NewsIntervalMinutes:   cfg.Scheduler.NewsIntervalMinutes,
		MarketIntervalMinutes: cfg.Scheduler.MarketIntervalMinutes,
		MaxArticles:           cfg.Scraping.MaxArticles,
	}, log)
	if schedErr != nil {
		return nil, fmt.Errorf("scheduler: %w", schedErr)
	}

	return &App{
		Config:       cfg,
		Logger:       log,
		Orchestrator: orchestrator,
		Scheduler:    sched,
		Announcer:    announcer,
		Deliverer:    deliverer,
		Metrics:      m,
	}, nil
}

// Run starts the scheduler and HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	server, serverErr := SetupHTTPServer(a)
	if serverErr != nil {
		return fmt.Errorf("http server: %w", serverErr)
	}

	if a.Config.Scheduler.Enabled {
		a.Scheduler.Start()
		a.Logger.Info("Scheduler started",
			logger.Int("news_interval_minutes", a.Config.Scheduler.NewsIntervalMinutes),
			logger.Int("market_interval_minutes", a.Config.Scheduler.MarketIntervalMinutes),
		)
	}

	runErr := server.RunWithGracefulShutdown(ctx)

	a.shutdown()

	if runErr != nil {
		return fmt.Errorf("server: %w", runErr)
	}
	return nil
}

// shutdown stops background work and flushes state.
func (a *App) shutdown() {
	stopCtx, cancel := context.WithTimeout(context.Background(), schedulerStopTimeout)
	defer cancel()

	if stopErr := a.Scheduler.Stop(stopCtx); stopErr != nil {
		a.Logger.Warn("Scheduler stop timed out", logger.Error(stopErr))
	}

	if closeErr := a.Orchestrator.Close(); closeErr != nil {
		a.Logger.Warn("Failed to flush dedup cache", logger.Error(closeErr))
	}

	if closeErr := a.Announcer.Close(); closeErr != nil {
		a.Logger.Warn("Failed to close event publisher", logger.Error(closeErr))
	}
}

// Start initializes and runs the content engine service.
func Start(ctx context.Context) error {
	cfg, configErr := LoadConfig()
	if configErr != nil {
		return fmt.Errorf("config: %w", configErr)
	}

	log, logErr := CreateLogger(cfg)
	if logErr != nil {
		return fmt.Errorf("logger: %w", logErr)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Content Engine",
		logger.String("name", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
	)

	app, appErr := NewApp(ctx, cfg, log)
	if appErr != nil {
		return appErr
	}

	if runErr := app.Run(ctx); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return runErr
	}

	log.Info("Content Engine stopped")
	return nil
}
