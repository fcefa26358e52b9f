package bootstrap

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/content-engine/internal/api"
	"github.com/jonesrussell/content-engine/internal/httpserver"
)

const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 120 * time.Second
	healthCheckTimeout  = 2 * time.Second
)

// SetupHTTPServer creates the HTTP server with all handlers wired.
func SetupHTTPServer(app *App) (*httpserver.Server, error) {
	pipelineHandler := api.NewPipelineHandler(app.Orchestrator)
	schedulerHandler := api.NewSchedulerHandler(app.Scheduler)

	builder := httpserver.NewBuilder(app.Config.Service.Name, app.Config.Service.Port).
		WithLogger(app.Logger).
		WithDebug(app.Config.Service.Debug).
		WithVersion(app.Config.Service.Version).
		WithTimeouts(defaultReadTimeout, defaultWriteTimeout, defaultIdleTimeout).
		WithHealthCheck("admin_backend", httpserver.PingHealthChecker("admin_backend", func() bool {
			ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
			defer cancel()
			return app.Deliverer.Ping(ctx)
		})).
		WithRoutes(func(router *gin.Engine) {
			api.SetupRoutes(router, pipelineHandler, schedulerHandler, app.Config.Service.APIKey, app.Metrics.Handler())
		})

	if app.Announcer != nil {
		builder = builder.WithHealthCheck("redis", httpserver.PingHealthChecker("redis", func() bool {
			ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
			defer cancel()
			return app.Announcer.Ping(ctx)
		}))
	}

	return builder.Build()
}
