package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/content-engine/internal/logger"
)

// Builder assembles a Server with standard middleware and health routes.
type Builder struct {
	config       *Config
	logger       logger.Logger
	setupRoutes  func(*gin.Engine)
	healthChecks map[string]HealthChecker
}

// NewBuilder creates a builder for the named service.
func NewBuilder(serviceName string, port int) *Builder {
	cfg := &Config{ServiceName: serviceName, Port: port}
	cfg.SetDefaults()

	return &Builder{
		config:       cfg,
		healthChecks: make(map[string]HealthChecker),
	}
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(log logger.Logger) *Builder {
	b.logger = log
	return b
}

// WithDebug toggles Gin debug mode.
func (b *Builder) WithDebug(debug bool) *Builder {
	b.config.Debug = debug
	return b
}

// WithVersion sets the service version reported by /health.
func (b *Builder) WithVersion(version string) *Builder {
	b.config.ServiceVersion = version
	return b
}

// WithTimeouts overrides the server timeouts.
func (b *Builder) WithTimeouts(read, write, idle time.Duration) *Builder {
	b.config.ReadTimeout = read
	b.config.WriteTimeout = write
	b.config.IdleTimeout = idle
	return b
}

// WithHealthCheck adds a named health check to /health.
func (b *Builder) WithHealthCheck(name string, check HealthChecker) *Builder {
	b.healthChecks[name] = check
	return b
}

// WithRoutes sets the service-specific route setup.
func (b *Builder) WithRoutes(setupRoutes func(*gin.Engine)) *Builder {
	b.setupRoutes = setupRoutes
	return b
}

// Build assembles the server.
func (b *Builder) Build() (*Server, error) {
	log := b.logger
	if log == nil {
		var logErr error
		log, logErr = logger.New(logger.Config{Development: b.config.Debug})
		if logErr != nil {
			return nil, fmt.Errorf("build server logger: %w", logErr)
		}
	}

	if b.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RecoveryMiddleware(log))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(b.config.CORS))

	registerHealthRoutes(router, b.config, b.healthChecks, time.Now())

	if b.setupRoutes != nil {
		b.setupRoutes(router)
	}

	return &Server{
		router: router,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", b.config.Port),
			Handler:      router,
			ReadTimeout:  b.config.ReadTimeout,
			WriteTimeout: b.config.WriteTimeout,
			IdleTimeout:  b.config.IdleTimeout,
		},
		logger: log,
		config: b.config,
	}, nil
}

// Server is an HTTP server with lifecycle management.
type Server struct {
	router *gin.Engine
	server *http.Server
	logger logger.Logger
	config *Config
}

// Router exposes the Gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until shutdown. It blocks.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting",
		logger.String("address", s.server.Addr),
		logger.String("service", s.config.ServiceName),
		logger.String("version", s.config.ServiceVersion),
	)

	if serveErr := s.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", serveErr)
	}

	return nil
}

// Shutdown drains connections within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if shutdownErr := s.server.Shutdown(shutdownCtx); shutdownErr != nil {
		return fmt.Errorf("http server shutdown: %w", shutdownErr)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// RunWithGracefulShutdown serves until SIGINT, SIGTERM, or context
// cancellation, then shuts down gracefully.
func (s *Server) RunWithGracefulShutdown(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case serveErr := <-errCh:
		return serveErr
	case sig := <-sigCh:
		s.logger.Info("shutdown signal received", logger.String("signal", sig.String()))
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down")
	}

	return s.Shutdown(context.Background())
}
