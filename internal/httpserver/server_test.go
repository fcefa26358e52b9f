package httpserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/content-engine/internal/httpserver"
	"github.com/jonesrussell/content-engine/internal/logger"
)

func buildServer(t *testing.T, opts ...func(*httpserver.Builder)) *httpserver.Server {
	t.Helper()

	builder := httpserver.NewBuilder("content-engine", 0).
		WithLogger(logger.NewNop()).
		WithVersion("1.2.3")
	for _, opt := range opts {
		opt(builder)
	}

	server, buildErr := builder.Build()
	require.NoError(t, buildErr)
	return server
}

func TestServer_HealthEndpoint(t *testing.T) {
	server := buildServer(t)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var health httpserver.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, httpserver.HealthStatusHealthy, health.Status)
	assert.Equal(t, "content-engine", health.Service)
	assert.Equal(t, "1.2.3", health.Version)
}

func TestServer_HealthChecksRollUp(t *testing.T) {
	server := buildServer(t, func(b *httpserver.Builder) {
		b.WithHealthCheck("backend", httpserver.PingHealthChecker("backend", func() bool { return false }))
	})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var health httpserver.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, httpserver.HealthStatusDegraded, health.Status)
	assert.Equal(t, httpserver.HealthStatusDegraded, health.Checks["backend"].Status)
	assert.Contains(t, health.Checks["backend"].Message, "unreachable")
}

func TestServer_RequestIDPropagated(t *testing.T) {
	server := buildServer(t, func(b *httpserver.Builder) {
		b.WithRoutes(func(router *gin.Engine) {
			router.GET("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })
		})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set("X-Request-ID", "req-42")
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/echo", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_PanicRecovered(t *testing.T) {
	server := buildServer(t, func(b *httpserver.Builder) {
		b.WithRoutes(func(router *gin.Engine) {
			router.GET("/boom", func(_ *gin.Context) { panic("kaboom") })
		})
	})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestServer_CORSPreflight(t *testing.T) {
	server := buildServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
