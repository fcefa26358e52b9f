package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the state reported by a health check.
type HealthStatus string

const (
	// HealthStatusHealthy means the component is fully functional.
	HealthStatusHealthy HealthStatus = "healthy"
	// HealthStatusDegraded means the component works with reduced capability.
	HealthStatusDegraded HealthStatus = "degraded"
	// HealthStatusUnhealthy means the component is not functional.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// CheckResult is one named health check outcome.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// HealthChecker performs one component health check.
type HealthChecker func() CheckResult

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// registerHealthRoutes adds GET and HEAD /health.
func registerHealthRoutes(router *gin.Engine, cfg *Config, checks map[string]HealthChecker, startedAt time.Time) {
	router.GET("/health", func(c *gin.Context) {
		response := HealthResponse{
			Status:  HealthStatusHealthy,
			Service: cfg.ServiceName,
			Version: cfg.ServiceVersion,
			Uptime:  time.Since(startedAt).Truncate(time.Second).String(),
		}

		if len(checks) > 0 {
			response.Checks = make(map[string]CheckResult, len(checks))
			for name, check := range checks {
				started := time.Now()
				result := check()
				result.Latency = time.Since(started).String()
				response.Checks[name] = result

				switch result.Status {
				case HealthStatusUnhealthy:
					response.Status = HealthStatusUnhealthy
				case HealthStatusDegraded:
					if response.Status == HealthStatusHealthy {
						response.Status = HealthStatusDegraded
					}
				}
			}
		}

		code := http.StatusOK
		if response.Status == HealthStatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, response)
	})

	router.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}

// PingHealthChecker adapts a boolean reachability probe into a checker.
func PingHealthChecker(name string, ping func() bool) HealthChecker {
	return func() CheckResult {
		if ping() {
			return CheckResult{Status: HealthStatusHealthy}
		}
		return CheckResult{Status: HealthStatusDegraded, Message: name + " unreachable"}
	}
}
