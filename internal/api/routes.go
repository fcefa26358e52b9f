package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures the API surface. Read endpoints are public;
// endpoints that trigger runs or change jobs require the API key.
func SetupRoutes(router *gin.Engine, pipelineHandler *PipelineHandler, schedulerHandler *SchedulerHandler, apiKey string, metricsHandler http.Handler) {
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := router.Group("/api/v1")

	v1.GET("/pipeline/history", pipelineHandler.GetHistory)
	v1.GET("/pipeline/runs/:id", pipelineHandler.GetRun)
	v1.GET("/scheduler/status", schedulerHandler.GetStatus)
	v1.GET("/scheduler/jobs", schedulerHandler.ListJobs)

	guarded := v1.Group("", APIKeyMiddleware(apiKey))

	guarded.POST("/pipeline/trigger", pipelineHandler.TriggerRun)
	guarded.POST("/scheduler/jobs", schedulerHandler.CreateJob)
	guarded.PATCH("/scheduler/jobs/:id", schedulerHandler.UpdateJob)
	guarded.DELETE("/scheduler/jobs/:id", schedulerHandler.DeleteJob)
}
