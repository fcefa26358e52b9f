// Package api provides the HTTP handlers for triggering pipelines and
// inspecting runs and scheduled jobs.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/pipeline"
)

// historyLimitMax caps the history page size.
const historyLimitMax = 100

// PipelineService defines the orchestrator operations the handlers need.
type PipelineService interface {
	Trigger(ctx context.Context, pipelineType domain.PipelineType, maxItems int, triggeredBy domain.TriggerOrigin) (string, error)
	Recent(limit int) []domain.RunSummary
	Get(id string) (*domain.Run, error)
}

// PipelineHandler handles pipeline trigger and run inspection requests.
type PipelineHandler struct {
	svc PipelineService
}

// NewPipelineHandler creates a pipeline handler.
func NewPipelineHandler(svc PipelineService) *PipelineHandler {
	return &PipelineHandler{svc: svc}
}

// triggerRequest is the POST /pipeline/trigger body.
type triggerRequest struct {
	PipelineType domain.PipelineType `json:"pipeline_type"`
	MaxArticles  int                 `json:"max_articles"`
}

// TriggerRun handles POST /api/v1/pipeline/trigger. The run executes in
// the background; the response carries its ID.
func (h *PipelineHandler) TriggerRun(c *gin.Context) {
	var req triggerRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErr.Error()})
		return
	}

	if req.PipelineType == "" {
		req.PipelineType = domain.PipelineFull
	}

	runID, triggerErr := h.svc.Trigger(c.Request.Context(), req.PipelineType, req.MaxArticles, domain.TriggerManual)
	if triggerErr != nil {
		if errors.Is(triggerErr, pipeline.ErrInvalidPipelineType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": triggerErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": triggerErr.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"run_id":        runID,
		"pipeline_type": req.PipelineType,
		"status":        "started",
	})
}

// GetHistory handles GET /api/v1/pipeline/history.
func (h *PipelineHandler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, parseErr := strconv.Atoi(raw)
		if parseErr != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	if limit > historyLimitMax {
		limit = historyLimitMax
	}

	runs := h.svc.Recent(limit)

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun handles GET /api/v1/pipeline/runs/:id.
func (h *PipelineHandler) GetRun(c *gin.Context) {
	run, getErr := h.svc.Get(c.Param("id"))
	if getErr != nil {
		if errors.Is(getErr, pipeline.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": getErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": getErr.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}
