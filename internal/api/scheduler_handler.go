package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/scheduler"
)

// Job update actions accepted by PATCH /scheduler/jobs/:id.
const (
	actionPause  = "pause"
	actionResume = "resume"
	actionRemove = "remove"
	actionRunNow = "run_now"
)

// SchedulerService defines the scheduler operations the handlers need.
type SchedulerService interface {
	Status() domain.SchedulerStatus
	Jobs() []domain.ScheduledJob
	AddJob(job domain.ScheduledJob) (domain.ScheduledJob, error)
	RemoveJob(id string) error
	PauseJob(id string) error
	ResumeJob(id string) error
	RunNow(id string) error
}

// SchedulerHandler handles scheduler inspection and job management.
type SchedulerHandler struct {
	svc SchedulerService
}

// NewSchedulerHandler creates a scheduler handler.
func NewSchedulerHandler(svc SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{svc: svc}
}

// GetStatus handles GET /api/v1/scheduler/status.
func (h *SchedulerHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Status())
}

// ListJobs handles GET /api/v1/scheduler/jobs.
func (h *SchedulerHandler) ListJobs(c *gin.Context) {
	jobs := h.svc.Jobs()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// createJobRequest is the POST /scheduler/jobs body. The schedule type
// is optional; when absent it is inferred from which cadence field is
// set.
type createJobRequest struct {
	ID              string              `json:"job_id"`
	Name            string              `json:"name"`
	PipelineType    domain.PipelineType `json:"pipeline_type"`
	ScheduleType    domain.ScheduleType `json:"schedule_type"`
	IntervalMinutes int                 `json:"interval_minutes"`
	CronExpression  string              `json:"cron_expression"`
}

// CreateJob handles POST /api/v1/scheduler/jobs.
func (h *SchedulerHandler) CreateJob(c *gin.Context) {
	var req createJobRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErr.Error()})
		return
	}

	job, addErr := h.svc.AddJob(domain.ScheduledJob{
		ID:              req.ID,
		Name:            req.Name,
		PipelineType:    req.PipelineType,
		ScheduleType:    req.ScheduleType,
		IntervalMinutes: req.IntervalMinutes,
		CronExpression:  req.CronExpression,
	})
	if addErr != nil {
		c.JSON(schedulerErrorStatus(addErr), gin.H{"error": addErr.Error()})
		return
	}

	c.JSON(http.StatusCreated, job)
}

// updateJobRequest is the PATCH /scheduler/jobs/:id body.
type updateJobRequest struct {
	Action string `json:"action"`
}

// UpdateJob handles PATCH /api/v1/scheduler/jobs/:id.
func (h *SchedulerHandler) UpdateJob(c *gin.Context) {
	var req updateJobRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErr.Error()})
		return
	}

	id := c.Param("id")

	var actionErr error
	switch req.Action {
	case actionPause:
		actionErr = h.svc.PauseJob(id)
	case actionResume:
		actionErr = h.svc.ResumeJob(id)
	case actionRemove:
		actionErr = h.svc.RemoveJob(id)
	case actionRunNow:
		actionErr = h.svc.RunNow(id)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be pause, resume, remove, or run_now"})
		return
	}

	if actionErr != nil {
		c.JSON(schedulerErrorStatus(actionErr), gin.H{"error": actionErr.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id": id,
		"action": req.Action,
		"status": "applied",
	})
}

// DeleteJob handles DELETE /api/v1/scheduler/jobs/:id.
func (h *SchedulerHandler) DeleteJob(c *gin.Context) {
	if removeErr := h.svc.RemoveJob(c.Param("id")); removeErr != nil {
		c.JSON(schedulerErrorStatus(removeErr), gin.H{"error": removeErr.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// schedulerErrorStatus maps scheduler errors to HTTP statuses.
func schedulerErrorStatus(err error) int {
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduler.ErrJobExists):
		return http.StatusConflict
	case errors.Is(err, scheduler.ErrInvalidSchedule):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
