// Package domain contains the core domain models for the content engine.
package domain

import (
	"time"
)

// PipelineType identifies which pipeline variant a run executes.
type PipelineType string

const (
	// PipelineFull scrapes all news sources, deduplicates, enriches and delivers.
	PipelineFull PipelineType = "full"
	// PipelineNewsOnly is the full pipeline restricted to news sources.
	PipelineNewsOnly PipelineType = "news_only"
	// PipelineMarketOnly scrapes market quotes and delivers them directly.
	PipelineMarketOnly PipelineType = "market_only"
)

// validPipelineTypes maps every recognised PipelineType to true for O(1) lookup.
var validPipelineTypes = map[PipelineType]bool{
	PipelineFull:       true,
	PipelineNewsOnly:   true,
	PipelineMarketOnly: true,
}

// IsValid reports whether t is a recognised pipeline type.
func (t PipelineType) IsValid() bool {
	return validPipelineTypes[t]
}

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	// RunPending is the state before the first stage starts.
	RunPending RunStatus = "pending"
	// RunRunning is the state while stages are executing.
	RunRunning RunStatus = "running"
	// RunSuccess means every stage completed without item-level errors.
	RunSuccess RunStatus = "success"
	// RunPartial means every stage completed but at least one stage
	// recorded item-level errors.
	RunPartial RunStatus = "partial"
	// RunFailed means a stage failed outright and the run was aborted.
	RunFailed RunStatus = "failed"
)

// Terminal reports whether the status is a final state.
func (s RunStatus) Terminal() bool {
	return s == RunSuccess || s == RunPartial || s == RunFailed
}

// TriggerOrigin records what caused a run to start.
type TriggerOrigin string

const (
	// TriggerScheduler marks runs started by the cron scheduler.
	TriggerScheduler TriggerOrigin = "scheduler"
	// TriggerManual marks runs started through the trigger API or CLI.
	TriggerManual TriggerOrigin = "manual"
	// TriggerWebhook marks runs started by an inbound webhook.
	TriggerWebhook TriggerOrigin = "webhook"
)

// Stage names one of the sequential phases of a pipeline run.
type Stage string

const (
	// StageScraping fetches raw items from the configured sources.
	StageScraping Stage = "scraping"
	// StageDeduplication filters out previously seen items.
	StageDeduplication Stage = "deduplication"
	// StageAIProcessing enriches each item with derived metadata.
	StageAIProcessing Stage = "ai_processing"
	// StageDelivery pushes the enriched batch downstream.
	StageDelivery Stage = "delivery"
)

// StageStatus is the completion state of a single stage.
type StageStatus string

const (
	// StageRunning is the state while the stage executes.
	StageRunning StageStatus = "running"
	// StageSuccess means the stage completed without item errors.
	StageSuccess StageStatus = "success"
	// StageError means the stage completed with one or more item errors,
	// or failed outright.
	StageError StageStatus = "error"
)

// StageResult records the outcome of one stage within a run.
// It is owned exclusively by its parent Run.
type StageResult struct {
	Stage      Stage       `json:"stage"`
	Status     StageStatus `json:"status"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at,omitempty"`
	ItemsIn    int         `json:"items_in"`
	ItemsOut   int         `json:"items_out"`
	Errors     []string    `json:"errors,omitempty"`
}

// Run is a single pipeline execution record.
type Run struct {
	ID           string        `json:"run_id"`
	PipelineType PipelineType  `json:"pipeline_type"`
	Status       RunStatus     `json:"status"`
	TriggeredBy  TriggerOrigin `json:"triggered_by"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at,omitempty"`
	Duration     time.Duration `json:"duration_ns"`
	Scraped      int           `json:"items_scraped"`
	Deduplicated int           `json:"items_deduplicated"`
	Processed    int           `json:"items_processed"`
	Delivered    int           `json:"items_delivered"`
	Stages       []StageResult `json:"stages"`
	Errors       []string      `json:"errors,omitempty"`
}

// Close moves the run to a terminal status and stamps the finish time.
// The first call wins; a run is immutable once finished.
func (r *Run) Close(status RunStatus, now time.Time) {
	if !r.FinishedAt.IsZero() {
		return
	}
	r.Status = status
	r.FinishedAt = now
	r.Duration = now.Sub(r.StartedAt)
}

// Finished reports whether the run has reached a terminal state.
func (r *Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// StageErrorCount returns the total number of item-level errors across stages.
func (r *Run) StageErrorCount() int {
	count := 0
	for i := range r.Stages {
		count += len(r.Stages[i].Errors)
	}
	return count
}

// RunSummary is the lightweight run representation for listing endpoints.
type RunSummary struct {
	ID           string        `json:"run_id"`
	PipelineType PipelineType  `json:"pipeline_type"`
	Status       RunStatus     `json:"status"`
	TriggeredBy  TriggerOrigin `json:"triggered_by"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at,omitempty"`
	DurationS    float64       `json:"duration_s"`
	Scraped      int           `json:"items_scraped"`
	Processed    int           `json:"items_processed"`
	Delivered    int           `json:"items_delivered"`
	ErrorCount   int           `json:"errors_count"`
}

// Summary returns the listing representation of the run.
func (r *Run) Summary() RunSummary {
	return RunSummary{
		ID:           r.ID,
		PipelineType: r.PipelineType,
		Status:       r.Status,
		TriggeredBy:  r.TriggeredBy,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		DurationS:    r.Duration.Seconds(),
		Scraped:      r.Scraped,
		Processed:    r.Processed,
		Delivered:    r.Delivered,
		ErrorCount:   len(r.Errors) + r.StageErrorCount(),
	}
}
