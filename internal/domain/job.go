package domain

import "time"

// ScheduleType distinguishes interval jobs from cron-expression jobs.
type ScheduleType string

const (
	// ScheduleInterval runs a job every N minutes.
	ScheduleInterval ScheduleType = "interval"
	// ScheduleCron runs a job on a five-field cron expression.
	ScheduleCron ScheduleType = "cron"
)

// ScheduledJob is a named job definition bound to a pipeline type and a
// cadence.
type ScheduledJob struct {
	ID              string       `json:"job_id"`
	Name            string       `json:"name"`
	PipelineType    PipelineType `json:"pipeline_type"`
	ScheduleType    ScheduleType `json:"schedule_type"`
	IntervalMinutes int          `json:"interval_minutes,omitempty"`
	CronExpression  string       `json:"cron_expression,omitempty"`
	Enabled         bool         `json:"enabled"`
	LastRunAt       *time.Time   `json:"last_run_at,omitempty"`
	NextRunAt       *time.Time   `json:"next_run_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// SchedulerStatus is a snapshot of the scheduler's state and counters.
type SchedulerStatus struct {
	Running        bool           `json:"running"`
	UptimeSeconds  float64        `json:"uptime_s"`
	TotalRuns      int64          `json:"total_runs"`
	SuccessfulRuns int64          `json:"successful_runs"`
	FailedRuns     int64          `json:"failed_runs"`
	Jobs           []ScheduledJob `json:"jobs"`
}
