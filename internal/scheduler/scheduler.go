// Package scheduler runs pipelines on a cadence. It wraps a cron
// runtime with named jobs that can be added, paused, resumed, and
// removed at runtime.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/logger"
)

// Scheduler errors.
var (
	ErrJobNotFound     = errors.New("scheduled job not found")
	ErrJobExists       = errors.New("scheduled job already exists")
	ErrInvalidSchedule = errors.New("invalid job schedule")
)

// Default job definitions and cadences.
const (
	NewsJobID   = "news_pipeline"
	MarketJobID = "market_pipeline"

	defaultNewsIntervalMinutes   = 30
	defaultMarketIntervalMinutes = 15

	jobIDPrefix  = "job_"
	jobIDHashLen = 8
)

// Runner starts pipeline runs. The orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, pipelineType domain.PipelineType, maxItems int, triggeredBy domain.TriggerOrigin) (*domain.Run, error)
}

// Config configures the scheduler.
type Config struct {
	// NewsIntervalMinutes is the default news job cadence.
	NewsIntervalMinutes int
	// MarketIntervalMinutes is the default market job cadence.
	MarketIntervalMinutes int
	// MaxArticles caps articles per scheduled run.
	MaxArticles int
	// DisableDefaults skips registering the built-in jobs.
	DisableDefaults bool
}

// jobState pairs a job definition with its cron entry. A paused job
// has no entry.
type jobState struct {
	job      domain.ScheduledJob
	entryID  cron.EntryID
	inFlight atomic.Bool
}

// Manager is the scheduler. An overlapping trigger for a job whose
// previous run is still active is skipped, not queued.
type Manager struct {
	runner      Runner
	logger      logger.Logger
	cron        *cron.Cron
	parser      cron.Parser
	maxArticles int

	mu        sync.RWMutex
	jobs      map[string]*jobState
	running   bool
	startedAt time.Time

	totalRuns      atomic.Int64
	successfulRuns atomic.Int64
	failedRuns     atomic.Int64
}

// New creates a scheduler with the default news and market jobs unless
// the config disables them.
func New(runner Runner, cfg *Config, log logger.Logger) (*Manager, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	m := &Manager{
		runner:      runner,
		logger:      log,
		cron:        cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		parser:      parser,
		maxArticles: cfg.MaxArticles,
		jobs:        make(map[string]*jobState),
	}

	if cfg.DisableDefaults {
		return m, nil
	}

	newsInterval := cfg.NewsIntervalMinutes
	if newsInterval <= 0 {
		newsInterval = defaultNewsIntervalMinutes
	}
	marketInterval := cfg.MarketIntervalMinutes
	if marketInterval <= 0 {
		marketInterval = defaultMarketIntervalMinutes
	}

	defaults := []domain.ScheduledJob{
		{
			ID:              NewsJobID,
			Name:            "News pipeline",
			PipelineType:    domain.PipelineNewsOnly,
			ScheduleType:    domain.ScheduleInterval,
			IntervalMinutes: newsInterval,
			Enabled:         true,
		},
		{
			ID:              MarketJobID,
			Name:            "Market pipeline",
			PipelineType:    domain.PipelineMarketOnly,
			ScheduleType:    domain.ScheduleInterval,
			IntervalMinutes: marketInterval,
			Enabled:         true,
		},
	}

	for _, job := range defaults {
		if _, addErr := m.AddJob(job); addErr != nil {
			return nil, addErr
		}
	}

	return m, nil
}

// Start begins dispatching jobs.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	m.cron.Start()
	m.running = true
	m.startedAt = time.Now().UTC()

	m.logger.Info("scheduler started", logger.Int("jobs", len(m.jobs)))
}

// Stop halts dispatch and waits for active jobs to finish or the
// context to expire.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.mu.Unlock()

	done := m.cron.Stop().Done()

	select {
	case <-done:
		m.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// AddJob registers and schedules a job. A missing ID is generated; a
// missing schedule is rejected.
func (m *Manager) AddJob(job domain.ScheduledJob) (domain.ScheduledJob, error) {
	if !job.PipelineType.IsValid() {
		return domain.ScheduledJob{}, fmt.Errorf("%w: pipeline type %q", ErrInvalidSchedule, job.PipelineType)
	}

	spec, specErr := m.scheduleSpec(&job)
	if specErr != nil {
		return domain.ScheduledJob{}, specErr
	}

	if job.ID == "" {
		job.ID = jobIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:jobIDHashLen]
	}
	if job.Name == "" {
		job.Name = job.ID
	}
	job.CreatedAt = time.Now().UTC()
	job.Enabled = true

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[job.ID]; exists {
		return domain.ScheduledJob{}, fmt.Errorf("%w: %s", ErrJobExists, job.ID)
	}

	state := &jobState{job: job}
	entryID, addErr := m.cron.AddFunc(spec, func() { m.runJob(job.ID) })
	if addErr != nil {
		return domain.ScheduledJob{}, fmt.Errorf("schedule job %s: %w", job.ID, addErr)
	}
	state.entryID = entryID
	m.jobs[job.ID] = state

	m.logger.Info("job scheduled",
		logger.String("job_id", job.ID),
		logger.String("pipeline_type", string(job.PipelineType)),
		logger.String("spec", spec),
	)

	return m.snapshotLocked(state), nil
}

// RemoveJob unschedules and forgets a job.
func (m *Manager) RemoveJob(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	if state.entryID != 0 {
		m.cron.Remove(state.entryID)
	}
	delete(m.jobs, id)

	m.logger.Info("job removed", logger.String("job_id", id))
	return nil
}

// PauseJob keeps the job definition but stops dispatching it.
func (m *Manager) PauseJob(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	if state.entryID != 0 {
		m.cron.Remove(state.entryID)
		state.entryID = 0
	}
	state.job.Enabled = false

	m.logger.Info("job paused", logger.String("job_id", id))
	return nil
}

// ResumeJob reschedules a paused job on its original cadence.
func (m *Manager) ResumeJob(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if state.job.Enabled {
		return nil
	}

	spec, specErr := m.scheduleSpec(&state.job)
	if specErr != nil {
		return specErr
	}

	jobID := id
	entryID, addErr := m.cron.AddFunc(spec, func() { m.runJob(jobID) })
	if addErr != nil {
		return fmt.Errorf("resume job %s: %w", id, addErr)
	}
	state.entryID = entryID
	state.job.Enabled = true

	m.logger.Info("job resumed", logger.String("job_id", id))
	return nil
}

// Jobs returns every job definition, sorted by ID.
func (m *Manager) Jobs() []domain.ScheduledJob {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]domain.ScheduledJob, 0, len(m.jobs))
	for _, state := range m.jobs {
		jobs = append(jobs, m.snapshotLocked(state))
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })

	return jobs
}

// Status reports the scheduler snapshot for the status endpoint.
func (m *Manager) Status() domain.SchedulerStatus {
	jobs := m.Jobs()

	m.mu.RLock()
	running := m.running
	startedAt := m.startedAt
	m.mu.RUnlock()

	uptime := 0.0
	if running {
		uptime = time.Since(startedAt).Seconds()
	}

	return domain.SchedulerStatus{
		Running:        running,
		UptimeSeconds:  uptime,
		TotalRuns:      m.totalRuns.Load(),
		SuccessfulRuns: m.successfulRuns.Load(),
		FailedRuns:     m.failedRuns.Load(),
		Jobs:           jobs,
	}
}

// RunNow triggers a job immediately, outside its cadence. The run is
// executed synchronously and counted like a scheduled one.
func (m *Manager) RunNow(id string) error {
	m.mu.RLock()
	_, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	m.runJob(id)
	return nil
}

// runJob executes one scheduled trigger. If the job's previous run is
// still in flight the trigger is skipped.
func (m *Manager) runJob(id string) {
	m.mu.RLock()
	state, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return
	}

	if !state.inFlight.CompareAndSwap(false, true) {
		m.logger.Warn("job trigger skipped, previous run still active",
			logger.String("job_id", id),
		)
		return
	}
	defer state.inFlight.Store(false)

	m.totalRuns.Add(1)

	now := time.Now().UTC()
	m.mu.Lock()
	state.job.LastRunAt = &now
	m.mu.Unlock()

	run, runErr := m.runner.Run(context.Background(), state.job.PipelineType, m.maxArticles, domain.TriggerScheduler)

	switch {
	case runErr != nil:
		m.failedRuns.Add(1)
		m.logger.Error("scheduled run failed",
			logger.String("job_id", id),
			logger.Error(runErr),
		)
	case run.Status == domain.RunFailed:
		m.failedRuns.Add(1)
		m.logger.Warn("scheduled run ended failed",
			logger.String("job_id", id),
			logger.String("run_id", run.ID),
		)
	default:
		m.successfulRuns.Add(1)
		m.logger.Info("scheduled run finished",
			logger.String("job_id", id),
			logger.String("run_id", run.ID),
			logger.String("status", string(run.Status)),
		)
	}
}

// scheduleSpec translates a job definition into a cron spec and
// validates it. A missing schedule type is inferred: a cron expression
// means cron, otherwise interval.
func (m *Manager) scheduleSpec(job *domain.ScheduledJob) (string, error) {
	if job.ScheduleType == "" {
		if job.CronExpression != "" {
			job.ScheduleType = domain.ScheduleCron
		} else {
			job.ScheduleType = domain.ScheduleInterval
		}
	}

	var spec string

	switch job.ScheduleType {
	case domain.ScheduleInterval:
		if job.IntervalMinutes <= 0 {
			return "", fmt.Errorf("%w: interval must be positive", ErrInvalidSchedule)
		}
		spec = fmt.Sprintf("@every %dm", job.IntervalMinutes)
	case domain.ScheduleCron:
		if job.CronExpression == "" {
			return "", fmt.Errorf("%w: cron expression required", ErrInvalidSchedule)
		}
		spec = job.CronExpression
	default:
		return "", fmt.Errorf("%w: unknown schedule type %q", ErrInvalidSchedule, job.ScheduleType)
	}

	if _, parseErr := m.parser.Parse(spec); parseErr != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSchedule, parseErr)
	}

	return spec, nil
}

// snapshotLocked copies the job definition with its next fire time.
// Callers hold m.mu.
func (m *Manager) snapshotLocked(state *jobState) domain.ScheduledJob {
	job := state.job

	if state.entryID != 0 && m.running {
		if next := m.cron.Entry(state.entryID).Next; !next.IsZero() {
			nextUTC := next.UTC()
			job.NextRunAt = &nextUTC
		}
	}

	return job
}
