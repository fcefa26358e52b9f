package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/logger"
	"github.com/jonesrussell/content-engine/internal/scheduler"
)

type fakeRunner struct {
	mu      sync.Mutex
	calls   []domain.PipelineType
	status  domain.RunStatus
	err     error
	block   chan struct{}
}

func (f *fakeRunner) Run(_ context.Context, pipelineType domain.PipelineType, _ int, _ domain.TriggerOrigin) (*domain.Run, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pipelineType)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}

	status := f.status
	if status == "" {
		status = domain.RunSuccess
	}
	return &domain.Run{ID: "run-1", PipelineType: pipelineType, Status: status}, nil
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newManager(t *testing.T, runner scheduler.Runner, cfg *scheduler.Config) *scheduler.Manager {
	t.Helper()

	if cfg == nil {
		cfg = &scheduler.Config{}
	}
	m, newErr := scheduler.New(runner, cfg, logger.NewNop())
	require.NoError(t, newErr)
	return m
}

func TestNew_RegistersDefaultJobs(t *testing.T) {
	t.Parallel()

	m := newManager(t, &fakeRunner{}, &scheduler.Config{
		NewsIntervalMinutes:   45,
		MarketIntervalMinutes: 5,
	})

	jobs := m.Jobs()
	require.Len(t, jobs, 2)

	byID := make(map[string]domain.ScheduledJob, len(jobs))
	for _, job := range jobs {
		byID[job.ID] = job
	}

	news := byID[scheduler.NewsJobID]
	assert.Equal(t, domain.PipelineNewsOnly, news.PipelineType)
	assert.Equal(t, 45, news.IntervalMinutes)
	assert.True(t, news.Enabled)

	market := byID[scheduler.MarketJobID]
	assert.Equal(t, domain.PipelineMarketOnly, market.PipelineType)
	assert.Equal(t, 5, market.IntervalMinutes)
}

func TestManager_AddJob(t *testing.T) {
	t.Parallel()

	m := newManager(t, &fakeRunner{}, &scheduler.Config{DisableDefaults: true})

	added, addErr := m.AddJob(domain.ScheduledJob{
		Name:            "hourly full",
		PipelineType:    domain.PipelineFull,
		ScheduleType:    domain.ScheduleCron,
		CronExpression:  "0 * * * *",
	})
	require.NoError(t, addErr)
	assert.NotEmpty(t, added.ID)
	assert.True(t, added.Enabled)
	assert.False(t, added.CreatedAt.IsZero())

	require.Len(t, m.Jobs(), 1)
}

func TestManager_AddJobInfersScheduleType(t *testing.T) {
	t.Parallel()

	m := newManager(t, &fakeRunner{}, &scheduler.Config{DisableDefaults: true})

	interval, intervalErr := m.AddJob(domain.ScheduledJob{
		ID:              "interval_job",
		PipelineType:    domain.PipelineNewsOnly,
		IntervalMinutes: 15,
	})
	require.NoError(t, intervalErr)
	assert.Equal(t, "interval_job", interval.ID)
	assert.Equal(t, domain.ScheduleInterval, interval.ScheduleType)

	cronJob, cronErr := m.AddJob(domain.ScheduledJob{
		ID:             "cron_job",
		PipelineType:   domain.PipelineFull,
		CronExpression: "30 6 * * *",
	})
	require.NoError(t, cronErr)
	assert.Equal(t, domain.ScheduleCron, cronJob.ScheduleType)
}

func TestManager_AddJobValidation(t *testing.T) {
	t.Parallel()

	m := newManager(t, &fakeRunner{}, &scheduler.Config{DisableDefaults: true})

	tests := []struct {
		name string
		job  domain.ScheduledJob
	}{
		{
			name: "bad pipeline type",
			job: domain.ScheduledJob{
				PipelineType: "bogus",
				ScheduleType: domain.ScheduleInterval, IntervalMinutes: 5,
			},
		},
		{
			name: "zero interval",
			job: domain.ScheduledJob{
				PipelineType: domain.PipelineFull,
				ScheduleType: domain.ScheduleInterval,
			},
		},
		{
			name: "bad cron expression",
			job: domain.ScheduledJob{
				PipelineType: domain.PipelineFull,
				ScheduleType: domain.ScheduleCron, CronExpression: "not a cron",
			},
		},
		{
			name: "unknown schedule type",
			job: domain.ScheduledJob{
				PipelineType: domain.PipelineFull,
				ScheduleType: "sometimes",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, addErr := m.AddJob(tt.job)
			assert.ErrorIs(t, addErr, scheduler.ErrInvalidSchedule)
		})
	}
}

func TestManager_AddJobDuplicateID(t *testing.T) {
	t.Parallel()

	m := newManager(t, &fakeRunner{}, nil)

	_, addErr := m.AddJob(domain.ScheduledJob{
		ID:              scheduler.NewsJobID,
		PipelineType:    domain.PipelineNewsOnly,
		ScheduleType:    domain.ScheduleInterval,
		IntervalMinutes: 10,
	})
	assert.ErrorIs(t, addErr, scheduler.ErrJobExists)
}

func TestManager_PauseResumePreservesCadence(t *testing.T) {
	t.Parallel()

	m := newManager(t, &fakeRunner{}, &scheduler.Config{NewsIntervalMinutes: 20})

	require.NoError(t, m.PauseJob(scheduler.NewsJobID))

	jobs := m.Jobs()
	var news domain.ScheduledJob
	for _, job := range jobs {
		if job.ID == scheduler.NewsJobID {
			news = job
		}
	}
	assert.False(t, news.Enabled)
	assert.Equal(t, 20, news.IntervalMinutes)
	assert.Nil(t, news.NextRunAt)

	require.NoError(t, m.ResumeJob(scheduler.NewsJobID))

	for _, job := range m.Jobs() {
		if job.ID == scheduler.NewsJobID {
			assert.True(t, job.Enabled)
			assert.Equal(t, 20, job.IntervalMinutes)
		}
	}

	// Resuming an enabled job is a no-op.
	require.NoError(t, m.ResumeJob(scheduler.NewsJobID))
}

func TestManager_RemoveJob(t *testing.T) {
	t.Parallel()

	m := newManager(t, &fakeRunner{}, nil)

	require.NoError(t, m.RemoveJob(scheduler.MarketJobID))
	assert.Len(t, m.Jobs(), 1)

	assert.ErrorIs(t, m.RemoveJob(scheduler.MarketJobID), scheduler.ErrJobNotFound)
	assert.ErrorIs(t, m.PauseJob("nope"), scheduler.ErrJobNotFound)
	assert.ErrorIs(t, m.ResumeJob("nope"), scheduler.ErrJobNotFound)
	assert.ErrorIs(t, m.RunNow("nope"), scheduler.ErrJobNotFound)
}

func TestManager_RunNowCountsOutcomes(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	m := newManager(t, runner, nil)

	require.NoError(t, m.RunNow(scheduler.NewsJobID))

	status := m.Status()
	assert.Equal(t, int64(1), status.TotalRuns)
	assert.Equal(t, int64(1), status.SuccessfulRuns)
	assert.Zero(t, status.FailedRuns)
	assert.Equal(t, []domain.PipelineType{domain.PipelineNewsOnly}, runner.calls)

	for _, job := range m.Jobs() {
		if job.ID == scheduler.NewsJobID {
			assert.NotNil(t, job.LastRunAt)
		}
	}
}

func TestManager_RunNowCountsFailures(t *testing.T) {
	t.Parallel()

	runErr := newManager(t, &fakeRunner{err: errors.New("boom")}, nil)
	require.NoError(t, runErr.RunNow(scheduler.NewsJobID))
	assert.Equal(t, int64(1), runErr.Status().FailedRuns)

	runFailed := newManager(t, &fakeRunner{status: domain.RunFailed}, nil)
	require.NoError(t, runFailed.RunNow(scheduler.NewsJobID))
	assert.Equal(t, int64(1), runFailed.Status().FailedRuns)
	assert.Zero(t, runFailed.Status().SuccessfulRuns)
}

func TestManager_OverlappingTriggerIsSkipped(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{block: make(chan struct{})}
	m := newManager(t, runner, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = m.RunNow(scheduler.NewsJobID)
	}()

	// Wait for the first trigger to enter the runner, then fire a
	// second; it must be skipped while the first is in flight.
	require.Eventually(t, func() bool {
		return runner.callCount() == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, m.RunNow(scheduler.NewsJobID))

	close(runner.block)
	wg.Wait()

	assert.Equal(t, 1, runner.callCount())
	assert.Equal(t, int64(1), m.Status().TotalRuns)
}

func TestManager_StartStop(t *testing.T) {
	t.Parallel()

	m := newManager(t, &fakeRunner{}, nil)

	assert.False(t, m.Status().Running)

	m.Start()
	status := m.Status()
	assert.True(t, status.Running)
	assert.GreaterOrEqual(t, status.UptimeSeconds, 0.0)

	for _, job := range status.Jobs {
		assert.NotNil(t, job.NextRunAt, "job %s should have a next fire time", job.ID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Stop(ctx))
	assert.False(t, m.Status().Running)
}
