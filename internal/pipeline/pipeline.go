// Package pipeline orchestrates the scrape, deduplicate, enrich, and
// deliver stages and keeps a bounded in-memory history of runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/content-engine/internal/dedup"
	"github.com/jonesrussell/content-engine/internal/delivery"
	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/enrich"
	"github.com/jonesrussell/content-engine/internal/events"
	"github.com/jonesrussell/content-engine/internal/logger"
	"github.com/jonesrussell/content-engine/internal/metrics"
)

// Source is a news adapter the scraping stage fans out over.
type Source interface {
	Name() string
	Fetch(ctx context.Context, limit int) ([]domain.RawItem, error)
}

// MarketSource is a quote adapter.
type MarketSource interface {
	Name() string
	FetchQuotes(ctx context.Context, limit int) ([]domain.MarketQuote, error)
}

// Orchestrator errors.
var (
	ErrRunNotFound         = errors.New("run not found")
	ErrInvalidPipelineType = errors.New("invalid pipeline type")
)

// History and batch defaults.
const (
	DefaultMaxItems     = 20
	DefaultHistoryLimit = 200
	DefaultHistoryTrim  = 100
	defaultRecentLimit  = 20
)

// Config wires the orchestrator's collaborators.
type Config struct {
	// Sources are the news adapters fanned out during scraping.
	Sources []Source
	// Market is the quote adapter, used by full and market_only runs.
	Market MarketSource
	// Dedup filters previously seen articles.
	Dedup *dedup.Deduplicator
	// Enricher derives article metadata.
	Enricher enrich.Enricher
	// Deliverer ships output downstream.
	Deliverer delivery.Deliverer
	// Announcer publishes run completions. Optional.
	Announcer events.Announcer
	// Metrics records run instrumentation. Optional.
	Metrics *metrics.Metrics
	// MaxItems caps articles per run when the trigger does not.
	MaxItems int
	// HistoryLimit is the run count that triggers a history trim.
	HistoryLimit int
	// HistoryTrim is the run count kept after a trim.
	HistoryTrim int
}

// Orchestrator executes pipeline runs. Runs are serialized: a second
// trigger blocks until the active run finishes.
type Orchestrator struct {
	sources   []Source
	market    MarketSource
	dedup     *dedup.Deduplicator
	enricher  enrich.Enricher
	deliverer delivery.Deliverer
	announcer events.Announcer
	metrics   *metrics.Metrics
	logger    logger.Logger

	maxItems     int
	historyLimit int
	historyTrim  int

	runMu sync.Mutex

	mu      sync.RWMutex
	history []*domain.Run
	index   map[string]*domain.Run
}

// New creates an orchestrator.
func New(cfg *Config, log logger.Logger) *Orchestrator {
	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}

	historyTrim := cfg.HistoryTrim
	if historyTrim <= 0 || historyTrim > historyLimit {
		historyTrim = DefaultHistoryTrim
	}

	return &Orchestrator{
		sources:      cfg.Sources,
		market:       cfg.Market,
		dedup:        cfg.Dedup,
		enricher:     cfg.Enricher,
		deliverer:    cfg.Deliverer,
		announcer:    cfg.Announcer,
		metrics:      cfg.Metrics,
		logger:       log,
		maxItems:     maxItems,
		historyLimit: historyLimit,
		historyTrim:  historyTrim,
		index:        make(map[string]*domain.Run),
	}
}

// Run executes a pipeline synchronously and returns the finished run.
func (o *Orchestrator) Run(ctx context.Context, pipelineType domain.PipelineType, maxItems int, triggeredBy domain.TriggerOrigin) (*domain.Run, error) {
	run, newErr := o.newRun(pipelineType, triggeredBy)
	if newErr != nil {
		return nil, newErr
	}

	o.execute(ctx, run, maxItems)

	return o.Get(run.ID)
}

// Trigger starts a pipeline in the background and returns its run ID
// immediately.
func (o *Orchestrator) Trigger(ctx context.Context, pipelineType domain.PipelineType, maxItems int, triggeredBy domain.TriggerOrigin) (string, error) {
	run, newErr := o.newRun(pipelineType, triggeredBy)
	if newErr != nil {
		return "", newErr
	}

	go o.execute(context.WithoutCancel(ctx), run, maxItems)

	return run.ID, nil
}

// RunFull executes the full pipeline: news plus market quotes.
func (o *Orchestrator) RunFull(ctx context.Context, maxItems int, triggeredBy domain.TriggerOrigin) (*domain.Run, error) {
	return o.Run(ctx, domain.PipelineFull, maxItems, triggeredBy)
}

// RunNewsOnly executes the pipeline without market quotes.
func (o *Orchestrator) RunNewsOnly(ctx context.Context, maxItems int, triggeredBy domain.TriggerOrigin) (*domain.Run, error) {
	return o.Run(ctx, domain.PipelineNewsOnly, maxItems, triggeredBy)
}

// RunMarketOnly scrapes and delivers market quotes only.
func (o *Orchestrator) RunMarketOnly(ctx context.Context, maxItems int, triggeredBy domain.TriggerOrigin) (*domain.Run, error) {
	return o.Run(ctx, domain.PipelineMarketOnly, maxItems, triggeredBy)
}

// Recent returns run summaries, newest first.
func (o *Orchestrator) Recent(limit int) []domain.RunSummary {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	n := len(o.history)
	if limit > n {
		limit = n
	}

	summaries := make([]domain.RunSummary, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		summaries = append(summaries, o.history[i].Summary())
	}

	return summaries
}

// Get returns a copy of the run with the given ID.
func (o *Orchestrator) Get(id string) (*domain.Run, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	run, ok := o.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	return copyRun(run), nil
}

// Close flushes the deduplication cache.
func (o *Orchestrator) Close() error {
	if o.dedup != nil {
		o.dedup.SaveCache()
	}
	return nil
}

// newRun validates the pipeline type and registers a pending run.
func (o *Orchestrator) newRun(pipelineType domain.PipelineType, triggeredBy domain.TriggerOrigin) (*domain.Run, error) {
	if !pipelineType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPipelineType, pipelineType)
	}

	run := &domain.Run{
		ID:           uuid.NewString(),
		PipelineType: pipelineType,
		Status:       domain.RunPending,
		TriggeredBy:  triggeredBy,
		StartedAt:    time.Now().UTC(),
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.history = append(o.history, run)
	o.index[run.ID] = run

	if len(o.history) > o.historyLimit {
		dropped := o.history[:len(o.history)-o.historyTrim]
		for _, old := range dropped {
			delete(o.index, old.ID)
		}
		kept := make([]*domain.Run, o.historyTrim)
		copy(kept, o.history[len(o.history)-o.historyTrim:])
		o.history = kept
	}

	return run, nil
}

// execute runs the stages for one run. Runs are serialized on runMu.
func (o *Orchestrator) execute(ctx context.Context, run *domain.Run, maxItems int) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	if maxItems <= 0 {
		maxItems = o.maxItems
	}

	o.updateRun(run, func(r *domain.Run) {
		r.Status = domain.RunRunning
	})

	o.logger.Info("pipeline run started",
		logger.String("run_id", run.ID),
		logger.String("type", string(run.PipelineType)),
		logger.String("triggered_by", string(run.TriggeredBy)),
	)

	defer func() {
		if rec := recover(); rec != nil {
			o.updateRun(run, func(r *domain.Run) {
				r.Errors = append(r.Errors, fmt.Sprintf("panic: %v", rec))
				r.Close(domain.RunFailed, time.Now().UTC())
			})
			o.logger.Error("pipeline run panicked",
				logger.String("run_id", run.ID),
				logger.Any("panic", rec),
			)
		}
		o.finishRun(ctx, run)
	}()

	includeNews := run.PipelineType != domain.PipelineMarketOnly
	includeMarket := run.PipelineType == domain.PipelineFull || run.PipelineType == domain.PipelineMarketOnly

	items, quotes := o.runScraping(ctx, run, maxItems, includeNews, includeMarket)

	var articles []*domain.EnrichedArticle
	if includeNews {
		items = o.runDeduplication(run, items)
		articles = o.runEnrichment(ctx, run, items)
	}

	o.runDelivery(ctx, run, articles, quotes)

	if includeNews && o.dedup != nil {
		o.dedup.SaveCache()
	}
}

// finishRun closes the run with the status the stage outcomes imply and
// reports it to metrics and the announcer.
func (o *Orchestrator) finishRun(ctx context.Context, run *domain.Run) {
	o.updateRun(run, func(r *domain.Run) {
		if r.Finished() {
			return
		}
		status := domain.RunSuccess
		if len(r.Errors) > 0 || r.StageErrorCount() > 0 {
			status = domain.RunPartial
		}
		r.Close(status, time.Now().UTC())
	})

	finished, getErr := o.Get(run.ID)
	if getErr != nil {
		return
	}

	o.metrics.ObserveRun(finished)
	if o.announcer != nil {
		o.announcer.AnnounceRunCompleted(ctx, finished)
	}

	o.logger.Info("pipeline run finished",
		logger.String("run_id", finished.ID),
		logger.String("status", string(finished.Status)),
		logger.Duration("duration", finished.Duration),
		logger.Int("delivered", finished.Delivered),
	)
}

// updateRun mutates a run under the history lock.
func (o *Orchestrator) updateRun(run *domain.Run, mutate func(*domain.Run)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	mutate(run)
}

// copyRun deep-copies a run so callers never share mutable state.
func copyRun(run *domain.Run) *domain.Run {
	cp := *run

	cp.Stages = make([]domain.StageResult, len(run.Stages))
	copy(cp.Stages, run.Stages)
	for i := range cp.Stages {
		if len(run.Stages[i].Errors) > 0 {
			cp.Stages[i].Errors = append([]string(nil), run.Stages[i].Errors...)
		}
	}

	if len(run.Errors) > 0 {
		cp.Errors = append([]string(nil), run.Errors...)
	}

	return &cp
}
