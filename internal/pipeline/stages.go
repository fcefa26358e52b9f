package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/logger"
)

// beginStage appends a running stage record and returns its index.
func (o *Orchestrator) beginStage(run *domain.Run, stage domain.Stage) int {
	idx := 0
	o.updateRun(run, func(r *domain.Run) {
		r.Stages = append(r.Stages, domain.StageResult{
			Stage:     stage,
			Status:    domain.StageRunning,
			StartedAt: time.Now().UTC(),
		})
		idx = len(r.Stages) - 1
	})
	return idx
}

// endStage finalizes the stage record at idx. A stage with item errors
// ends in error status even though the run continues.
func (o *Orchestrator) endStage(run *domain.Run, idx, itemsIn, itemsOut int, stageErrs []string) {
	o.updateRun(run, func(r *domain.Run) {
		stage := &r.Stages[idx]
		stage.FinishedAt = time.Now().UTC()
		stage.ItemsIn = itemsIn
		stage.ItemsOut = itemsOut
		stage.Errors = stageErrs
		if len(stageErrs) > 0 {
			stage.Status = domain.StageError
		} else {
			stage.Status = domain.StageSuccess
		}
	})
}

// fetchOutcome is one adapter's contribution to the scraping stage.
type fetchOutcome struct {
	name   string
	items  []domain.RawItem
	quotes []domain.MarketQuote
	err    error
}

// runScraping fans out over the configured adapters concurrently. A
// failing adapter is recorded as a stage error and does not affect the
// others; the stage itself always completes.
func (o *Orchestrator) runScraping(ctx context.Context, run *domain.Run, maxItems int, includeNews, includeMarket bool) ([]domain.RawItem, []domain.MarketQuote) {
	idx := o.beginStage(run, domain.StageScraping)

	var wg sync.WaitGroup
	outcomes := make(chan fetchOutcome)

	if includeNews {
		for _, src := range o.sources {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() {
					if rec := recover(); rec != nil {
						outcomes <- fetchOutcome{name: src.Name(), err: fmt.Errorf("panic: %v", rec)}
					}
				}()
				items, fetchErr := src.Fetch(ctx, maxItems)
				outcomes <- fetchOutcome{name: src.Name(), items: items, err: fetchErr}
			}()
		}
	}

	if includeMarket && o.market != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					outcomes <- fetchOutcome{name: o.market.Name(), err: fmt.Errorf("panic: %v", rec)}
				}
			}()
			quotes, fetchErr := o.market.FetchQuotes(ctx, maxItems)
			outcomes <- fetchOutcome{name: o.market.Name(), quotes: quotes, err: fetchErr}
		}()
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var (
		items     []domain.RawItem
		quotes    []domain.MarketQuote
		stageErrs []string
	)

	for outcome := range outcomes {
		if outcome.err != nil {
			stageErrs = append(stageErrs, fmt.Sprintf("%s: %v", outcome.name, outcome.err))
			o.logger.Warn("source adapter failed",
				logger.String("adapter", outcome.name),
				logger.Error(outcome.err),
			)
			continue
		}
		items = append(items, outcome.items...)
		quotes = append(quotes, outcome.quotes...)
	}

	sort.Strings(stageErrs)

	// Newest first; items without a timestamp sort last.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	o.updateRun(run, func(r *domain.Run) {
		r.Scraped = len(items) + len(quotes)
	})
	o.endStage(run, idx, 0, len(items)+len(quotes), stageErrs)

	return items, quotes
}

// runDeduplication drops previously seen articles. The run records the
// number of duplicates dropped, so items_out plus the recorded count
// always equals items_in.
func (o *Orchestrator) runDeduplication(run *domain.Run, items []domain.RawItem) []domain.RawItem {
	idx := o.beginStage(run, domain.StageDeduplication)

	fresh := items
	if o.dedup != nil {
		fresh = o.dedup.Filter(items)
	}

	dropped := len(items) - len(fresh)
	o.updateRun(run, func(r *domain.Run) {
		r.Deduplicated = dropped
	})
	o.endStage(run, idx, len(items), len(fresh), nil)

	if dropped > 0 {
		o.logger.Info("duplicates dropped",
			logger.String("run_id", run.ID),
			logger.Int("dropped", dropped),
		)
	}

	return fresh
}

// runEnrichment enriches items sequentially. A failing item becomes a
// stage error; the rest of the batch proceeds.
func (o *Orchestrator) runEnrichment(ctx context.Context, run *domain.Run, items []domain.RawItem) []*domain.EnrichedArticle {
	idx := o.beginStage(run, domain.StageAIProcessing)

	articles := make([]*domain.EnrichedArticle, 0, len(items))
	var stageErrs []string

	for i := range items {
		article, enrichErr := o.enricher.Enrich(ctx, items[i])
		if enrichErr != nil {
			stageErrs = append(stageErrs, fmt.Sprintf("%s: %v", domain.TruncateTitle(items[i].Title), enrichErr))
			continue
		}
		articles = append(articles, article)
	}

	o.updateRun(run, func(r *domain.Run) {
		r.Processed = len(articles)
	})
	o.endStage(run, idx, len(items), len(articles), stageErrs)

	return articles
}

// runDelivery ships articles and quotes downstream. A transport-level
// failure fails the run; items rejected by the ingest endpoint become
// stage errors.
func (o *Orchestrator) runDelivery(ctx context.Context, run *domain.Run, articles []*domain.EnrichedArticle, quotes []domain.MarketQuote) {
	idx := o.beginStage(run, domain.StageDelivery)

	delivered := 0
	var stageErrs []string

	itemsIn := len(articles) + len(quotes)

	if len(articles) > 0 {
		result, deliverErr := o.deliverer.DeliverArticles(ctx, articles)
		if deliverErr != nil {
			o.failDelivery(run, idx, itemsIn, delivered, stageErrs, fmt.Sprintf("article delivery: %v", deliverErr))
			return
		}
		delivered += result.Inserted
		for _, id := range result.FailedIdentifiers {
			stageErrs = append(stageErrs, fmt.Sprintf("%s: rejected by ingest", id))
		}
	}

	if len(quotes) > 0 {
		result, deliverErr := o.deliverer.DeliverMarketData(ctx, quotes)
		if deliverErr != nil {
			o.failDelivery(run, idx, itemsIn, delivered, stageErrs, fmt.Sprintf("market delivery: %v", deliverErr))
			return
		}
		delivered += result.Inserted
		for _, id := range result.FailedIdentifiers {
			stageErrs = append(stageErrs, fmt.Sprintf("%s: rejected by ingest", id))
		}
	}

	o.updateRun(run, func(r *domain.Run) {
		r.Delivered = delivered
	})
	o.endStage(run, idx, itemsIn, delivered, stageErrs)
}

// failDelivery records an escaped delivery failure and closes the run
// as failed.
func (o *Orchestrator) failDelivery(run *domain.Run, idx, itemsIn, delivered int, stageErrs []string, msg string) {
	o.endStage(run, idx, itemsIn, delivered, append(stageErrs, msg))
	o.updateRun(run, func(r *domain.Run) {
		r.Delivered = delivered
		r.Errors = append(r.Errors, msg)
		r.Close(domain.RunFailed, time.Now().UTC())
	})
}
