package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/law-makers/harvest/pkg/models"
	"github.com/rs/zerolog/log"
)

// ScrapeBatch scrapes targets sequentially, in input order, pacing fetch
// starts through the shared pacer. One target's exhausted failure never
// stops the rest: callers inspect each Outcome individually.
//
// On cancellation no new target is started; outcomes completed so far are
// returned alongside the context error.
func (o *Orchestrator) ScrapeBatch(ctx context.Context, targets []models.ScrapeTarget, sourceType string) ([]models.Outcome, error) {
	if err := o.checkBatch(targets, sourceType); err != nil {
		return nil, err
	}

	outcomes := make([]models.Outcome, 0, len(targets))
	for _, target := range targets {
		if err := o.pacer.Wait(ctx); err != nil {
			log.Warn().Int("completed", len(outcomes)).Msg("Batch cancelled")
			return outcomes, err
		}
		outcome := o.ScrapeOne(ctx, target, sourceType)
		outcomes = append(outcomes, outcome)
		o.notifyProgress(outcome)
	}
	return outcomes, nil
}

// ScrapeAll scrapes targets with a bounded worker pool. Results keep
// input order: each worker writes into its target's slot. The pacer is
// shared, so the fetch rate is a property of the whole pool; retry sleeps
// stay local to one worker and never stall its siblings.
//
// On cancellation, in-flight attempts run to their timeout but no new
// target is started; unstarted targets carry the context error so the
// one-outcome-per-target shape is preserved.
func (o *Orchestrator) ScrapeAll(ctx context.Context, targets []models.ScrapeTarget, sourceType string) ([]models.Outcome, error) {
	if err := o.checkBatch(targets, sourceType); err != nil {
		return nil, err
	}

	outcomes := make([]models.Outcome, len(targets))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < o.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := o.pacer.Wait(ctx); err != nil {
					outcomes[idx] = models.Failure(targets[idx], fmt.Errorf("scrape cancelled: %w", err))
				} else {
					outcomes[idx] = o.ScrapeOne(ctx, targets[idx], sourceType)
				}
				o.notifyProgress(outcomes[idx])
			}
		}()
	}

	for idx := range targets {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// checkBatch fails fast on configuration errors, before any network
// call.
func (o *Orchestrator) checkBatch(targets []models.ScrapeTarget, sourceType string) error {
	if len(targets) == 0 {
		return fmt.Errorf("empty target list")
	}
	if _, err := o.registry.Get(sourceType); err != nil {
		return err
	}
	return nil
}
