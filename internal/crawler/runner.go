package crawler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/samvad-hq/gnews-scraper/internal/domain"
	"github.com/samvad-hq/gnews-scraper/internal/logger"
	"github.com/samvad-hq/gnews-scraper/pkg/feed"
	"github.com/samvad-hq/gnews-scraper/pkg/httpclient"
)

// Config carries the knobs governing one run.
type Config struct {
	MaxItems               int
	MaxPagesPerSeed        int
	MaxConsecutiveFailures int
	Concurrency            int
	StrictDates            bool
	MaxTokenLen            int
	Window                 feed.Window
	When                   string
}

func sanitizeConfig(cfg Config) Config {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 50
	}
	if cfg.MaxPagesPerSeed <= 0 {
		cfg.MaxPagesPerSeed = 10
	}
	if cfg.MaxConsecutiveFailures <= 0 {
		cfg.MaxConsecutiveFailures = 3
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return cfg
}

// capCounter enforces the global item cap shared across all seed walks.
type capCounter struct {
	limit int64
	used  atomic.Int64
}

// tryAcquire reserves one output slot. Reservation is a single atomic
// add-and-check, so concurrent walkers cannot overshoot the cap.
func (c *capCounter) tryAcquire() bool {
	if c.limit <= 0 {
		return true
	}
	if n := c.used.Add(1); n > c.limit {
		c.used.Add(-1)
		return false
	}
	return true
}

func (c *capCounter) exhausted() bool {
	return c.limit > 0 && c.used.Load() >= c.limit
}

// DefaultPageSource returns a tuned HTTP client for listing fetches.
func DefaultPageSource() PageSource { return httpclient.NewRestyClient(15 * time.Second) }

// Runner drives page walks across the ordered seed list and merges their
// accepted records into one terminal RunResult.
type Runner struct {
	client PageSource
	cache  feed.DecodeCache
	log    logger.Logger
	cfg    Config
}

// NewRunner wires a runner with the page source and optional decode cache.
func NewRunner(client PageSource, cache feed.DecodeCache, log logger.Logger, cfg Config) *Runner {
	if client == nil {
		client = DefaultPageSource()
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Runner{
		client: client,
		cache:  cache,
		log:    log,
		cfg:    sanitizeConfig(cfg),
	}
}

// Run walks every seed query and returns the merged terminal result. Seeds
// run concurrently up to Config.Concurrency over a shared seen-set and item
// cap; accepted records are merged in seed order. A failed seed never fails
// the whole run unless every seed fails.
//
// Cancellation is cooperative: once ctx is cancelled no new page fetches
// are issued and results of in-flight fetches are discarded; records
// accepted before cancellation are returned.
func (r *Runner) Run(ctx context.Context, seeds []feed.SeedQuery) (*domain.RunResult, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("runner is not initialized")
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seed queries configured")
	}

	w := &walker{
		client:  r.client,
		norm:    feed.NewNormalizer(r.cfg.MaxTokenLen, r.cache),
		dedup:   NewDedup(),
		counter: &capCounter{limit: int64(r.cfg.MaxItems)},
		log:     r.log,
		cfg:     r.cfg,
	}

	outcomes := make([]seedOutcome, len(seeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for i := range seeds {
		g.Go(func() error {
			outcomes[i] = w.walk(gctx, seeds[i])
			return nil
		})
	}
	// Walks report failure through their outcome, never through the group.
	_ = g.Wait()

	result := &domain.RunResult{
		RunID:  uuid.NewString(),
		Status: domain.StatusSuccess,
	}
	for i := range outcomes {
		result.Items = append(result.Items, outcomes[i].records...)
		result.SkippedCount += outcomes[i].skipped
		result.PagesFetched += outcomes[i].pages
		if outcomes[i].err != nil {
			result.FailedSeeds = append(result.FailedSeeds, domain.SeedFailure{
				SeedID: seeds[i].ID,
				Reason: outcomes[i].err.Error(),
			})
		}
	}
	result.ItemCount = len(result.Items)

	switch {
	case len(result.FailedSeeds) == len(seeds):
		result.Status = domain.StatusFailed
	case len(result.FailedSeeds) > 0:
		result.Status = domain.StatusPartialSuccess
	}

	r.log.InfoObj("run completed", "run_meta", map[string]any{
		"run_id":        result.RunID,
		"seeds_count":   len(seeds),
		"item_count":    result.ItemCount,
		"skipped_count": result.SkippedCount,
		"pages_fetched": result.PagesFetched,
		"failed_seeds":  len(result.FailedSeeds),
		"status":        string(result.Status),
	})

	return result, nil
}
