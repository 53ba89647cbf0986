package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/gnews-scraper/internal/config"
	"github.com/samvad-hq/gnews-scraper/internal/crawler"
	"github.com/samvad-hq/gnews-scraper/internal/logger"
	"github.com/samvad-hq/gnews-scraper/internal/storage"
	"github.com/samvad-hq/gnews-scraper/pkg/exporters"
	"github.com/samvad-hq/gnews-scraper/pkg/feed"
	"github.com/samvad-hq/gnews-scraper/pkg/httpclient"
)

// Scraper represents the scrape runtime. It wires seeds, the page walker
// runner, the decode cache and the exporter fanout, and executes runs:
// once by default, or on a cadence when run_interval_seconds is set.
type Scraper struct {
	cfg      *config.Config
	seeds    []feed.SeedQuery
	fanout   *exporters.Fanout
	runner   *crawler.Runner
	cache    storage.Cache
	interval time.Duration
	log      logger.Logger
}

// New builds a scraper runtime from config files.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Scraper, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	seeds, err := feed.LoadSeeds(cfg.SeedsFile)
	if err != nil {
		return nil, fmt.Errorf("load seeds: %w", err)
	}
	seedIDs := make([]string, 0, len(seeds))
	for _, s := range seeds {
		seedIDs = append(seedIDs, s.ID)
	}
	log.InfoObj("seeds loaded", "seeds_meta", map[string]any{
		"count": len(seedIDs),
		"ids":   seedIDs,
	})

	exporterReg, err := exporters.LoadRegistry(cfg.ExportersFile)
	if err != nil {
		return nil, fmt.Errorf("load exporters registry: %w", err)
	}

	enabled := exporterReg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no exporters configured")
	}

	expClients, err := exporters.BuildAll(ctx, exporters.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build exporters: %w", err)
	}
	fanout := exporters.NewFanout(expClients)
	exporterSummaries := make([]map[string]string, 0, len(enabled))
	for _, expCfg := range enabled {
		exporterSummaries = append(exporterSummaries, map[string]string{
			"id":   expCfg.ID,
			"type": expCfg.Type,
		})
	}
	log.InfoObj("exporters registry loaded", "exporters_meta", map[string]any{
		"count":     len(exporterSummaries),
		"exporters": exporterSummaries,
	})

	cache, err := storage.NewCache(cfg.CacheType, cfg.BBoltPath, storage.Options{
		EntryTTL:        cfg.CacheTTL,
		CleanupInterval: cfg.CacheCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init decode cache: %w", err)
	}
	log.InfoObj("decode cache initialized", "cache_config", map[string]any{
		"type":                     cfg.CacheType,
		"path":                     cfg.BBoltPath,
		"entry_ttl_seconds":        int(cfg.CacheTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.CacheCleanupInterval.Seconds()),
	})

	client := httpclient.NewRestyClient(cfg.FetchTimeout, httpclient.WithRateLimit(cfg.RequestsPerSecond))

	rel := feed.RelativeWindow{
		Hours: cfg.WindowHours,
		Days:  cfg.WindowDays,
		Years: cfg.WindowYears,
	}
	runner := crawler.NewRunner(client, cache, log, crawler.Config{
		MaxItems:               cfg.MaxItems,
		MaxPagesPerSeed:        cfg.MaxPagesPerSeed,
		MaxConsecutiveFailures: cfg.MaxConsecutiveFailures,
		Concurrency:            cfg.Concurrency,
		StrictDates:            cfg.StrictDates,
		MaxTokenLen:            cfg.DecodeTokenMaxLen,
		Window:                 feed.Window{Since: rel.SinceFrom(time.Now())},
		When:                   rel.WhenParam(),
	})

	return &Scraper{
		cfg:      cfg,
		seeds:    seeds,
		fanout:   fanout,
		runner:   runner,
		cache:    cache,
		interval: cfg.RunInterval,
		log:      log,
	}, nil
}

// Run executes one scrape run, or a run loop when an interval is
// configured, until the context is cancelled.
func (s *Scraper) Run(ctx context.Context) error {
	if s == nil || s.runner == nil {
		return fmt.Errorf("scraper is not initialized")
	}
	defer s.closeCache()

	if s.interval <= 0 {
		return s.runOnce(ctx)
	}

	s.log.InfoObj("scrape loop starting", "scraper_state", map[string]any{
		"seeds_count":     len(s.seeds),
		"exporters_count": s.fanout.Size(),
		"run_interval":    s.interval.String(),
	})

	if err := s.runOnce(ctx); err != nil {
		s.log.ErrorObj("initial run failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.InfoObj("scrape loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := s.runOnce(ctx); err != nil {
				s.log.ErrorObj("scheduled run failed", "error", err)
			}
		}
	}
}

// runOnce performs a single run across all seeds and exports the result.
func (s *Scraper) runOnce(ctx context.Context) error {
	start := time.Now()
	s.log.InfoObj("run started", "run_start", map[string]any{
		"seeds_count": len(s.seeds),
		"started_at":  start.UTC(),
	})

	result, err := s.runner.Run(ctx, s.seeds)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	successful, err := s.fanout.Export(ctx, result.Items)
	if err != nil {
		s.log.ErrorObj("export failed", "export_error", map[string]any{
			"run_id":               result.RunID,
			"successful_exporters": successful,
			"error":                err.Error(),
		})
		return fmt.Errorf("export run %s: %w", result.RunID, err)
	}

	s.log.InfoObj("run exported", "run_summary", map[string]any{
		"run_id":        result.RunID,
		"status":        string(result.Status),
		"item_count":    result.ItemCount,
		"skipped_count": result.SkippedCount,
		"failed_seeds":  result.FailedSeeds,
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return nil
}

// closeCache safely closes the decode cache, logging any errors encountered.
func (s *Scraper) closeCache() {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Close(); err != nil {
		s.log.ErrorObj("decode cache close failed", "error", err)
	}
}
