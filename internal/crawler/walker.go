package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/samvad-hq/gnews-scraper/internal/domain"
	"github.com/samvad-hq/gnews-scraper/internal/logger"
	"github.com/samvad-hq/gnews-scraper/pkg/feed"
)

// walker drives the page walk for one seed query: fetch, parse, normalize,
// filter, dedup, then the next page. The walk ends when the feed offers no
// continuation link, a recognized page comes back empty, the per-seed page
// cap is hit, the shared item cap is reached, or the consecutive failure
// limit is exceeded.
type walker struct {
	client  PageSource
	norm    *feed.Normalizer
	dedup   *Dedup
	counter *capCounter
	log     logger.Logger
	cfg     Config
}

// seedOutcome is the terminal state of one seed's walk.
type seedOutcome struct {
	records []domain.ArticleRecord
	skipped int
	pages   int
	err     error // non-nil means the seed reached Failed
}

func (w *walker) walk(ctx context.Context, seed feed.SeedQuery) seedOutcome {
	var out seedOutcome

	pageURL := feed.SearchURL(seed, w.cfg.When)
	headers := feed.Headers(seed)
	consecutive := 0
	parsed := make(map[string]struct{})

	for {
		if ctx.Err() != nil || w.counter.exhausted() {
			return out
		}
		if out.pages >= w.cfg.MaxPagesPerSeed {
			return out
		}
		// The cursor only advances: a successfully parsed page is never
		// requested again.
		if _, ok := parsed[pageURL]; ok {
			return out
		}

		page, err := w.fetchPage(ctx, pageURL, headers)
		if err != nil {
			if ctx.Err() != nil {
				return out
			}
			consecutive++
			w.log.WarnObj("page fetch failed", "page_error", map[string]any{
				"seed_id":              seed.ID,
				"url":                  pageURL,
				"consecutive_failures": consecutive,
				"error":                err.Error(),
			})
			if consecutive > w.cfg.MaxConsecutiveFailures {
				out.err = fmt.Errorf("seed %q: %d consecutive page failures, last: %w", seed.ID, consecutive, err)
				return out
			}
			continue
		}

		consecutive = 0
		parsed[pageURL] = struct{}{}
		out.pages++

		if ctx.Err() != nil {
			// Cancelled while this page was in flight; its results are
			// discarded.
			return out
		}

		for _, raw := range page.Listings {
			rec, skip := w.norm.Normalize(raw, pageURL)
			if skip != nil {
				out.skipped++
				continue
			}
			if !w.cfg.Window.Keep(rec, w.cfg.StrictDates) {
				continue
			}
			if !w.dedup.Admit(rec) {
				continue
			}
			if !w.counter.tryAcquire() {
				return out
			}
			out.records = append(out.records, rec)
		}

		if len(page.Listings) == 0 {
			// A recognized page with zero listings: inferred end of results.
			return out
		}
		if page.NextPageURL == "" {
			// The feed offered no continuation link: explicit end marker.
			return out
		}
		pageURL = page.NextPageURL
	}
}

// fetchPage fetches and parses one page, retrying once on any recoverable
// error (transport failure, bad status, unrecognized markup).
func (w *walker) fetchPage(ctx context.Context, url string, headers map[string]string) (*feed.Page, error) {
	page, err := w.fetchOnce(ctx, url, headers)
	if err == nil {
		return page, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	w.log.DebugObj("retrying page fetch", "page_retry", map[string]any{
		"url":   url,
		"error": err.Error(),
	})
	return w.fetchOnce(ctx, url, headers)
}

func (w *walker) fetchOnce(ctx context.Context, url string, headers map[string]string) (*feed.Page, error) {
	resp, err := w.client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d body: %s", resp.StatusCode(), responseSnippet(resp.Body()))
	}

	return feed.ParsePage(resp.Body(), url)
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
