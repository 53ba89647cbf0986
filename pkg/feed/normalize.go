package feed

import (
	"strconv"
	"strings"
	"time"

	"github.com/samvad-hq/gnews-scraper/internal/domain"
)

// DecodeCache remembers resolved token URLs so repeated tokens skip the
// decode stage. Implementations live in internal/storage; callers may pass
// nil to disable caching.
type DecodeCache interface {
	GetURL(token string) (string, bool, error)
	PutURL(token, resolved string) error
}

// Skip marks a listing excluded from output. Skips are counted in run
// diagnostics but never abort a page or a run.
type Skip struct {
	Reason domain.SkipReason
}

// Normalizer turns raw listings into typed article records.
type Normalizer struct {
	maxTokenLen int
	cache       DecodeCache
	now         func() time.Time
}

// NewNormalizer builds a normalizer with the given token length guard and
// optional decode cache.
func NewNormalizer(maxTokenLen int, cache DecodeCache) *Normalizer {
	if maxTokenLen <= 0 {
		maxTokenLen = DefaultMaxTokenLen
	}
	return &Normalizer{
		maxTokenLen: maxTokenLen,
		cache:       cache,
		now:         time.Now,
	}
}

// Normalize converts a raw listing into an ArticleRecord. A listing without
// a title yields a Skip; every other absent or malformed field degrades to
// an absent record field, never a failure.
func (n *Normalizer) Normalize(raw domain.RawListing, feedURL string) (domain.ArticleRecord, *Skip) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return domain.ArticleRecord{}, &Skip{Reason: domain.SkipMissingTitle}
	}

	rec := domain.ArticleRecord{
		FeedURL:       feedURL,
		ArticleURL:    strings.TrimSpace(raw.TokenHref),
		Title:         title,
		ImageURL:      strings.TrimSpace(raw.ImageURL),
		Source:        strings.TrimSpace(raw.Source),
		SourceIconURL: strings.TrimSpace(raw.SourceIconURL),
		Author:        strings.TrimSpace(raw.Author),
	}

	rec.DecodedURL = n.resolveToken(rec.ArticleURL)

	if t, ok := parsePublishedAt(raw.DatetimeAttr, raw.TimeText, n.now()); ok {
		rec.PublishedAt = &t
	}

	return rec, nil
}

// resolveToken decodes the article link's token, consulting the cache
// first. Decode failure means "resolved URL unavailable" and returns "".
// Cache errors are best effort and never block normalization.
func (n *Normalizer) resolveToken(articleURL string) string {
	token := TokenFromHref(articleURL)
	if token == "" {
		return ""
	}

	if n.cache != nil {
		if cached, ok, err := n.cache.GetURL(token); err == nil && ok {
			return cached
		}
	}

	resolved, err := DecodeToken(token, n.maxTokenLen)
	if err != nil {
		return ""
	}

	if n.cache != nil {
		_ = n.cache.PutURL(token, resolved)
	}
	return resolved
}

var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
	"Jan 2, 2006, 3:04 PM",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006-01-02",
}

// parsePublishedAt resolves the published time from the machine-readable
// datetime attribute when present, then the visible literal, including the
// feed's relative phrasings. Returns false when nothing parses.
func parsePublishedAt(datetimeAttr, timeText string, now time.Time) (time.Time, bool) {
	for _, literal := range []string{datetimeAttr, timeText} {
		literal = strings.TrimSpace(literal)
		if literal == "" {
			continue
		}
		if t, ok := parseAbsolute(literal); ok {
			return t, true
		}
		if t, ok := parseRelative(literal, now); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseAbsolute(literal string) (time.Time, bool) {
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, literal); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseRelative handles phrasings like "3 hours ago" and "Yesterday".
func parseRelative(literal string, now time.Time) (time.Time, bool) {
	literal = strings.ToLower(strings.TrimSpace(literal))

	if literal == "yesterday" {
		return now.UTC().Add(-24 * time.Hour), true
	}

	fields := strings.Fields(literal)
	if len(fields) != 3 || fields[2] != "ago" {
		return time.Time{}, false
	}

	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 {
		return time.Time{}, false
	}

	var unit time.Duration
	switch strings.TrimSuffix(fields[1], "s") {
	case "second":
		unit = time.Second
	case "minute":
		unit = time.Minute
	case "hour":
		unit = time.Hour
	case "day":
		unit = 24 * time.Hour
	case "week":
		unit = 7 * 24 * time.Hour
	default:
		return time.Time{}, false
	}

	return now.UTC().Add(-time.Duration(count) * unit), true
}
