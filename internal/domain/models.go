// Package domain contains the core record and result models shared across
// the pipeline.
package domain

import "time"

// ArticleRecord is the final extraction unit produced from one listing.
// Optional fields are omitted from JSON when unknown; empty strings are
// never emitted as placeholders.
type ArticleRecord struct {
	FeedURL       string     `json:"googleNewsUrl"`
	ArticleURL    string     `json:"articleUrl"`
	DecodedURL    string     `json:"decodedArticleUrl,omitempty"`
	Title         string     `json:"title"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	Source        string     `json:"source,omitempty"`
	SourceIconURL string     `json:"sourceIconUrl,omitempty"`
	Author        string     `json:"author,omitempty"`
}

// Identity returns the deduplication key for the record: the decoded
// destination URL when present, otherwise the feed URL plus the raw
// obfuscated article link.
func (r ArticleRecord) Identity() string {
	if r.DecodedURL != "" {
		return r.DecodedURL
	}
	return r.FeedURL + "|" + r.ArticleURL
}

// RawListing is one listing exactly as found in page markup. Absence of a
// field is expected at this layer and represented by an empty string.
type RawListing struct {
	TokenHref     string
	Title         string
	DatetimeAttr  string
	TimeText      string
	ImageURL      string
	Source        string
	SourceIconURL string
	Author        string
}

// SkipReason explains why a listing was excluded from output.
type SkipReason string

const (
	SkipMissingTitle SkipReason = "missing_title"
)

// RunStatus is the terminal state of a run.
type RunStatus string

const (
	StatusSuccess        RunStatus = "success"
	StatusPartialSuccess RunStatus = "partial_success"
	StatusFailed         RunStatus = "failed"
)

// SeedFailure records a seed query that was abandoned during the run.
type SeedFailure struct {
	SeedID string `json:"seed_id"`
	Reason string `json:"reason"`
}

// RunResult is the terminal outcome of one scrape run.
type RunResult struct {
	RunID        string          `json:"run_id"`
	Items        []ArticleRecord `json:"items"`
	ItemCount    int             `json:"item_count"`
	SkippedCount int             `json:"skipped_count"`
	PagesFetched int             `json:"pages_fetched"`
	FailedSeeds  []SeedFailure   `json:"failed_seeds,omitempty"`
	Status       RunStatus       `json:"status"`
}
