package exporters

import (
	"context"

	"github.com/samvad-hq/gnews-scraper/internal/domain"
)

// Exporter writes the final article records of a run to a sink (file,
// HTTP endpoint, queue, topic).
type Exporter interface {
	ID() string
	Type() string
	Export(ctx context.Context, records []domain.ArticleRecord) error
}
