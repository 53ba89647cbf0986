package exporters

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/samvad-hq/gnews-scraper/internal/domain"
)

// pubsubExporter implements the Exporter interface for GCP Pub/Sub, one
// message per record.
type pubsubExporter struct {
	id    string
	typ   string
	topic *pubsub.Topic
	log   Logger
}

// newPubSubExporter creates a new Pub/Sub exporter with the given configuration.
func newPubSubExporter(ctx context.Context, cfg ExporterConfig, log Logger) (Exporter, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("exporter %q missing pubsub configuration", cfg.ID)
	}
	return newPubSubExporterFromConfig(ctx, cfg.ID, cfg.PubSub, log)
}

func newPubSubExporterFromConfig(ctx context.Context, id string, cfg *PubSubExporterConfig, log Logger) (Exporter, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &pubsubExporter{
		id:    id,
		typ:   TypePubSub,
		topic: client.Topic(cfg.Topic),
		log:   ensureLogger(log),
	}, nil
}

func (p *pubsubExporter) ID() string   { return p.id }
func (p *pubsubExporter) Type() string { return p.typ }

// Export publishes each record to the configured topic and waits for
// server acknowledgement.
func (p *pubsubExporter) Export(ctx context.Context, records []domain.ArticleRecord) error {
	for i := range records {
		payload, err := json.Marshal(records[i])
		if err != nil {
			return fmt.Errorf("record %d: marshal record: %w", i, err)
		}

		res := p.topic.Publish(ctx, &pubsub.Message{Data: payload})
		if _, err := res.Get(ctx); err != nil {
			p.log.ErrorObj("pubsub exporter publish failed", "exporter_pubsub_error", map[string]any{
				"exporter_id": p.id,
				"error":       err.Error(),
			})
			return fmt.Errorf("record %d: publish to pubsub: %w", i, err)
		}
	}

	p.log.DebugObj("pubsub exporter delivered records", "exporter_pubsub_delivery", map[string]any{
		"exporter_id": p.id,
		"records":     len(records),
	})
	return nil
}
