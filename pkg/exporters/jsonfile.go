package exporters

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samvad-hq/gnews-scraper/internal/domain"
)

// jsonFileExporter writes records to a local JSON file, either indented or
// compact. The parent directory is created when missing.
type jsonFileExporter struct {
	id     string
	typ    string
	path   string
	pretty bool
	log    Logger
}

func newJSONFileExporter(_ context.Context, cfg ExporterConfig, log Logger) (Exporter, error) {
	if cfg.JSONFile == nil {
		return nil, fmt.Errorf("exporter %q missing jsonfile configuration", cfg.ID)
	}

	pretty := true
	if cfg.JSONFile.Pretty != nil {
		pretty = *cfg.JSONFile.Pretty
	}

	return &jsonFileExporter{
		id:     cfg.ID,
		typ:    TypeJSONFile,
		path:   cfg.JSONFile.Path,
		pretty: pretty,
		log:    ensureLogger(log),
	}, nil
}

func (j *jsonFileExporter) ID() string   { return j.id }
func (j *jsonFileExporter) Type() string { return j.typ }

// Export serializes the records as a JSON array to the configured path.
func (j *jsonFileExporter) Export(_ context.Context, records []domain.ArticleRecord) error {
	if records == nil {
		records = []domain.ArticleRecord{}
	}

	var (
		payload []byte
		err     error
	)
	if j.pretty {
		payload, err = json.MarshalIndent(records, "", "  ")
	} else {
		payload, err = json.Marshal(records)
	}
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	dir := filepath.Dir(j.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := os.WriteFile(j.path, payload, 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}

	j.log.DebugObj("json file exporter wrote records", "exporter_jsonfile", map[string]any{
		"exporter_id": j.id,
		"path":        j.path,
		"records":     len(records),
	})
	return nil
}
