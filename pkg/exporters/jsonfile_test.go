package exporters

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/gnews-scraper/internal/domain"
)

func TestJSONFileExporterWritesPrettyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "articles.json")

	exp, err := newJSONFileExporter(context.Background(), ExporterConfig{
		ID:       "local",
		Type:     TypeJSONFile,
		JSONFile: &JSONFileExporterConfig{Path: path},
	}, nil)
	if err != nil {
		t.Fatalf("newJSONFileExporter: %v", err)
	}

	published := time.Date(2025, 7, 25, 10, 12, 44, 0, time.UTC)
	records := []domain.ArticleRecord{{
		FeedURL:     "https://news.google.com/search?q=banana",
		ArticleURL:  "https://news.google.com/articles/tok",
		DecodedURL:  "https://example.com/story",
		Title:       "Banana story",
		PublishedAt: &published,
	}}

	if err := exp.Export(context.Background(), records); err != nil {
		t.Fatalf("Export: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(raw), "\n  ") {
		t.Fatalf("expected indented output, got %q", raw)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 record, got %d", len(decoded))
	}
	if decoded[0]["googleNewsUrl"] != "https://news.google.com/search?q=banana" {
		t.Fatalf("googleNewsUrl = %v", decoded[0]["googleNewsUrl"])
	}
	if decoded[0]["decodedArticleUrl"] != "https://example.com/story" {
		t.Fatalf("decodedArticleUrl = %v", decoded[0]["decodedArticleUrl"])
	}
	if decoded[0]["publishedAt"] != "2025-07-25T10:12:44Z" {
		t.Fatalf("publishedAt = %v", decoded[0]["publishedAt"])
	}
	if _, present := decoded[0]["author"]; present {
		t.Fatalf("absent optional field must be omitted")
	}
}

func TestJSONFileExporterCompactAndEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	compact := false

	exp, err := newJSONFileExporter(context.Background(), ExporterConfig{
		ID:       "local",
		Type:     TypeJSONFile,
		JSONFile: &JSONFileExporterConfig{Path: path, Pretty: &compact},
	}, nil)
	if err != nil {
		t.Fatalf("newJSONFileExporter: %v", err)
	}

	if err := exp.Export(context.Background(), nil); err != nil {
		t.Fatalf("Export: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(raw) != "[]" {
		t.Fatalf("empty batch must serialize to [], got %q", raw)
	}
}

func TestJSONFileExporterRequiresConfig(t *testing.T) {
	if _, err := newJSONFileExporter(context.Background(), ExporterConfig{ID: "x", Type: TypeJSONFile}, nil); err == nil {
		t.Fatalf("expected error without jsonfile config")
	}
}
