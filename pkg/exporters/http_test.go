package exporters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samvad-hq/gnews-scraper/internal/domain"
)

func TestHTTPExporterSendsBatch(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Fatalf("missing header, got %s", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("content type = %s", got)
		}
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	exp, err := newHTTPExporter(context.Background(), ExporterConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPExporterConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			Headers:        map[string]string{"X-Test": "1"},
			TimeoutSeconds: 2,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPExporter: %v", err)
	}

	records := []domain.ArticleRecord{
		{FeedURL: "https://news.google.com/search?q=x", ArticleURL: "https://news.google.com/articles/t1", Title: "One"},
		{FeedURL: "https://news.google.com/search?q=x", ArticleURL: "https://news.google.com/articles/t2", Title: "Two"},
	}
	if err := exp.Export(context.Background(), records); err != nil {
		t.Fatalf("Export: %v", err)
	}

	var got []domain.ArticleRecord
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal request body: %v", err)
	}
	if len(got) != 2 || got[0].Title != "One" || got[1].Title != "Two" {
		t.Fatalf("request body lost records: %+v", got)
	}
}

func TestHTTPExporterErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	exp, err := newHTTPExporter(context.Background(), ExporterConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPExporterConfig{URL: srv.URL, Method: http.MethodPost, TimeoutSeconds: 2},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPExporter: %v", err)
	}

	if err := exp.Export(context.Background(), nil); err == nil {
		t.Fatalf("expected error on 400 response")
	}
}
