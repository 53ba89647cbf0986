// Package feed implements the Google News search-results extraction
// pipeline: seed queries, search URL building, token decoding, listing
// parsing, normalization and date-window filtering.
package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultLanguage = "en"
	defaultRegion   = "US"
)

// SeedQuery is one caller-specified (keyword, language, region, window)
// combination driving an independent pagination walk. Seeds are immutable
// once a run starts.
type SeedQuery struct {
	ID       string            `json:"id" yaml:"id"`
	Query    string            `json:"query" yaml:"query"`
	Language string            `json:"language" yaml:"language"`
	Region   string            `json:"region" yaml:"region"`
	When     string            `json:"when" yaml:"when"`
	Headers  map[string]string `json:"headers" yaml:"headers"`
}

type seedsFile struct {
	Seeds []SeedQuery `json:"seeds" yaml:"seeds"`
}

// LoadSeeds loads the ordered seed query list from a YAML or JSON file.
func LoadSeeds(path string) ([]SeedQuery, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("seeds file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seeds file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read seeds file: %w", err)
	}

	reg, err := parseSeedsFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(reg.Seeds) == 0 {
		return nil, errors.New("seeds file contains no seed entries")
	}

	idx := make(map[string]struct{}, len(reg.Seeds))
	out := make([]SeedQuery, len(reg.Seeds))
	for i := range reg.Seeds {
		s := sanitizeSeed(reg.Seeds[i])
		if err := validateSeed(s); err != nil {
			return nil, fmt.Errorf("seed[%d]: %w", i, err)
		}
		if _, exists := idx[s.ID]; exists {
			return nil, fmt.Errorf("duplicate seed id %q", s.ID)
		}
		idx[s.ID] = struct{}{}
		out[i] = s
	}

	return out, nil
}

type unmarshalFn func([]byte, any) error

func parseSeedsFile(data []byte, ext string) (seedsFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalSeeds(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return seedsFile{}, errors.New("seeds file format not recognized (expected YAML or JSON)")
}

func unmarshalSeeds(name string, data []byte, fn unmarshalFn) (seedsFile, error) {
	var reg seedsFile
	if err := fn(data, &reg); err != nil {
		return seedsFile{}, fmt.Errorf("decode %s seeds: %w", name, err)
	}
	return reg, nil
}

func sanitizeSeed(s SeedQuery) SeedQuery {
	s.ID = strings.TrimSpace(s.ID)
	s.Query = strings.TrimSpace(s.Query)
	s.Language = strings.TrimSpace(s.Language)
	s.Region = strings.TrimSpace(s.Region)
	s.When = strings.TrimSpace(s.When)

	if s.Language == "" {
		s.Language = defaultLanguage
	}
	if s.Region == "" {
		s.Region = defaultRegion
	}

	return s
}

func validateSeed(s SeedQuery) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.Query == "" {
		return fmt.Errorf("query is required for seed %q", s.ID)
	}
	return nil
}
