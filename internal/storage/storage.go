// Package storage provides the persistent decode cache: resolved article
// URLs keyed by their obfuscated token, retained across runs with a TTL.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Cache stores decoded article URLs.
type Cache interface {
	Close() error
	GetURL(token string) (string, bool, error)
	PutURL(token, resolved string) error
}

// Options controls retention characteristics for concrete cache implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewCache creates the configured cache backend.
func NewCache(typ, path string, opts Options) (Cache, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopCache{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt cache requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported cache type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopCache struct{}

func (noopCache) Close() error                        { return nil }
func (noopCache) GetURL(string) (string, bool, error) { return "", false, nil }
func (noopCache) PutURL(string, string) error         { return nil }
