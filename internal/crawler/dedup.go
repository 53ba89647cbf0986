package crawler

import (
	"sync"

	"github.com/samvad-hq/gnews-scraper/internal/domain"
)

// Dedup is the seen-identity set for one run. It is not persisted across
// runs.
type Dedup struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDedup creates an empty seen set.
func NewDedup() *Dedup {
	return &Dedup{seen: make(map[string]struct{})}
}

// Admit reports whether the record's identity is new and marks it seen.
// Check and insert happen under one lock so concurrent walkers cannot both
// admit the same identity.
func (d *Dedup) Admit(rec domain.ArticleRecord) bool {
	id := rec.Identity()

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return false
	}
	d.seen[id] = struct{}{}
	return true
}

// Size returns the number of distinct identities admitted so far.
func (d *Dedup) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
