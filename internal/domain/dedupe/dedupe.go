// Package dedupe tracks which keys a run has already handled.
package dedupe

import (
	"context"
	"strings"
	"sync"
)

// Deduper records seen keys so each input is processed at most once per run.
type Deduper interface {
	// SeenAndRecord reports whether key was seen and records it if not.
	SeenAndRecord(ctx context.Context, key string) bool

	Size() int64
}

type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	caseFold bool
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{seen: make(map[string]struct{})}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) normalize(key string) string {
	key = strings.TrimSpace(key)
	if d.caseFold {
		key = strings.ToLower(key)
	}
	return key
}

// SeenAndRecord returns true if key was already recorded, false if it was
// newly recorded.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	key = d.normalize(key)
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

// Size returns the number of recorded keys.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
