package whisper

import (
	"context"
	"sync"
)

// Key identifies a cached model. Two keys are equal iff both fields match
// exactly; no path normalization is applied.
type Key struct {
	Path      string
	Precision Precision
}

// LoadFunc performs the potentially expensive model load for a cache miss.
type LoadFunc func(ctx context.Context, path string, precision Precision) (*Model, error)

// Cache maps (model path, compute precision) to a loaded handle for the
// lifetime of the process. It never evicts: each adapter invocation is a
// fresh process that exits after one request, so entries cannot
// accumulate. A long-running host reusing this type would need to add an
// eviction bound.
type Cache struct {
	load LoadFunc

	mu     sync.Mutex
	models map[Key]*Model
}

func NewCache(load LoadFunc) *Cache {
	return &Cache{load: load, models: make(map[Key]*Model)}
}

// Acquire returns the handle for (path, precision), loading it on first
// use. Repeated acquisitions of the same key return the identical handle
// without touching the loader. A failed load leaves no entry, so a later
// acquisition with a corrected model file can still succeed.
func (c *Cache) Acquire(ctx context.Context, path string, precision Precision) (*Model, error) {
	key := Key{Path: path, Precision: precision}

	c.mu.Lock()
	defer c.mu.Unlock()

	if model, ok := c.models[key]; ok {
		return model, nil
	}

	model, err := c.load(ctx, path, precision)
	if err != nil {
		return nil, err
	}

	c.models[key] = model
	return model, nil
}
