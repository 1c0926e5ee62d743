package scopelib

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/open-sspm/oauth-risk/internal/metrics"
)

// Cache is a process-wide Reference backed by a Loader. Lookups read an
// immutable snapshot and never block on I/O; Refresh swaps the snapshot.
type Cache struct {
	loader  Loader
	current atomic.Pointer[Library]

	refreshMu sync.Mutex
}

var _ Reference = (*Cache)(nil)

func NewCache(loader Loader) *Cache {
	return &Cache{loader: loader}
}

// Refresh reloads the library. On failure the previous snapshot stays live.
func (c *Cache) Refresh(ctx context.Context) error {
	if c == nil || c.loader == nil {
		return errors.New("scope library cache: missing loader")
	}
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	source := c.loader.Source()
	lib, err := c.loader.Load(ctx)
	if err != nil {
		metrics.ScopeLibraryRefreshesTotal.WithLabelValues(source, "failure").Inc()
		return err
	}
	c.current.Store(lib)
	metrics.ScopeLibraryRefreshesTotal.WithLabelValues(source, "success").Inc()
	metrics.ScopeLibraryEntries.Set(float64(lib.Len()))
	slog.Debug("scope library refreshed", "source", source, "version", lib.Version(), "entries", lib.Len())
	return nil
}

// Invalidate drops the snapshot; lookups miss until the next Refresh.
func (c *Cache) Invalidate() {
	if c == nil {
		return
	}
	c.current.Store(nil)
}

func (c *Cache) Lookup(scope string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	return c.current.Load().Lookup(scope)
}

// Snapshot returns the live library, or nil before the first Refresh.
func (c *Cache) Snapshot() *Library {
	if c == nil {
		return nil
	}
	return c.current.Load()
}
