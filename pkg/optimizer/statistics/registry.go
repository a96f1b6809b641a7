package statistics

import (
	"context"

	"github.com/dgraph-io/ristretto/v2"

	"heapdb/pkg/primitives"
)

// Registry caches TableStats per table and builds them on first use.
type Registry struct {
	cache         *ristretto.Cache[uint64, *TableStats]
	catalog       Catalog
	pool          Scanner
	ioCostPerPage int
	buckets       int
}

// NewRegistry creates a registry holding stats for up to maxEntries tables.
func NewRegistry(catalog Catalog, pool Scanner, maxEntries int64, buckets int) (*Registry, error) {
	if maxEntries <= 0 {
		maxEntries = 64
	}

	cache, err := ristretto.NewCache(&ristretto.Config[uint64, *TableStats]{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}

	return &Registry{
		cache:         cache,
		catalog:       catalog,
		pool:          pool,
		ioCostPerPage: DefaultIOCostPerPage,
		buckets:       buckets,
	}, nil
}

// Get returns the cached stats for tableID, building them if absent.
func (r *Registry) Get(ctx context.Context, tableID primitives.TableID) (*TableStats, error) {
	if ts, ok := r.cache.Get(uint64(tableID)); ok {
		return ts, nil
	}

	ts, err := NewTableStats(ctx, tableID, r.ioCostPerPage, r.buckets, r.catalog, r.pool)
	if err != nil {
		return nil, err
	}
	r.cache.Set(uint64(tableID), ts, 1)
	r.cache.Wait()
	return ts, nil
}

// Invalidate drops the cached stats for tableID.
func (r *Registry) Invalidate(tableID primitives.TableID) {
	r.cache.Del(uint64(tableID))
}

func (r *Registry) Close() {
	r.cache.Close()
}
