package store

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ReportCache keeps recently read reports in memory.
// This allows swapping between in-process and shared cache implementations.
type ReportCache interface {
	// Get returns the cached report, false on miss or expiry
	Get(id string) (*Report, bool)

	// Set stores a report
	Set(r *Report)

	// Invalidate drops a report so the next Get goes to the store
	Invalidate(id string)

	// Len returns the number of cached entries
	Len() int
}

// CacheConfig holds configuration for cache behavior
type CacheConfig struct {
	// Size is the maximum number of cached reports
	Size int

	// TTL is the time-to-live for cached entries.
	// Set to 0 for no expiration (eviction by size only).
	TTL time.Duration
}

// DefaultCacheConfig returns sensible defaults for report caching
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Size: 1024,
		TTL:  10 * time.Minute,
	}
}

// LRUReportCache is a size-bounded cache with per-entry expiry
type LRUReportCache struct {
	lru *expirable.LRU[string, *Report]
}

// NewLRUReportCache creates a new LRU cache
func NewLRUReportCache(config CacheConfig) *LRUReportCache {
	size := config.Size
	if size <= 0 {
		size = DefaultCacheConfig().Size
	}
	return &LRUReportCache{
		lru: expirable.NewLRU[string, *Report](size, nil, config.TTL),
	}
}

// Get returns a copy so callers cannot modify the cached entry
func (c *LRUReportCache) Get(id string) (*Report, bool) {
	r, ok := c.lru.Get(id)
	if !ok {
		return nil, false
	}
	return r.clone(), true
}

func (c *LRUReportCache) Set(r *Report) {
	c.lru.Add(r.ID, r.clone())
}

func (c *LRUReportCache) Invalidate(id string) {
	c.lru.Remove(id)
}

func (c *LRUReportCache) Len() int {
	return c.lru.Len()
}

// CachedReportStore serves reads from a cache in front of another store.
// Writes go straight to the underlying store and refresh the cache entry.
//
// Writes bump a generation counter when they start and when they finish.
// A read only fills the cache if the generation is unchanged and no write is
// in flight, so a slow read of an unpaid row never replaces the paid copy.
type CachedReportStore struct {
	next  ReportStore
	cache ReportCache

	mu       sync.Mutex
	gen      uint64
	inflight int
}

// NewCachedReportStore wraps next with cache
func NewCachedReportStore(next ReportStore, cache ReportCache) *CachedReportStore {
	return &CachedReportStore{next: next, cache: cache}
}

func (s *CachedReportStore) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// fill caches a report read from the underlying store
func (s *CachedReportStore) fill(r *Report, seen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == seen && s.inflight == 0 {
		s.cache.Set(r)
	}
}

func (s *CachedReportStore) beginWrite(id string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.inflight++
	s.cache.Invalidate(id)
	return s.gen
}

// endWrite caches r only when no other write overlapped this one
func (s *CachedReportStore) endWrite(id string, r *Report, started uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.inflight--
	if r != nil && s.gen == started+1 {
		s.cache.Set(r)
		return
	}
	s.cache.Invalidate(id)
}

func (s *CachedReportStore) Create(ctx context.Context, r *Report) error {
	seen := s.generation()
	if err := s.next.Create(ctx, r); err != nil {
		return err
	}
	s.fill(r, seen)
	return nil
}

func (s *CachedReportStore) Get(ctx context.Context, id string) (*Report, error) {
	if r, ok := s.cache.Get(id); ok {
		return r, nil
	}

	seen := s.generation()
	r, err := s.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fill(r, seen)
	return r, nil
}

// GetByCheckoutRef always asks the underlying store; the cache is keyed by report ID
func (s *CachedReportStore) GetByCheckoutRef(ctx context.Context, ref string) (*Report, error) {
	return s.next.GetByCheckoutRef(ctx, ref)
}

func (s *CachedReportStore) MarkPaid(ctx context.Context, id string) (*Report, error) {
	started := s.beginWrite(id)

	r, err := s.next.MarkPaid(ctx, id)
	s.endWrite(id, r, started)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *CachedReportStore) SetCheckoutRef(ctx context.Context, id, ref string) error {
	started := s.beginWrite(id)
	err := s.next.SetCheckoutRef(ctx, id, ref)
	s.endWrite(id, nil, started)
	return err
}
