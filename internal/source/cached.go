package source

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/schema"
	"go.uber.org/zap"
)

// currentCacheVersion defines the version of the cached record layout.
const currentCacheVersion = 1

// CachedSource serves fresh responses from the cache store and fetches otherwise.
// A stale or unreadable entry is never used in place of a failed fetch.
type CachedSource struct {
	inner contract.Source
	store contract.CacheStore
	ttl   time.Duration
	now   func() time.Time
}

// NewCachedSource wraps inner with store. A zero ttl disables cache hits
// while still refreshing the store.
func NewCachedSource(inner contract.Source, store contract.CacheStore, ttl time.Duration) *CachedSource {
	return &CachedSource{inner: inner, store: store, ttl: ttl, now: time.Now}
}

// Name returns the wrapped source name.
func (s *CachedSource) Name() string { return s.inner.Name() }

// Fetch implements contract.Source.
func (s *CachedSource) Fetch(ctx context.Context, cycle string) ([]schema.RawMetric, error) {
	key := CacheKey(s.inner.Name(), cycle)

	if records := s.checkCacheHit(key); records != nil {
		zap.L().Debug("cache hit", zap.String("source", s.Name()), zap.String("cycle", cycle))
		return records, nil
	}

	records, err := s.inner.Fetch(ctx, cycle)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		if err := s.store.Set(key, data, currentCacheVersion, s.now().Unix()); err != nil {
			zap.L().Warn("cache write failed", zap.String("cycle", cycle), zap.Error(err))
		}
	}
	return records, nil
}

// checkCacheHit attempts to retrieve and validate a cached response.
func (s *CachedSource) checkCacheHit(key string) []schema.RawMetric {
	data, version, ts, err := s.store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || s.now().Sub(time.Unix(ts, 0)) >= s.ttl {
		return nil
	}
	var records []schema.RawMetric
	if err := json.Unmarshal(data, &records); err != nil || records == nil {
		return nil
	}
	return records
}

// CacheKey creates a unique key for a source and cycle.
func CacheKey(name, cycle string) string {
	key := fmt.Sprintf("%s:%s:%d", name, cycle, currentCacheVersion)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
