package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/texasiusc/resources/internal/cache"
	"github.com/texasiusc/resources/internal/post"
	"github.com/texasiusc/resources/pkg/logger"
	"github.com/texasiusc/resources/pkg/metrics"
)

// CachingStore serves results of queries flagged Cached from a short-lived
// cache, refetching once an entry is older than ttl. Other queries, and every
// query when ttl is zero, go straight to the wrapped store. Cache failures are
// logged and fall through to the store.
type CachingStore struct {
	next  Store
	cache cache.Cache
	ttl   time.Duration
}

func NewCachingStore(next Store, c cache.Cache, ttl time.Duration) *CachingStore {
	return &CachingStore{next: next, cache: c, ttl: ttl}
}

func (s *CachingStore) Fetch(ctx context.Context, q post.Query, params post.Params) (json.RawMessage, error) {
	if !q.Cached || s.ttl <= 0 || s.cache == nil {
		return s.next.Fetch(ctx, q, params)
	}
	key, err := cacheKey(q, params)
	if err != nil {
		return nil, err
	}

	b, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.Warnf("content cache get %s: %v", key, err)
	case ok:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return json.RawMessage(b), nil
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	raw, err := s.next.Fetch(ctx, q, params)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		logger.Warnf("content cache set %s: %v", key, err)
	}
	return raw, nil
}

func (s *CachingStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// cacheKey is the query name plus a digest of its parameters; encoding/json
// sorts map keys so equal params always hash alike.
func cacheKey(q post.Query, params post.Params) (string, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return q.Name + ":" + hex.EncodeToString(sum[:8]), nil
}
