package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/texasiusc/resources/internal/post"
	"github.com/texasiusc/resources/pkg/metrics"
)

// InstrumentedStore records a fetch counter and latency per query shape.
type InstrumentedStore struct {
	next Store
}

func NewInstrumentedStore(next Store) *InstrumentedStore {
	return &InstrumentedStore{next: next}
}

func (s *InstrumentedStore) Fetch(ctx context.Context, q post.Query, params post.Params) (json.RawMessage, error) {
	start := time.Now()
	raw, err := s.next.Fetch(ctx, q, params)
	metrics.ContentFetchDuration.WithLabelValues(q.Name).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ContentFetches.WithLabelValues(q.Name, outcome).Inc()
	return raw, err
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
