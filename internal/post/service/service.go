package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/texasiusc/resources/internal/post"
	"github.com/texasiusc/resources/internal/post/repository"
	"github.com/texasiusc/resources/pkg/logger"
)

// Service is the read path used by the search endpoint and both views. It
// picks the query shape, binds parameters and validates what the store returns.
type Service struct {
	store repository.Store
}

func New(store repository.Store) *Service {
	return &Service{store: store}
}

// Search returns summaries of every post when term is blank, otherwise of the
// posts matching term.
func (s *Service) Search(ctx context.Context, term string) ([]post.Summary, error) {
	term = strings.TrimSpace(term)
	q, params := post.AllPosts, post.Params(nil)
	if term != "" {
		q, params = post.SearchPosts, post.SearchParams(term)
	}
	raw, err := s.store.Fetch(ctx, q, params)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", q.Name, err)
	}
	out, skipped, err := post.DecodeSummaries(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", q.Name, err)
	}
	if skipped > 0 {
		logger.Warnf("%s: skipped %d malformed documents", q.Name, skipped)
	}
	return out, nil
}

// Get returns the post with the given slug, or post.ErrNotFound.
func (s *Service) Get(ctx context.Context, slug string) (*post.Document, error) {
	raw, err := s.store.Fetch(ctx, post.PostBySlug, post.SlugParams(slug))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", post.PostBySlug.Name, err)
	}
	d, err := post.DecodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s %q: %w", post.PostBySlug.Name, slug, err)
	}
	if d == nil {
		return nil, post.ErrNotFound
	}
	return d, nil
}

// Ready reports whether the underlying store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	if p, ok := s.store.(repository.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
