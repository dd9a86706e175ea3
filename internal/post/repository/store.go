package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/texasiusc/resources/internal/post"
	"github.com/texasiusc/resources/internal/sanity"
)

// ErrUnknownQuery is returned by stores that evaluate queries natively when
// handed a shape they do not implement.
var ErrUnknownQuery = errors.New("unknown query")

// Store is the content store contract: run one fixed query shape with bound
// parameters and return the raw result. A single-document query matching
// nothing returns null; a multi-document query matching nothing returns [].
// Every call is one independent fetch: no retries.
type Store interface {
	Fetch(ctx context.Context, q post.Query, params post.Params) (json.RawMessage, error)
}

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SanityStore sends the GROQ text of each query to the hosted repository.
type SanityStore struct {
	client *sanity.Client
}

func NewSanityStore(c *sanity.Client) *SanityStore {
	return &SanityStore{client: c}
}

func (s *SanityStore) Fetch(ctx context.Context, q post.Query, params post.Params) (json.RawMessage, error) {
	raw, err := s.client.Query(ctx, q.GROQ, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", q.Name, err)
	}
	return raw, nil
}

func (s *SanityStore) Ping(ctx context.Context) error {
	_, err := s.client.Query(ctx, `count(*[_type == "post"])`, nil)
	return err
}

func stringParam(params post.Params, name string) (string, error) {
	v, ok := params[name]
	if !ok {
		return "", fmt.Errorf("missing param %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %q must be a string, got %T", name, v)
	}
	return s, nil
}
