package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/texasiusc/resources/internal/post"
)

// MemoryStore is a fixture-backed store that evaluates the fixed query shapes
// in process. It backs tests and local development without a hosted project.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	store map[string]post.Document
}

func NewMemoryStore(docs ...post.Document) *MemoryStore {
	m := &MemoryStore{store: make(map[string]post.Document)}
	for _, d := range docs {
		m.Put(d)
	}
	return m
}

// LoadFixture reads a JSON array of documents in the repository's wire shape.
// Entries failing validation are skipped.
func LoadFixture(path string) (*MemoryStore, int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read fixture: %w", err)
	}
	docs, skipped, err := post.DecodeDocuments(b)
	if err != nil {
		return nil, 0, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return NewMemoryStore(docs...), skipped, nil
}

// Put inserts or replaces a document, keeping first-insertion order.
func (m *MemoryStore) Put(d post.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[d.ID]; !ok {
		m.order = append(m.order, d.ID)
	}
	m.store[d.ID] = d
}

func (m *MemoryStore) Fetch(ctx context.Context, q post.Query, params post.Params) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch q.Name {
	case post.PostBySlug.Name:
		slug, err := stringParam(params, "slug")
		if err != nil {
			return nil, err
		}
		for _, id := range m.order {
			if d := m.store[id]; d.Slug.Current == slug {
				return json.Marshal(d)
			}
		}
		return json.RawMessage("null"), nil
	case post.AllPosts.Name:
		out := make([]wireSummary, 0, len(m.order))
		for _, id := range m.order {
			out = append(out, toWireSummary(m.store[id]))
		}
		return json.Marshal(out)
	case post.SearchPosts.Name:
		term, err := stringParam(params, "term")
		if err != nil {
			return nil, err
		}
		out := make([]wireSummary, 0)
		for _, id := range m.order {
			d := m.store[id]
			if post.Matches(&d, term) {
				out = append(out, toWireSummary(d))
			}
		}
		return json.Marshal(out)
	case post.AllPostsFull.Name:
		out := make([]post.Document, 0, len(m.order))
		for _, id := range m.order {
			out = append(out, m.store[id])
		}
		return json.Marshal(out)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownQuery, q.Name)
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// wireSummary is the summary projection in the repository's wire shape.
type wireSummary struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Slug        post.Slug `json:"slug"`
	PublishedAt string    `json:"publishedAt,omitempty"`
	Tags        []string  `json:"tags"`
}

func toWireSummary(d post.Document) wireSummary {
	s := wireSummary{ID: d.ID, Title: d.Title, Slug: d.Slug, Tags: d.Tags}
	if !d.PublishedAt.IsZero() {
		s.PublishedAt = d.PublishedAt.UTC().Format(time.RFC3339Nano)
	}
	return s
}
