// Package views holds the page state behind the listing and detail routes.
package views

import (
	"context"
	"sync"

	"github.com/texasiusc/resources/internal/post"
	"github.com/texasiusc/resources/pkg/logger"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

const (
	MsgLoadFailed   = "Failed to fetch posts."
	MsgSearchFailed = "An error occurred during the search."
)

// Searcher is the search operation the listing runs; a blank term lists everything.
type Searcher interface {
	Search(ctx context.Context, term string) ([]post.Summary, error)
}

// ListingState is a point-in-time copy of a Listing.
type ListingState struct {
	Status Status
	Term   string
	Posts  []post.Summary
	Error  string
}

// Listing is the state of one listing page instance. Load and Submit may be
// called concurrently; only the result of the most recent call is kept.
type Listing struct {
	search Searcher

	mu    sync.Mutex
	gen   uint64
	state ListingState
}

func NewListing(s Searcher) *Listing {
	return &Listing{search: s, state: ListingState{Status: StatusIdle}}
}

// Load is the initial fetch of every post.
func (l *Listing) Load(ctx context.Context) ListingState {
	return l.run(ctx, "", MsgLoadFailed)
}

// Submit searches for term.
func (l *Listing) Submit(ctx context.Context, term string) ListingState {
	return l.run(ctx, term, MsgSearchFailed)
}

// Snapshot returns the current state.
func (l *Listing) Snapshot() ListingState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Listing) run(ctx context.Context, term, failMsg string) ListingState {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.state = ListingState{Status: StatusLoading, Term: term}
	l.mu.Unlock()

	posts, err := l.search.Search(ctx, term)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		logger.Debugf("listing: discarding stale result for %q", term)
		return l.state
	}
	if err != nil {
		logger.Errorf("listing: search %q: %v", term, err)
		l.state = ListingState{Status: StatusError, Term: term, Error: failMsg}
		return l.state
	}
	if posts == nil {
		posts = []post.Summary{}
	}
	l.state = ListingState{Status: StatusSuccess, Term: term, Posts: posts}
	return l.state
}
