package bind

import (
	"context"
	"time"
)

// DefaultSearchDelay is the quiet period before a search is sent.
const DefaultSearchDelay = 300 * time.Millisecond

// Searcher is a store that refetches on a new search term.
type Searcher interface {
	SetSearchTerm(ctx context.Context, term string) error
}

// SearchInput feeds typed search terms to a store through a Debouncer.
type SearchInput struct {
	ctx      context.Context
	store    Searcher
	debounce *Debouncer
	onResult func(term string, err error)
}

// NewSearchInput binds store. onResult, if set, runs after each search.
func NewSearchInput(ctx context.Context, store Searcher, delay time.Duration, onResult func(term string, err error)) *SearchInput {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &SearchInput{
		ctx:      ctx,
		store:    store,
		debounce: NewDebouncer(delay),
		onResult: onResult,
	}
}

// Type records a new term. Only the last term of a burst is searched.
func (s *SearchInput) Type(term string) {
	s.debounce.Trigger(func() {
		err := s.store.SetSearchTerm(s.ctx, term)
		if s.onResult != nil {
			s.onResult(term, err)
		}
	})
}

// Submit searches the pending term immediately.
func (s *SearchInput) Submit() {
	s.debounce.Flush()
}

// Close drops any pending search.
func (s *SearchInput) Close() {
	s.debounce.Stop()
}
