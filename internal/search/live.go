package search

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/mesh-intelligence/larder/internal/debounce"
)

// Live runs a search each time the typed query settles for the debounce
// window.
type Live struct {
	searcher *Searcher
	query    *debounce.Value[string]

	mu      sync.Mutex
	settled []func(query string)
}

// NewLive wires a debounced query cell to searcher. Searches run with ctx.
func NewLive(ctx context.Context, searcher *Searcher, delay time.Duration, opts ...debounce.Option) *Live {
	l := &Live{
		searcher: searcher,
		query:    debounce.New("", delay, opts...),
	}
	l.query.OnCommit(func(q string) {
		if !searcher.Search(ctx, q) {
			return
		}
		l.mu.Lock()
		hooks := slices.Clone(l.settled)
		l.mu.Unlock()
		for _, fn := range hooks {
			fn(q)
		}
	})
	return l
}

// OnSettled registers fn to run after each debounced search finishes.
// Read the outcome from Searcher. A search overtaken by a newer one does not
// settle.
func (l *Live) OnSettled(fn func(query string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.settled = append(l.settled, fn)
}

// Type records the latest query text.
func (l *Live) Type(query string) {
	l.query.Set(query)
}

// Query returns the last committed query.
func (l *Live) Query() string {
	return l.query.Get()
}

// Flush searches for the pending query now instead of waiting.
func (l *Live) Flush() {
	l.query.Flush()
}

// Wait blocks until a search that already started, and its OnSettled
// hooks, have finished.
func (l *Live) Wait() {
	l.query.Wait()
}

// Close cancels any pending search.
func (l *Live) Close() {
	l.query.Stop()
}

// Searcher returns the underlying Searcher.
func (l *Live) Searcher() *Searcher {
	return l.searcher
}
