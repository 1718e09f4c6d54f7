// Package debounce settles rapidly changing search input: only a query that
// stayed unchanged for the quiet period is searched, and only the newest
// settled result is kept.
package debounce

import (
	"strings"
	"sync"
	"time"

	"github.com/okian/tsuri/internal/domain/search"
)

// DefaultDelay is the quiet period before a query is searched.
const DefaultDelay = 300 * time.Millisecond

// Searcher answers a settled query.
type Searcher interface {
	Search(query string) search.Grouped
}

// State is a snapshot of the input and its result.
type State struct {
	Input    string         // visible input, updated on every keystroke
	Loading  bool           // a query is waiting to settle
	Result   search.Grouped // result of the last settled query
	Searched bool           // Result belongs to a settled, non-empty query
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithDelay overrides the quiet period.
func WithDelay(d time.Duration) Option {
	return func(db *Debouncer) {
		if d > 0 {
			db.delay = d
		}
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(db *Debouncer) {
		if c != nil {
			db.clock = c
		}
	}
}

// WithOnSettle registers a callback invoked with the new state after every
// settled query. It runs outside the lock.
func WithOnSettle(fn func(State)) Option {
	return func(db *Debouncer) { db.onSettle = fn }
}

// Debouncer delays searches until input is idle. It is safe for concurrent use.
type Debouncer struct {
	mu       sync.Mutex
	searcher Searcher
	clock    Clock
	delay    time.Duration
	onSettle func(State)

	timer  Timer
	gen    uint64
	state  State
	closed bool
}

// New creates a Debouncer around s.
func New(s Searcher, opts ...Option) *Debouncer {
	db := &Debouncer{
		searcher: s,
		clock:    RealClock(),
		delay:    DefaultDelay,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Update records a keystroke. The previous pending search is cancelled. A
// blank query resets to idle immediately without a loading state.
func (db *Debouncer) Update(query string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return
	}

	db.stopLocked()
	db.gen++
	db.state.Input = query

	if strings.TrimSpace(query) == "" {
		db.state.Loading = false
		db.state.Searched = false
		db.state.Result = search.Grouped{}
		return
	}

	db.state.Loading = true
	gen := db.gen
	db.timer = db.clock.AfterFunc(db.delay, func() { db.settle(gen, query) })
}

// Reset clears the input and drops any pending search.
func (db *Debouncer) Reset() { db.Update("") }

func (db *Debouncer) settle(gen uint64, query string) {
	db.mu.Lock()
	if db.closed || gen != db.gen {
		db.mu.Unlock()
		return
	}
	db.timer = nil
	db.mu.Unlock()

	res := db.searcher.Search(query)

	db.mu.Lock()
	if db.closed || gen != db.gen {
		db.mu.Unlock()
		return
	}
	db.state.Result = res
	db.state.Loading = false
	db.state.Searched = true
	st := db.state
	cb := db.onSettle
	db.mu.Unlock()

	if cb != nil {
		cb(st)
	}
}

// State returns the current snapshot.
func (db *Debouncer) State() State {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.state
}

// Pending reports whether a search timer is scheduled.
func (db *Debouncer) Pending() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.timer != nil
}

// Close stops the pending timer. Later updates are ignored. Safe to call
// more than once.
func (db *Debouncer) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return
	}
	db.stopLocked()
	db.gen++
	db.closed = true
}

func (db *Debouncer) stopLocked() {
	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
}
