// Package loader implements the incremental product feed: a fixed source
// list revealed in batches, gated by explicit triggers with an artificial
// pacing delay.
package loader

import (
	"sync"
	"time"

	"github.com/dejobratic/storefront/internal/catalog/domain"
)

// State names the loader's position in its lifecycle.
type State string

const (
	StateIdle        State = "idle"
	StateLoadingMore State = "loading_more"
	StateExhausted   State = "exhausted"
)

// DefaultBatchSize is the number of products revealed per trigger.
const DefaultBatchSize = 8

// DefaultDelay paces batch appends. It is a UX device, not an I/O boundary.
const DefaultDelay = 500 * time.Millisecond

// Option configures a Loader.
type Option func(*Loader)

// WithBatchSize overrides the per-trigger batch size.
func WithBatchSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

// WithDelay overrides the pacing delay. A non-positive delay makes Trigger
// append the batch synchronously, which tests rely on.
func WithDelay(d time.Duration) Option {
	return func(l *Loader) {
		l.delay = d
	}
}

// Loader reveals successive batches of a fixed product list. Re-entrant
// triggers while a batch is pending are no-ops, and the displayed list
// never contains two entries with the same product ID.
type Loader struct {
	mu        sync.Mutex
	source    []domain.Product
	displayed []domain.Product
	page      int
	state     State
	batchSize int
	delay     time.Duration
	timer     *time.Timer
}

// Snapshot is a read-only view of the loader state.
type Snapshot struct {
	Displayed   []domain.Product `json:"displayed"`
	Page        int              `json:"page"`
	HasMore     bool             `json:"has_more"`
	LoadingMore bool             `json:"loading_more"`
}

// New builds a loader over the given source list, de-duplicated by product
// ID, with the first batch already displayed.
func New(source []domain.Product, opts ...Option) *Loader {
	l := &Loader{
		source:    domain.Dedupe(source),
		batchSize: DefaultBatchSize,
		delay:     DefaultDelay,
	}
	for _, opt := range opts {
		opt(l)
	}

	first := l.batchSize
	if first > len(l.source) {
		first = len(l.source)
	}
	l.displayed = make([]domain.Product, first)
	copy(l.displayed, l.source[:first])
	l.page = 1

	if len(l.source) > first {
		l.state = StateIdle
	} else {
		l.state = StateExhausted
	}
	return l
}

// Snapshot returns the current state. The returned slice is a copy.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	displayed := make([]domain.Product, len(l.displayed))
	copy(displayed, l.displayed)

	return Snapshot{
		Displayed:   displayed,
		Page:        l.page,
		HasMore:     l.state != StateExhausted,
		LoadingMore: l.state == StateLoadingMore,
	}
}

// Trigger requests the next batch. It reports whether the request was
// accepted; triggers while a batch is pending or after exhaustion are
// ignored. With a positive delay the append is scheduled and Trigger
// returns immediately.
func (l *Loader) Trigger() bool {
	l.mu.Lock()
	if l.state != StateIdle {
		l.mu.Unlock()
		return false
	}
	l.state = StateLoadingMore

	if l.delay <= 0 {
		l.mu.Unlock()
		l.appendBatch()
		return true
	}

	l.timer = time.AfterFunc(l.delay, l.appendBatch)
	l.mu.Unlock()
	return true
}

// Stop cancels a pending batch append, if any, and returns the loader to
// idle. A batch that already started appending is not interrupted.
func (l *Loader) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.timer != nil && l.timer.Stop() {
		l.state = StateIdle
	}
	l.timer = nil
}

func (l *Loader) appendBatch() {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := l.page * l.batchSize
	end := start + l.batchSize
	if start > len(l.source) {
		start = len(l.source)
	}
	if end > len(l.source) {
		end = len(l.source)
	}

	if start == end {
		l.state = StateExhausted
		return
	}

	// Guard against re-entrant duplication: skip anything already shown.
	existing := make(map[int]struct{}, len(l.displayed))
	for _, p := range l.displayed {
		existing[p.ID] = struct{}{}
	}
	for _, p := range l.source[start:end] {
		if _, ok := existing[p.ID]; ok {
			continue
		}
		l.displayed = append(l.displayed, p)
	}
	l.page++

	if end < len(l.source) {
		l.state = StateIdle
	} else {
		l.state = StateExhausted
	}
}
