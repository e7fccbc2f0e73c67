package search

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"
)

// MinQueryLength is the shortest input, in characters, that triggers a lookup.
const MinQueryLength = 2

// Lookup starts a region search for query. It must not block the executor;
// ctx is cancelled once a newer input supersedes the search.
type Lookup func(ctx context.Context, query string)

// Timer is a scheduled callback that can be stopped.
type Timer interface {
	Stop() bool
}

// TimerFunc schedules fn to run after d on its own goroutine.
type TimerFunc func(d time.Duration, fn func()) Timer

func afterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithTimerFunc replaces the wall-clock timer.
func WithTimerFunc(fn TimerFunc) Option {
	return func(t *Trigger) {
		t.after = fn
	}
}

type pendingLookup struct {
	ctx    context.Context
	timer  Timer
	cancel context.CancelFunc
	query  string
}

// Trigger debounces text changes into region lookups.
type Trigger struct {
	exec      Executor
	lookup    Lookup
	after     TimerFunc
	pending   *pendingLookup
	lastQuery string
	delay     time.Duration
	mu        sync.Mutex
	closed    bool
}

// NewTrigger creates a trigger that calls lookup on exec once input has
// been quiet for delay.
func NewTrigger(exec Executor, delay time.Duration, lookup Lookup, opts ...Option) *Trigger {
	t := &Trigger{
		exec:   exec,
		lookup: lookup,
		after:  afterFunc,
		delay:  delay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnTextChanged handles a new value of the search field.
func (t *Trigger) OnTextChanged(text string) {
	if utf8.RuneCountInString(text) < MinQueryLength {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}

	t.cancelPendingLocked()

	ctx, cancel := context.WithCancel(context.Background())
	p := &pendingLookup{
		ctx:    ctx,
		cancel: cancel,
		query:  text,
	}
	p.timer = t.after(t.delay, func() {
		t.exec.Post(func() { t.fire(p) })
	})
	t.pending = p

	slog.Debug("scheduled region lookup", "query", text, "delay", t.delay)
}

// Close unregisters the lookup callback and cancels anything pending.
// Later text changes are ignored.
func (t *Trigger) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	t.cancelPendingLocked()
	t.lookup = nil
}

// LastQuery returns the most recent query that reached the lookup.
func (t *Trigger) LastQuery() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastQuery
}

func (t *Trigger) fire(p *pendingLookup) {
	t.mu.Lock()
	if t.closed || t.pending != p || p.ctx.Err() != nil {
		t.mu.Unlock()
		return
	}
	lookup := t.lookup
	t.lastQuery = p.query
	t.mu.Unlock()

	if lookup == nil {
		return
	}

	slog.Debug("firing region lookup", "query", p.query)
	lookup(p.ctx, p.query)
}

// cancelPendingLocked stops the pending timer and cancels its lookup
// context. Whether the timer had already fired is not checked.
func (t *Trigger) cancelPendingLocked() {
	if t.pending == nil {
		return
	}
	if t.pending.timer != nil {
		t.pending.timer.Stop()
	}
	t.pending.cancel()
	slog.Debug("cancelled region lookup", "query", t.pending.query)
	t.pending = nil
}
