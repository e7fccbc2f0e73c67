package search

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDelay = 500 * time.Millisecond

type fakeTimer struct {
	fn       func()
	deadline time.Duration
	stopped  bool
	fired    bool
}

func (f *fakeTimer) Stop() bool {
	wasActive := !f.stopped && !f.fired
	f.stopped = true
	return wasActive
}

// fakeClock fires scheduled callbacks only when advanced.
type fakeClock struct {
	timers []*fakeTimer
	now    time.Duration
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	timer := &fakeTimer{fn: fn, deadline: c.now + d}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now += d
	due := make([]*fakeTimer, 0, len(c.timers))
	for _, timer := range c.timers {
		if !timer.stopped && !timer.fired && timer.deadline <= c.now {
			due = append(due, timer)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].deadline < due[j].deadline })
	for _, timer := range due {
		timer.fired = true
		timer.fn()
	}
}

func (c *fakeClock) Scheduled() int {
	return len(c.timers)
}

type lookupCall struct {
	ctx   context.Context
	query string
}

type recorder struct {
	calls []lookupCall
	mu    sync.Mutex
}

func (r *recorder) Lookup(ctx context.Context, query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, lookupCall{ctx: ctx, query: query})
}

func (r *recorder) Queries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	queries := make([]string, 0, len(r.calls))
	for _, call := range r.calls {
		queries = append(queries, call.query)
	}
	return queries
}

func newTestTrigger() (*Trigger, *fakeClock, *recorder) {
	clock := &fakeClock{}
	rec := &recorder{}
	trigger := NewTrigger(Inline, testDelay, rec.Lookup, WithTimerFunc(clock.AfterFunc))
	return trigger, clock, rec
}

func TestTrigger_IgnoresShortInput(t *testing.T) {
	for _, text := range []string{"", "a", "é"} {
		t.Run(text, func(t *testing.T) {
			trigger, clock, rec := newTestTrigger()

			trigger.OnTextChanged(text)
			clock.Advance(testDelay * 2)

			assert.Zero(t, clock.Scheduled())
			assert.Empty(t, rec.Queries())
		})
	}
}

func TestTrigger_ShortInputDoesNotCancelPending(t *testing.T) {
	trigger, clock, rec := newTestTrigger()

	trigger.OnTextChanged("ab")
	trigger.OnTextChanged("a")
	clock.Advance(testDelay)

	assert.Equal(t, []string{"ab"}, rec.Queries())
}

func TestTrigger_FiresAfterDelay(t *testing.T) {
	trigger, clock, rec := newTestTrigger()

	trigger.OnTextChanged("ab")
	assert.Equal(t, 1, clock.Scheduled())

	clock.Advance(testDelay - time.Millisecond)
	assert.Empty(t, rec.Queries())

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"ab"}, rec.Queries())
	assert.Equal(t, "ab", trigger.LastQuery())
}

func TestTrigger_LatestInputWins(t *testing.T) {
	trigger, clock, rec := newTestTrigger()

	trigger.OnTextChanged("ab")
	clock.Advance(testDelay / 2)
	trigger.OnTextChanged("abc")
	clock.Advance(testDelay / 2)

	assert.Empty(t, rec.Queries(), "first lookup should have been cancelled")

	clock.Advance(testDelay / 2)
	assert.Equal(t, []string{"abc"}, rec.Queries())

	clock.Advance(testDelay * 4)
	assert.Equal(t, []string{"abc"}, rec.Queries())
}

func TestTrigger_CancelsInFlightLookup(t *testing.T) {
	trigger, clock, rec := newTestTrigger()

	trigger.OnTextChanged("sa")
	clock.Advance(testDelay)
	require.Len(t, rec.calls, 1)
	first := rec.calls[0].ctx
	assert.NoError(t, first.Err())

	trigger.OnTextChanged("sas")
	assert.ErrorIs(t, first.Err(), context.Canceled)

	clock.Advance(testDelay)
	require.Len(t, rec.calls, 2)
	assert.NoError(t, rec.calls[1].ctx.Err())
}

func TestTrigger_StaleCallbackIsSuppressed(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorder{}

	// Hold posted callbacks so the timer can fire before the cancel is observed.
	var queued []func()
	exec := ExecutorFunc(func(fn func()) { queued = append(queued, fn) })
	trigger := NewTrigger(exec, testDelay, rec.Lookup, WithTimerFunc(clock.AfterFunc))

	trigger.OnTextChanged("ab")
	clock.Advance(testDelay)
	trigger.OnTextChanged("abc")
	clock.Advance(testDelay)

	require.Len(t, queued, 2)
	for _, fn := range queued {
		fn()
	}

	assert.Equal(t, []string{"abc"}, rec.Queries())
}

func TestTrigger_Close(t *testing.T) {
	trigger, clock, rec := newTestTrigger()

	trigger.OnTextChanged("ab")
	trigger.Close()
	clock.Advance(testDelay)

	trigger.OnTextChanged("abc")
	clock.Advance(testDelay)

	assert.Empty(t, rec.Queries())
	assert.Equal(t, 1, clock.Scheduled())
}

func TestTrigger_WallClockWithLoop(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	defer func() {
		cancel()
		<-loop.Done()
	}()

	got := make(chan string, 4)
	trigger := NewTrigger(loop, 20*time.Millisecond, func(_ context.Context, query string) {
		got <- query
	})
	defer trigger.Close()

	trigger.OnTextChanged("wi")
	trigger.OnTextChanged("win")
	trigger.OnTextChanged("winn")

	select {
	case query := <-got:
		assert.Equal(t, "winn", query)
	case <-time.After(2 * time.Second):
		t.Fatal("lookup never fired")
	}

	select {
	case query := <-got:
		t.Fatalf("unexpected extra lookup %q", query)
	case <-time.After(100 * time.Millisecond):
	}
}
