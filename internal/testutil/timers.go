package testutil

import (
	"sync"
	"time"

	"github.com/Veraticus/farm-prefs/internal/search"
)

// ManualTimers collects debounce timers so tests decide when they fire.
type ManualTimers struct {
	pending []*manualTimer
	mu      sync.Mutex
}

type manualTimer struct {
	fn      func()
	delay   time.Duration
	stopped bool
	mu      sync.Mutex
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

// AfterFunc implements search.TimerFunc.
func (m *ManualTimers) AfterFunc(d time.Duration, fn func()) search.Timer {
	timer := &manualTimer{fn: fn, delay: d}
	m.mu.Lock()
	m.pending = append(m.pending, timer)
	m.mu.Unlock()
	return timer
}

// Option returns a trigger option that uses these timers.
func (m *ManualTimers) Option() search.Option {
	return search.WithTimerFunc(m.AfterFunc)
}

// FireAll runs every scheduled timer that has not been stopped and
// returns how many fired.
func (m *ManualTimers) FireAll() int {
	m.mu.Lock()
	timers := m.pending
	m.pending = nil
	m.mu.Unlock()

	fired := 0
	for _, timer := range timers {
		timer.mu.Lock()
		active := !timer.stopped
		timer.stopped = true
		timer.mu.Unlock()

		if active {
			timer.fn()
			fired++
		}
	}
	return fired
}

// Scheduled returns the number of timers waiting to fire.
func (m *ManualTimers) Scheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
