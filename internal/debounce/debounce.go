// Package debounce provides a cancellable, coalescing timer handle.
//
// A Debouncer runs its callback once after the configured quiet period has
// elapsed since the most recent Schedule call. Schedule, Cancel and Flush
// are the only entry points; a timer that fires after Cancel or Flush has
// been called never runs the callback.
package debounce

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer a Debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d. It matches time.AfterFunc and can be
// replaced in tests.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithAfterFunc replaces the timer source.
func WithAfterFunc(af AfterFunc) Option {
	return func(d *Debouncer) {
		d.afterFunc = af
	}
}

// Debouncer coalesces bursts of Schedule calls into one callback.
type Debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	fn        func()
	afterFunc AfterFunc
	timer     Timer
	// gen identifies the live timer; callbacks from older timers are ignored.
	gen     uint64
	pending bool
}

// New creates a Debouncer that calls fn after delay of inactivity.
func New(delay time.Duration, fn func(), opts ...Option) *Debouncer {
	d := &Debouncer{
		delay:     delay,
		fn:        fn,
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Schedule (re)starts the quiet period. Any pending run is pushed back.
func (d *Debouncer) Schedule() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
	gen := d.gen
	d.pending = true
	d.timer = d.afterFunc(d.delay, func() { d.fire(gen) })
}

// Cancel drops the pending run, if any, and reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	was := d.pending
	d.stopLocked()
	return was
}

// Flush runs the pending callback immediately on the calling goroutine and
// reports whether there was one. Nothing runs when nothing is pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	d.stopLocked()
	d.mu.Unlock()

	d.fn()
	return true
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}

// stopLocked must be called with d.mu held.
func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	// Invalidate a callback that already started but has not taken the lock.
	d.gen++
}
