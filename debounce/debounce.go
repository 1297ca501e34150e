// Package debounce coalesces bursts of triggers into a single delayed call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs only the most recent of a burst of triggered calls, once no
// newer trigger has arrived for the configured delay. Superseded calls are
// dropped silently. Calls never overlap.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending func()
	stopped bool

	// run serializes the calls themselves.
	run sync.Mutex
}

// New returns a Debouncer with the given delay. A delay of zero still defers
// the call to another goroutine.
func New(delay time.Duration) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay}
}

// Delay returns the quiet period the Debouncer waits for.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules fn, replacing any call that is still waiting and
// restarting the countdown.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(gen)
	})
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()

	d.run.Lock()
	defer d.run.Unlock()
	fn()
}

// Flush runs the waiting call immediately on the calling goroutine. It
// reports whether there was one.
func (d *Debouncer) Flush() bool {
	fn := d.take()
	if fn == nil {
		return false
	}
	d.run.Lock()
	defer d.run.Unlock()
	fn()
	return true
}

// Cancel drops the waiting call, if any.
func (d *Debouncer) Cancel() {
	d.take()
}

// Stop cancels the waiting call and ignores all future triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.take()
}

func (d *Debouncer) take() func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	fn := d.pending
	d.pending = nil
	return fn
}
