package search

import (
	"sync"
	"time"
)

// Debouncer runs the most recent function handed to Call once no further
// call has arrived for the wait window. At most one invocation is pending.
type Debouncer struct {
	mu      sync.Mutex
	wait    time.Duration
	timer   *time.Timer
	pending func()
	seq     uint64
	closed  bool
	running sync.WaitGroup
}

func NewDebouncer(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Call cancels any pending invocation and schedules fn.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.seq++
	seq := d.seq
	d.pending = fn
	d.timer = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		// a newer Call, Stop or Flush raced the timer
		if d.closed || seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.pending = nil
		d.running.Add(1)
		d.mu.Unlock()

		defer d.running.Done()
		fn()
	})
}

// take removes the pending invocation and returns it.
func (d *Debouncer) take() func() {
	if d.timer == nil {
		return nil
	}
	d.seq++
	d.timer.Stop()
	d.timer = nil
	fn := d.pending
	d.pending = nil
	return fn
}

// Stop cancels the pending invocation, if any, and reports whether one was
// cancelled.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.take() != nil
}

// Flush runs the pending invocation now instead of waiting out the window,
// then waits for any invocation already running to return.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.take()
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
	d.running.Wait()
}

// Pending reports whether an invocation is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Close stops the pending invocation, ignores every later Call and waits for
// an invocation already running to return. It must not be called from inside
// a debounced function.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.take()
	d.closed = true
	d.mu.Unlock()

	d.running.Wait()
}
