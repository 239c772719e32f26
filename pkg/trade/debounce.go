package trade

import (
	"sync"
	"time"
)

// DefaultDebounceWindow matches the UI's 500 ms edit debounce.
const DefaultDebounceWindow = 500 * time.Millisecond

// Debouncer coalesces rapid successive edits: only the newest value observed
// after the window elapses without a further edit is delivered. Every edit
// within the window cancels and restarts the timer. Close cancels any pending
// fire with no side effects.
//
// Each edit bumps a generation counter which is passed through to the
// callback, so callers can discard results of superseded edits.
type Debouncer struct {
	window time.Duration
	fn     func(value string, generation uint64)

	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	closed bool
}

// NewDebouncer creates a debouncer. A non-positive window falls back to
// DefaultDebounceWindow.
func NewDebouncer(window time.Duration, fn func(value string, generation uint64)) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{window: window, fn: fn}
}

// Trigger records an edit and (re)starts the quiet window. Returns the edit's
// generation.
func (d *Debouncer) Trigger(value string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return d.gen
	}

	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		stale := d.closed || gen != d.gen
		d.mu.Unlock()
		if stale {
			return
		}
		d.fn(value, gen)
	})
	return gen
}

// Generation returns the newest edit's generation.
func (d *Debouncer) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Close cancels any pending fire. Further triggers are ignored.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
