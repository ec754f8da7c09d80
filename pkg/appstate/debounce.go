package appstate

import (
	"sync"
	"time"
)

// DefaultDebounceWindow is the quiescence window before a prompt edit is
// persisted.
const DefaultDebounceWindow = 500 * time.Millisecond

// Debouncer runs at most one pending callback per key. Scheduling a key
// that is already pending cancels the earlier callback and restarts the
// window, so only the last callback runs, once, after the key has been
// quiet for the full window.
//
// Callbacks for the same key never overlap. A callback that comes due while
// an earlier one for its key is still running waits behind it, and is
// itself replaced if the key is rescheduled in the meantime.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	idle    *sync.Cond // signalled when running drops to zero
	pending map[string]*debounceEntry
	active  map[string]bool
	running int
	stopped bool
}

type debounceEntry struct {
	timer *time.Timer
	fn    func()

	// queued marks an entry that came due while its key was active.
	queued bool
}

// NewDebouncer creates a Debouncer with the given window.
func NewDebouncer(window time.Duration) *Debouncer {
	d := &Debouncer{
		window:  window,
		pending: make(map[string]*debounceEntry),
		active:  make(map[string]bool),
	}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Schedule arranges for fn to run after the window unless key is
// rescheduled, cancelled, or flushed first. It returns false after Stop.
func (d *Debouncer) Schedule(key string, fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}

	e := &debounceEntry{fn: fn}
	e.timer = time.AfterFunc(d.window, func() { d.fire(key, e) })
	d.pending[key] = e
	return true
}

// fire runs e unless it has been replaced or removed since it was
// scheduled. Stop can lose the race against a timer that already fired, so
// the identity check is what keeps a stale callback from running.
func (d *Debouncer) fire(key string, e *debounceEntry) {
	d.mu.Lock()
	if d.pending[key] != e {
		d.mu.Unlock()
		return
	}
	if d.active[key] {
		e.queued = true
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.active[key] = true
	d.running++
	d.mu.Unlock()

	d.run(key, e)
}

// run executes e and then any entry for key that queued up behind it. The
// caller must have marked key active and counted it in running.
func (d *Debouncer) run(key string, e *debounceEntry) {
	for e != nil {
		e.fn()

		d.mu.Lock()
		if next, ok := d.pending[key]; ok && next.queued {
			delete(d.pending, key)
			e = next
		} else {
			e = nil
			delete(d.active, key)
			d.running--
			if d.running == 0 {
				d.idle.Broadcast()
			}
		}
		d.mu.Unlock()
	}
}

// Cancel drops the pending callback for key. It reports whether one was
// pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.pending[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(d.pending, key)
	return true
}

// Pending returns the number of scheduled callbacks.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush runs every pending callback now and waits for callbacks that
// were already running. Idle keys run on the calling goroutine; a key with
// a callback in flight runs its latest entry right after that callback.
func (d *Debouncer) Flush() {
	type keyed struct {
		key string
		e   *debounceEntry
	}

	d.mu.Lock()
	ready := make([]keyed, 0, len(d.pending))
	for key, e := range d.pending {
		e.timer.Stop()
		if d.active[key] {
			e.queued = true
			continue
		}
		delete(d.pending, key)
		d.active[key] = true
		ready = append(ready, keyed{key: key, e: e})
	}
	d.running += len(ready)
	d.mu.Unlock()

	for _, k := range ready {
		d.run(k.key, k.e)
	}

	d.mu.Lock()
	for d.running > 0 {
		d.idle.Wait()
	}
	d.mu.Unlock()
}

// Stop flushes pending callbacks and rejects further scheduling.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	d.Flush()
}
