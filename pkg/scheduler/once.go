package scheduler

import "sync"

// Once runs fn at most once per tick of its queue, however many times it
// is requested before the tick.
type Once struct {
	mu      sync.Mutex
	queue   Queue
	fn      func()
	pending bool
	gen     uint64
}

// NewOnce binds fn to queue.
func NewOnce(queue Queue, fn func()) *Once {
	return &Once{queue: queue, fn: fn}
}

// Request schedules fn unless a run is already pending.
// It reports whether a new task was posted.
func (o *Once) Request() bool {
	o.mu.Lock()
	if o.pending {
		o.mu.Unlock()
		return false
	}
	o.pending = true
	gen := o.gen
	o.mu.Unlock()

	o.queue.Post(func() {
		o.mu.Lock()
		if o.gen != gen || !o.pending {
			o.mu.Unlock()
			return
		}
		o.pending = false
		o.mu.Unlock()
		o.fn()
	})
	return true
}

// Cancel abandons a pending run.
func (o *Once) Cancel() {
	o.mu.Lock()
	o.gen++
	o.pending = false
	o.mu.Unlock()
}

// Pending reports whether a run is scheduled.
func (o *Once) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending
}
