package scheduler

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Run when the loop was closed.
var ErrClosed = errors.New("scheduler: loop closed")

// Queue accepts tasks for later execution.
type Queue interface {
	Post(task func())
}

// Loop is a single-goroutine task queue. Post is safe to call from any
// goroutine; tasks run sequentially on the goroutine calling Run.
type Loop struct {
	mu     sync.Mutex
	tasks  []func()
	wake   chan struct{}
	closed bool
	ticks  uint64
}

// NewLoop creates an idle loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues task. Tasks posted after Close are dropped.
func (l *Loop) Post(task func()) {
	if task == nil {
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.tasks = append(l.tasks, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes tasks until ctx is done or the loop is closed.
// Every batch of tasks drained at once is one tick.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if batch := l.drain(); len(batch) > 0 {
			for _, task := range batch {
				task()
			}
			continue
		}

		l.mu.Lock()
		closed := l.closed
		l.mu.Unlock()
		if closed {
			return ErrClosed
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Close stops the loop once the pending tasks have run.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Ticks returns the number of batches executed so far.
func (l *Loop) Ticks() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return nil
	}
	batch := l.tasks
	l.tasks = nil
	l.ticks++
	return batch
}

// Manual is a Queue that only runs tasks when flushed.
type Manual struct {
	tasks []func()
}

// NewManual creates an empty manual queue.
func NewManual() *Manual {
	return &Manual{}
}

// Post enqueues task.
func (m *Manual) Post(task func()) {
	if task != nil {
		m.tasks = append(m.tasks, task)
	}
}

// Tick runs the tasks queued before the call and returns how many ran.
// Tasks posted while ticking wait for the next tick.
func (m *Manual) Tick() int {
	batch := m.tasks
	m.tasks = nil
	for _, task := range batch {
		task()
	}
	return len(batch)
}

// Flush ticks until the queue is empty and returns the number of tasks run.
func (m *Manual) Flush() int {
	n := 0
	for len(m.tasks) > 0 {
		n += m.Tick()
	}
	return n
}

// Len returns the number of queued tasks.
func (m *Manual) Len() int {
	return len(m.tasks)
}
