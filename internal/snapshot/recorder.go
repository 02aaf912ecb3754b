package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/hostbridge/internal/registry"
	"github.com/vango-dev/hostbridge/pkg/native"
)

// sinkTimeout bounds a single sink write.
const sinkTimeout = 10 * time.Second

// Recorder takes a snapshot after every render pass of a registry.
type Recorder struct {
	reg    *registry.Registry
	logger *slog.Logger
	sinks  []Sink

	mu        sync.RWMutex
	seq       uint64
	latest    Snapshot
	listeners map[uint64]func(Snapshot)
	nextSub   uint64
}

// NewRecorder creates a recorder for reg. Call Attach to start recording.
func NewRecorder(reg *registry.Registry, logger *slog.Logger, sinks ...Sink) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		reg:       reg,
		logger:    logger,
		sinks:     sinks,
		listeners: make(map[uint64]func(Snapshot)),
	}
}

// Attach registers the recorder's render hook.
func (r *Recorder) Attach() {
	r.reg.OnRender(func(_ native.Node, err error) {
		r.Record(err)
	})
}

// Record takes a snapshot now, stores it as the latest and delivers it to
// the sinks and listeners. Sink failures are logged.
func (r *Recorder) Record(renderErr error) Snapshot {
	snap := Take(r.reg)
	if renderErr != nil {
		snap.Error = renderErr.Error()
	}

	r.mu.Lock()
	r.seq++
	snap.Seq = r.seq
	r.latest = snap
	listeners := make([]func(Snapshot), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, sink := range r.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		if err := sink.Write(ctx, snap); err != nil {
			r.logger.Warn("snapshot: sink write failed", "seq", snap.Seq, "error", err)
		}
		cancel()
	}
	for _, fn := range listeners {
		fn(snap)
	}
	return snap
}

// Latest returns the most recent snapshot.
func (r *Recorder) Latest() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Subscribe registers fn to receive every new snapshot. The returned
// function removes the subscription.
func (r *Recorder) Subscribe(fn func(Snapshot)) (cancel func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}
