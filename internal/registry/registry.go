package registry

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	verrors "github.com/vango-dev/hostbridge/internal/errors"
	"github.com/vango-dev/hostbridge/pkg/native"
	"github.com/vango-dev/hostbridge/pkg/scheduler"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "hostbridge"

var (
	// ErrMissingParent is returned when the parent of an id is not registered.
	ErrMissingParent = errors.New("registry: parent not registered")

	// ErrNoRoot is returned when a top-level id is resolved before SetRoot.
	ErrNoRoot = errors.New("registry: no root installed")

	// ErrNilRoot is returned when SetRoot gets a nil factory or the factory
	// returns nil.
	ErrNilRoot = errors.New("registry: nil root")
)

// RenderHook is called after every render pass with the root and the
// pass result.
type RenderHook func(root native.Node, err error)

// Registry is the id-indexed store of live native nodes plus the active
// root and its render trigger.
type Registry struct {
	mu      sync.RWMutex
	nodes   map[string]native.Node
	root    native.Node
	trigger *scheduler.Once
	hooks   []RenderHook
	passes  uint64
	lastErr error

	queue   scheduler.Queue
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. nil means slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithTracer sets the tracer. The default resolves the "hostbridge"
// tracer from the global OpenTelemetry provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Registry) {
		r.tracer = tracer
	}
}

// New creates an empty registry whose render passes run on queue.
func New(queue scheduler.Queue, opts ...Option) *Registry {
	r := &Registry{
		nodes: make(map[string]native.Node),
		queue: queue,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	return r
}

// SetRoot constructs a new root node and replaces the previous root and
// its trigger. A render pending for the previous root is abandoned.
// Registered nodes are kept.
func (r *Registry) SetRoot(factory native.Factory) (*Registry, error) {
	if factory == nil {
		return r, verrors.New("E002").Wrap(ErrNilRoot)
	}
	root := factory(nil)
	if root == nil {
		return r, verrors.New("E002").
			WithDetail("The root factory returned nil.").
			Wrap(ErrNilRoot)
	}

	r.mu.Lock()
	if r.trigger != nil {
		r.trigger.Cancel()
	}
	r.root = root
	r.trigger = scheduler.NewOnce(r.queue, func() { r.renderPass(root) })
	r.mu.Unlock()

	r.logger.Debug("registry: root installed", "tag", native.TagOf(root))
	return r, nil
}

// Root returns the active root, or nil.
func (r *Registry) Root() native.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.root
}

// Add registers node under id, replacing any node already there.
func (r *Registry) Add(id string, node native.Node) *Registry {
	r.mu.Lock()
	r.nodes[id] = node
	n := len(r.nodes)
	r.mu.Unlock()

	r.setGauge(n)
	return r
}

// Get returns the node registered under id.
func (r *Registry) Get(id string) (native.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	node, ok := r.nodes[id]
	return node, ok
}

// Drop removes id. Dropping an absent id is a no-op.
func (r *Registry) Drop(id string) *Registry {
	r.mu.Lock()
	delete(r.nodes, id)
	n := len(r.nodes)
	r.mu.Unlock()

	r.setGauge(n)
	return r
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// IDs returns the registered ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.nodes))
	for id := range r.nodes {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// ParentID returns the id of the parent of id. It returns "" for a
// top-level id, whose parent is the root, and for an id without a dot.
func ParentID(id string) string {
	i := strings.LastIndexByte(id, '.')
	if i < 0 || strings.IndexByte(id, '.') == i {
		return ""
	}
	return id[:i]
}

// IsTopLevel reports whether id has exactly one dot.
func IsTopLevel(id string) bool {
	return strings.Count(id, ".") == 1
}

// GetParent returns the node that id is mounted under: the root for a
// top-level id, the node registered at ParentID(id) otherwise.
func (r *Registry) GetParent(id string) (native.Node, error) {
	if IsTopLevel(id) {
		root := r.Root()
		if root == nil {
			return nil, verrors.New("E021").WithNode(id, "").Wrap(ErrNoRoot)
		}
		return root, nil
	}

	parentID := ParentID(id)
	if parentID == "" {
		return nil, verrors.New("E020").
			WithNode(id, "").
			WithDetail("Malformed id " + id + ": ids have the form root.<n>[.<name>...].").
			Wrap(ErrMissingParent)
	}
	parent, ok := r.Get(parentID)
	if !ok {
		return nil, verrors.New("E020").
			WithNode(id, "").
			WithSuggestion("Mount " + parentID + " before its children").
			Wrap(ErrMissingParent)
	}
	return parent, nil
}

// ScheduleRender requests a render pass of the root on the next tick.
// Requests made before the pass runs are coalesced. Without a root this
// is a no-op.
func (r *Registry) ScheduleRender() {
	r.mu.RLock()
	trigger := r.trigger
	r.mu.RUnlock()
	if trigger == nil {
		return
	}

	posted := trigger.Request()
	if r.metrics != nil {
		r.metrics.RenderRequests.Inc()
		if !posted {
			r.metrics.RenderCoalesced.Inc()
		}
	}
}

// RenderPending reports whether a render pass is scheduled.
func (r *Registry) RenderPending() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.trigger != nil && r.trigger.Pending()
}

// OnRender registers a hook called after every render pass.
func (r *Registry) OnRender(hook RenderHook) {
	r.mu.Lock()
	r.hooks = append(r.hooks, hook)
	r.mu.Unlock()
}

// Passes returns the number of render passes run so far.
func (r *Registry) Passes() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.passes
}

// LastError returns the error of the most recent render pass, or nil.
func (r *Registry) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

func (r *Registry) renderPass(root native.Node) {
	_, span := r.tracer.Start(context.Background(), "registry.render",
		trace.WithAttributes(
			attribute.String("hostbridge.root", native.TagOf(root)),
			attribute.Int("hostbridge.nodes", r.Len()),
		),
	)
	defer span.End()

	start := time.Now()
	err := root.Render()
	elapsed := time.Since(start)

	if err != nil {
		err = verrors.New("E051").Wrap(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error("registry: render pass failed", "error", err, "duration", elapsed)
	} else {
		span.SetStatus(codes.Ok, "")
		r.logger.Debug("registry: render pass", "duration", elapsed)
	}

	if r.metrics != nil {
		r.metrics.RenderPasses.Inc()
		r.metrics.RenderDuration.Observe(elapsed.Seconds())
		if err != nil {
			r.metrics.RenderErrors.Inc()
		}
	}

	r.mu.Lock()
	r.passes++
	r.lastErr = err
	hooks := append([]RenderHook(nil), r.hooks...)
	r.mu.Unlock()

	for _, hook := range hooks {
		hook(root, err)
	}
}

func (r *Registry) setGauge(n int) {
	if r.metrics != nil {
		r.metrics.NodesRegistered.Set(float64(n))
	}
}
