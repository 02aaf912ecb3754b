package hostbridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	verrors "github.com/vango-dev/hostbridge/internal/errors"
	"github.com/vango-dev/hostbridge/internal/registry"
	"github.com/vango-dev/hostbridge/pkg/bridge"
	"github.com/vango-dev/hostbridge/pkg/native"
	"github.com/vango-dev/hostbridge/pkg/reconciler"
	"github.com/vango-dev/hostbridge/pkg/scheduler"
	"github.com/vango-dev/hostbridge/pkg/vdom"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrInvalidElement is returned by Render for a malformed element.
	ErrInvalidElement = errors.New("hostbridge: invalid element")

	// ErrInvalidRoot is returned by Render for a nil root factory.
	ErrInvalidRoot = errors.New("hostbridge: invalid root node type")

	// ErrNoLoop is returned by Run when the renderer was configured with a
	// queue that is not a scheduler.Loop.
	ErrNoLoop = errors.New("hostbridge: queue is not a loop")
)

type tree struct {
	id   string
	inst reconciler.Instance
}

// Renderer mounts element trees into a native backend. It bundles the
// task queue, the node registry and the reconciler of one render target.
//
// Render, Unmount and component updates must run on the goroutine that
// drives the queue, or before Run is called.
type Renderer struct {
	cfg    Config
	logger *slog.Logger
	tracer trace.Tracer
	queue  scheduler.Queue
	reg    *registry.Registry
	rec    *reconciler.Reconciler
	trees  []tree
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Queue == nil {
		cfg.Queue = scheduler.NewLoop()
	}
	if cfg.TracerName == "" {
		cfg.TracerName = DefaultTracerName
	}

	r := &Renderer{
		cfg:    cfg,
		logger: cfg.Logger,
		tracer: otel.Tracer(cfg.TracerName),
		queue:  cfg.Queue,
	}

	regOpts := []registry.Option{
		registry.WithLogger(cfg.Logger),
		registry.WithTracer(r.tracer),
	}
	if cfg.MetricsRegisterer != nil {
		metricOpts := []registry.MetricsOption{registry.WithRegisterer(cfg.MetricsRegisterer)}
		if cfg.MetricsNamespace != "" {
			metricOpts = append(metricOpts, registry.WithNamespace(cfg.MetricsNamespace))
		}
		regOpts = append(regOpts, registry.WithMetrics(registry.NewMetrics(metricOpts...)))
	}
	r.reg = registry.New(cfg.Queue, regOpts...)

	r.rec = reconciler.New(reconciler.WithLogger(cfg.Logger))
	bridge.Inject(r.rec, r.reg, bridge.WithLogger(cfg.Logger), bridge.WithTracer(r.tracer))
	return r
}

// Render mounts el under a new root built by root and returns the public
// instance of the mounted tree: the native node for a host element, the
// component for a composite one.
func (r *Renderer) Render(el *vdom.Element, root native.Factory) (any, error) {
	return r.RenderContext(context.Background(), el, root)
}

// RenderContext is Render with a context passed to every mount.
// Invalid input is rejected before anything is mutated.
func (r *Renderer) RenderContext(ctx context.Context, el *vdom.Element, root native.Factory) (handle any, err error) {
	if !vdom.IsValidElement(el) {
		return nil, verrors.New("E001").Wrap(ErrInvalidElement)
	}
	if root == nil {
		return nil, verrors.New("E002").Wrap(ErrInvalidRoot)
	}

	ctx, span := r.tracer.Start(ctx, "hostbridge.render",
		trace.WithAttributes(attribute.String("hostbridge.element", el.Tag)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	id := r.rec.CreateRootID()
	if _, err := r.reg.SetRoot(root); err != nil {
		return nil, err
	}
	inst, err := r.rec.Instantiate(el)
	if err != nil {
		return nil, err
	}

	err = r.rec.PerformBatched(func(tx *reconciler.Transaction) error {
		return r.rec.Mount(inst, id, tx, ctx)
	})
	if err != nil {
		r.logger.Error("hostbridge: render failed", "id", id, "element", el.Tag, "error", err)
		return nil, err
	}

	r.trees = append(r.trees, tree{id: id, inst: inst})
	r.logger.Debug("hostbridge: rendered", "id", id, "element", el.Tag, "nodes", r.reg.Len())
	return inst.PublicInstance(), nil
}

// Unmount tears down every tree mounted by r, most recent first.
func (r *Renderer) Unmount() error {
	trees := r.trees
	r.trees = nil
	return r.rec.PerformBatched(func(*reconciler.Transaction) error {
		var errs []error
		for i := len(trees) - 1; i >= 0; i-- {
			if err := trees[i].inst.UnmountComponent(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// Post runs fn on the renderer's queue. Timers and other goroutines use
// it to re-enter the tree.
func (r *Renderer) Post(fn func()) {
	r.queue.Post(fn)
}

// Run drives the renderer's loop until ctx is done or Close is called.
func (r *Renderer) Run(ctx context.Context) error {
	loop, ok := r.queue.(*scheduler.Loop)
	if !ok {
		return ErrNoLoop
	}
	return loop.Run(ctx)
}

// Close stops a loop started by Run.
func (r *Renderer) Close() {
	if loop, ok := r.queue.(*scheduler.Loop); ok {
		loop.Close()
	}
}

// Registry returns the node registry.
func (r *Renderer) Registry() *registry.Registry {
	return r.reg
}

// Reconciler returns the reconciler.
func (r *Renderer) Reconciler() *reconciler.Reconciler {
	return r.rec
}

// Queue returns the task queue.
func (r *Renderer) Queue() scheduler.Queue {
	return r.queue
}

// Config returns the effective configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

var (
	defaultMu       sync.Mutex
	defaultRenderer *Renderer
)

// Default returns the process renderer used by the package-level Render
// and Run, creating it on first use.
func Default() *Renderer {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRenderer == nil {
		defaultRenderer = New()
	}
	return defaultRenderer
}

// Render mounts el with the default renderer.
func Render(el *vdom.Element, root native.Factory) (any, error) {
	return Default().Render(el, root)
}

// Run drives the default renderer's loop.
func Run(ctx context.Context) error {
	return Default().Run(ctx)
}
