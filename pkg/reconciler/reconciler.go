package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	verrors "github.com/vango-dev/hostbridge/internal/errors"
	"github.com/vango-dev/hostbridge/pkg/vdom"
)

var (
	// ErrNotInjected is returned when a host element is instantiated before
	// a generic component implementation was injected.
	ErrNotInjected = errors.New("reconciler: generic component not injected")

	// ErrInvalidElement is returned when a value is not a well-formed element.
	ErrInvalidElement = errors.New("reconciler: invalid element")

	// ErrNilComponent is returned when a composite constructor returns nil.
	ErrNilComponent = errors.New("reconciler: component constructor returned nil")
)

// Instance is the lifecycle contract of a mounted element.
//
// UnmountComponent is also called after a failed MountComponent and must
// release whatever that mount acquired. An instance that acquired nothing
// returns an error, which the caller discards.
type Instance interface {
	MountComponent(id string, tx *Transaction, ctx context.Context) error
	ReceiveComponent(next *vdom.Element, tx *Transaction, ctx context.Context) error
	UnmountComponent() error
	PublicInstance() any
	Element() *vdom.Element
}

// GenericFactory constructs the instance for a host element.
type GenericFactory func(el *vdom.Element) Instance

// Mount mounts inst under id. When the mount fails, the part of inst that
// did mount is unmounted again before the error is returned, so a failed
// mount leaves no node behind. Lifecycle order errors (E031) are returned
// as is: the instance was never this call's to roll back.
func (r *Reconciler) Mount(inst Instance, id string, tx *Transaction, ctx context.Context) error {
	err := inst.MountComponent(id, tx, ctx)
	if err == nil || verrors.CodeOf(err) == "E031" {
		return err
	}
	if uerr := inst.UnmountComponent(); uerr != nil {
		r.logger.Debug("reconciler: rollback after failed mount", "id", id, "error", uerr)
	}
	return err
}

// Environment receives notifications about structural changes the
// reconciler applied. ProcessChildrenUpdates runs before any child is
// unmounted or mounted; ReplaceNodeWithMarkup runs after a composite
// mounted a rendered element of a new type under its id.
type Environment interface {
	ProcessChildrenUpdates(parentID string, patches []vdom.Patch)
	ReplaceNodeWithMarkup(id string, el *vdom.Element)
}

// Transaction is the state shared by all lifecycle calls of one batch.
type Transaction struct {
	depth int
	ops   int
}

// Depth returns the batch nesting depth.
func (tx *Transaction) Depth() int {
	return tx.depth
}

// Ops returns the number of lifecycle operations performed in the batch.
func (tx *Transaction) Ops() int {
	return tx.ops
}

func (tx *Transaction) record() {
	if tx != nil {
		tx.ops++
	}
}

// Reconciler instantiates elements and schedules composite updates.
type Reconciler struct {
	generic GenericFactory
	env     Environment
	logger  *slog.Logger
	onError func(error)

	tx      *Transaction
	dirty   []*composite
	rootSeq uint64
	order   uint64
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger. nil means slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// WithErrorHandler sets the handler for errors raised by updates that run
// outside a caller's batch (ForceUpdate from timers or event handlers).
func WithErrorHandler(fn func(error)) Option {
	return func(r *Reconciler) {
		r.onError = fn
	}
}

// New creates a Reconciler with no generic component injected.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.onError == nil {
		r.onError = func(err error) {
			r.logger.Error("reconciler: update failed", "error", err)
		}
	}
	r.env = &defaultEnvironment{logger: r.logger}
	return r
}

// Injection returns the extension points of r.
func (r *Reconciler) Injection() Injection {
	return Injection{r: r}
}

// Injected reports whether a generic component implementation is installed.
func (r *Reconciler) Injected() bool {
	return r.generic != nil
}

// Environment returns the installed environment.
func (r *Reconciler) Environment() Environment {
	return r.env
}

// CreateRootID returns a fresh top-level id of the form "root.<n>".
func (r *Reconciler) CreateRootID() string {
	id := fmt.Sprintf("root.%d", r.rootSeq)
	r.rootSeq++
	return id
}

// Instantiate creates the internal instance for el.
func (r *Reconciler) Instantiate(el *vdom.Element) (Instance, error) {
	if !vdom.IsValidElement(el) {
		return nil, verrors.New("E001").Wrap(ErrInvalidElement)
	}
	if el.Kind == vdom.KindComposite {
		return &composite{r: r, element: el}, nil
	}
	if r.generic == nil {
		return nil, verrors.New("E030").WithNode("", el.Tag).Wrap(ErrNotInjected)
	}
	return r.generic(el), nil
}

// PerformBatched runs fn inside a batch. Batches nest; queued composite
// updates are flushed when the outermost batch completes.
func (r *Reconciler) PerformBatched(fn func(tx *Transaction) error) (err error) {
	if r.tx == nil {
		r.tx = &Transaction{}
	}
	tx := r.tx
	tx.depth++

	defer func() {
		tx.depth--
		if tx.depth > 0 {
			return
		}
		if flushErr := r.flush(tx); flushErr != nil {
			err = errors.Join(err, flushErr)
		}
		r.tx = nil
	}()

	return fn(tx)
}

// InBatch reports whether a batch is open.
func (r *Reconciler) InBatch() bool {
	return r.tx != nil
}

// enqueueUpdate queues c for re-rendering, opening a batch if none is open.
func (r *Reconciler) enqueueUpdate(c *composite) {
	if r.tx != nil {
		for _, d := range r.dirty {
			if d == c {
				return
			}
		}
		r.dirty = append(r.dirty, c)
		return
	}

	err := r.PerformBatched(func(*Transaction) error {
		r.enqueueUpdate(c)
		return nil
	})
	if err != nil {
		r.onError(err)
	}
}

// flush re-renders dirty composites, parents before children. Updates
// requested while flushing are processed in the same flush.
func (r *Reconciler) flush(tx *Transaction) error {
	var errs []error
	for len(r.dirty) > 0 {
		batch := r.dirty
		r.dirty = nil
		sort.SliceStable(batch, func(i, j int) bool {
			return batch[i].order < batch[j].order
		})

		r.logger.Debug("reconciler: flushing updates", "count", len(batch))
		for _, c := range batch {
			if !c.mounted {
				continue
			}
			if err := c.update(tx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (r *Reconciler) nextOrder() uint64 {
	r.order++
	return r.order
}

// Injection exposes the named extension points of a Reconciler.
type Injection struct {
	r *Reconciler
}

// InjectGenericComponent installs the factory used for host elements.
func (i Injection) InjectGenericComponent(f GenericFactory) {
	i.r.generic = f
}

// InjectEnvironment installs the environment. nil restores the default.
func (i Injection) InjectEnvironment(env Environment) {
	if env == nil {
		env = &defaultEnvironment{logger: i.r.logger}
	}
	i.r.env = env
}

// defaultEnvironment logs the structural changes a markup-based target
// would have to apply.
type defaultEnvironment struct {
	logger *slog.Logger
}

func (e *defaultEnvironment) ProcessChildrenUpdates(parentID string, patches []vdom.Patch) {
	for _, p := range patches {
		e.logger.Debug("reconciler: child update",
			"parent", parentID, "op", p.Op.String(), "name", p.Name, "index", p.Index)
	}
}

func (e *defaultEnvironment) ReplaceNodeWithMarkup(id string, el *vdom.Element) {
	e.logger.Debug("reconciler: replace node", "id", id, "tag", el.Tag)
}
