package bridge

import (
	"context"
	"errors"
	"log/slog"

	verrors "github.com/vango-dev/hostbridge/internal/errors"
	"github.com/vango-dev/hostbridge/internal/registry"
	"github.com/vango-dev/hostbridge/pkg/native"
	"github.com/vango-dev/hostbridge/pkg/reconciler"
	"github.com/vango-dev/hostbridge/pkg/vdom"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "hostbridge"

var (
	// ErrNotMounted is returned by update and unmount on an instance that
	// is not mounted.
	ErrNotMounted = errors.New("bridge: component not mounted")

	// ErrAlreadyMounted is returned when a mounted or unmounted instance
	// is mounted again.
	ErrAlreadyMounted = errors.New("bridge: component already mounted")
)

type state uint8

const (
	stateConstructed state = iota
	stateMounted
	stateUnmounted
)

// Option configures the host components built by a factory.
type Option func(*options)

type options struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// WithLogger sets the logger. nil means slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer sets the tracer used for mount, update and unmount spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// HostComponent is the reconciler instance of a host element. It owns one
// native node, registered under the instance's id while mounted.
type HostComponent struct {
	bridge *Bridge
	reg    *registry.Registry
	opts   *options

	element  *vdom.Element
	handlers map[vdom.EventKind]vdom.Handler
	id       string
	node     native.Node
	parent   native.Node
	children *reconciler.MultiChild
	state    state
	updating bool
	syncing  bool
}

// Dispatch routes a backend event to the matching handler prop. Unknown
// events and events without a handler are ignored, as are events raised
// while the node is being updated.
func (h *HostComponent) Dispatch(event string, args ...any) {
	if h.updating {
		return
	}
	kind, ok := vdom.ParseEvent(event)
	if !ok {
		return
	}
	handler := h.handlers[kind]
	if handler == nil {
		return
	}
	if kind == vdom.EventFocus || kind == vdom.EventBlur {
		args = append([]any{h.node}, args...)
	}
	handler(args...)
}

// MountComponent creates the native node, attaches it to its parent,
// registers it under id and mounts the element children.
func (h *HostComponent) MountComponent(id string, tx *reconciler.Transaction, ctx context.Context) (err error) {
	if h.state != stateConstructed {
		return verrors.New("E031").WithNode(id, h.element.Tag).Wrap(ErrAlreadyMounted)
	}
	ctx, span := h.startSpan(ctx, "bridge.mount", id)
	defer func() { endSpan(span, err) }()

	h.id = id
	content, structural, hasContent, err := Partition(h.element.Children())
	if err != nil {
		return withNode(err, id, h.element.Tag)
	}
	parent, err := h.reg.GetParent(id)
	if err != nil {
		return err
	}
	node, err := h.create(parent)
	if err != nil {
		return err
	}

	parent.AddChild(node)
	h.reg.Add(id, node)
	h.node = node
	h.parent = parent
	h.state = stateMounted
	h.bridge.hosts[id] = h
	if src, ok := node.(native.EventSource); ok {
		src.SetListener(h.Dispatch)
	}
	h.opts.logger.Debug("bridge: mount", "id", id, "tag", h.element.Tag)

	if hasContent {
		node.SetContent(content)
	}
	if err := h.children.MountChildren(id, structural, tx, ctx); err != nil {
		return err
	}

	h.reg.ScheduleRender()
	return nil
}

// create builds the node through the parent's type map, falling back to
// the root's map when the parent does not know the tag.
func (h *HostComponent) create(parent native.Node) (native.Node, error) {
	props := native.Props(h.element.Props)
	node, err := parent.CreateComponent(h.element.Tag, props)
	if err == nil {
		return node, nil
	}

	root := h.reg.Root()
	if root == nil || root == parent || !errors.Is(err, native.ErrUnknownType) {
		return nil, withNode(err, h.id, h.element.Tag)
	}
	node, rootErr := root.CreateComponent(h.element.Tag, props)
	if rootErr != nil {
		return nil, withNode(err, h.id, h.element.Tag)
	}
	return node, nil
}

// ReceiveComponent applies next to the mounted node and reconciles the
// element children.
func (h *HostComponent) ReceiveComponent(next *vdom.Element, tx *reconciler.Transaction, ctx context.Context) (err error) {
	if h.state != stateMounted {
		return verrors.New("E031").WithNode(h.id, next.Tag).Wrap(ErrNotMounted)
	}
	ctx, span := h.startSpan(ctx, "bridge.update", h.id)
	defer func() { endSpan(span, err) }()

	content, structural, hasContent, err := Partition(next.Children())
	if err != nil {
		return withNode(err, h.id, next.Tag)
	}
	h.element = next
	h.handlers = vdom.Handlers(next.Props)
	h.applyProps(native.Props(next.Props))

	switch {
	case hasContent:
		h.node.SetContent(content)
	case h.node.Content() != "":
		h.node.SetContent("")
	}
	h.syncing = true
	err = h.children.UpdateChildren(structural, tx, ctx)
	h.syncing = false
	if err != nil {
		return err
	}
	h.arrange()

	h.reg.ScheduleRender()
	return nil
}

// arrange orders the native children to match the mounted element
// children. Newly mounted nodes were appended to the end.
func (h *HostComponent) arrange() {
	if h.state != stateMounted || h.syncing {
		return
	}
	names := h.children.Names()
	want := make([]native.Node, 0, len(names))
	for _, name := range names {
		if n, ok := h.reg.Get(h.id + "." + name); ok {
			want = append(want, n)
		}
	}
	native.Arrange(h.node, want)
}

// applyProps updates the node with dispatch suppressed.
func (h *HostComponent) applyProps(props native.Props) {
	h.updating = true
	defer func() { h.updating = false }()
	h.node.Update(props)
}

// UnmountComponent unmounts the element children, then destroys and
// deregisters the node.
func (h *HostComponent) UnmountComponent() (err error) {
	if h.state != stateMounted {
		return verrors.New("E031").WithNode(h.id, h.element.Tag).Wrap(ErrNotMounted)
	}
	_, span := h.startSpan(context.Background(), "bridge.unmount", h.id)
	defer func() { endSpan(span, err) }()

	var errs []error
	if err := h.children.UnmountChildren(); err != nil {
		errs = append(errs, err)
	}
	if src, ok := h.node.(native.EventSource); ok {
		src.SetListener(nil)
	}
	if err := h.node.Destroy(); err != nil {
		errs = append(errs, withNode(err, h.id, h.element.Tag))
	}
	h.reg.Drop(h.id)
	if h.bridge.hosts[h.id] == h {
		delete(h.bridge.hosts, h.id)
	}
	h.parent.RemoveChild(h.node)
	h.opts.logger.Debug("bridge: unmount", "id", h.id, "tag", h.element.Tag)

	h.id = ""
	h.parent = nil
	h.state = stateUnmounted
	h.reg.ScheduleRender()
	return errors.Join(errs...)
}

// PublicInstance returns the native node registered under the instance's
// id, or nil when unmounted.
func (h *HostComponent) PublicInstance() any {
	if h.id == "" {
		return nil
	}
	node, ok := h.reg.Get(h.id)
	if !ok {
		return nil
	}
	return node
}

// Element returns the current element.
func (h *HostComponent) Element() *vdom.Element {
	return h.element
}

// ID returns the id the instance is mounted under.
func (h *HostComponent) ID() string {
	return h.id
}

func (h *HostComponent) startSpan(ctx context.Context, name, id string) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return h.opts.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("hostbridge.id", id),
		attribute.String("hostbridge.tag", h.element.Tag),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// withNode fills in the node id of coded errors raised below the bridge.
func withNode(err error, id, tag string) error {
	var be *verrors.BridgeError
	if errors.As(err, &be) && (be.Node == nil || be.Node.ID == "") {
		be.WithNode(id, tag)
	}
	return err
}
