package bridge

import (
	"log/slog"

	"github.com/vango-dev/hostbridge/internal/registry"
	"github.com/vango-dev/hostbridge/pkg/reconciler"
	"github.com/vango-dev/hostbridge/pkg/vdom"
	"go.opentelemetry.io/otel"
)

// Bridge binds host elements to native nodes registered in a registry.
// It builds the reconciler's host instances and acts as its environment,
// keeping native child order in step with element order.
type Bridge struct {
	reg   *registry.Registry
	rec   *reconciler.Reconciler
	opts  *options
	hosts map[string]*HostComponent
}

// New returns a bridge between r and the native nodes registered in reg.
func New(reg *registry.Registry, r *reconciler.Reconciler, opts ...Option) *Bridge {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	return &Bridge{reg: reg, rec: r, opts: o, hosts: make(map[string]*HostComponent)}
}

// Factory returns the generic component factory creating HostComponents.
func (b *Bridge) Factory() reconciler.GenericFactory {
	return func(el *vdom.Element) reconciler.Instance {
		return &HostComponent{
			bridge:   b,
			reg:      b.reg,
			opts:     b.opts,
			element:  el,
			handlers: vdom.Handlers(el.Props),
			children: reconciler.NewMultiChild(b.rec),
		}
	}
}

// Host returns the mounted host instance registered under id.
func (b *Bridge) Host(id string) (*HostComponent, bool) {
	h, ok := b.hosts[id]
	return h, ok
}

// ProcessChildrenUpdates implements reconciler.Environment. Host instances
// apply child patches to the native tree themselves.
func (b *Bridge) ProcessChildrenUpdates(parentID string, patches []vdom.Patch) {
	if len(patches) > 0 {
		b.opts.logger.Debug("bridge: children updated", "parent", parentID, "patches", len(patches))
	}
}

// ReplaceNodeWithMarkup implements reconciler.Environment. A composite that
// rendered a new node type appended the node to its parent; the parent
// host moves it back to the composite's position.
func (b *Bridge) ReplaceNodeWithMarkup(id string, el *vdom.Element) {
	if h, ok := b.hosts[registry.ParentID(id)]; ok {
		h.arrange()
	}
}

// Inject installs a bridge for reg into r as both the generic component
// factory and the environment. Injecting again replaces the previous bridge.
func Inject(r *reconciler.Reconciler, reg *registry.Registry, opts ...Option) *Bridge {
	b := New(reg, r, opts...)
	inj := r.Injection()
	inj.InjectGenericComponent(b.Factory())
	inj.InjectEnvironment(b)
	return b
}
