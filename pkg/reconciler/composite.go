package reconciler

import (
	"context"

	verrors "github.com/vango-dev/hostbridge/internal/errors"
	"github.com/vango-dev/hostbridge/pkg/vdom"
)

// composite is the instance of a user component. Its rendered element is
// mounted under the composite's own id.
type composite struct {
	r        *Reconciler
	element  *vdom.Element
	comp     vdom.Component
	rendered Instance
	id       string
	ctx      context.Context
	mounted  bool
	order    uint64
}

func (c *composite) MountComponent(id string, tx *Transaction, ctx context.Context) error {
	if c.mounted {
		return verrors.New("E031").WithNode(id, c.element.Tag)
	}
	comp := c.element.New()
	if comp == nil {
		return verrors.New("E001").WithNode(id, c.element.Tag).Wrap(ErrNilComponent)
	}

	c.comp = comp
	c.id = id
	c.ctx = ctx
	c.mounted = true
	c.order = c.r.nextOrder()
	tx.record()

	if err := c.mountRendered(c.comp.Render(c.element.Props), tx); err != nil {
		return err
	}

	if m, ok := c.comp.(vdom.Mounter); ok {
		m.ComponentDidMount(c)
	}
	return nil
}

func (c *composite) mountRendered(el *vdom.Element, tx *Transaction) error {
	if el == nil {
		return nil
	}
	inst, err := c.r.Instantiate(el)
	if err != nil {
		return err
	}
	if err := c.r.Mount(inst, c.id, tx, c.ctx); err != nil {
		return err
	}
	c.rendered = inst
	return nil
}

func (c *composite) ReceiveComponent(next *vdom.Element, tx *Transaction, ctx context.Context) error {
	if !c.mounted {
		return verrors.New("E031").WithNode(c.id, next.Tag)
	}
	c.element = next
	if ctx != nil {
		c.ctx = ctx
	}
	return c.update(tx)
}

// update re-renders the component and reconciles the rendered instance.
func (c *composite) update(tx *Transaction) error {
	tx.record()
	next := c.comp.Render(c.element.Props)

	if c.rendered != nil && next != nil && vdom.SameType(c.rendered.Element(), next) {
		return c.rendered.ReceiveComponent(next, tx, c.ctx)
	}

	if c.rendered != nil {
		prev := c.rendered
		c.rendered = nil
		if err := prev.UnmountComponent(); err != nil {
			return err
		}
	}
	if next == nil {
		return nil
	}
	if err := c.mountRendered(next, tx); err != nil {
		return err
	}
	c.r.env.ReplaceNodeWithMarkup(c.id, next)
	return nil
}

func (c *composite) UnmountComponent() error {
	if !c.mounted {
		return verrors.New("E031").WithNode(c.id, c.element.Tag)
	}
	if u, ok := c.comp.(vdom.Unmounter); ok {
		u.ComponentWillUnmount()
	}
	c.mounted = false

	var err error
	if c.rendered != nil {
		err = c.rendered.UnmountComponent()
		c.rendered = nil
	}
	c.id = ""
	return err
}

// ForceUpdate implements vdom.Updater.
func (c *composite) ForceUpdate() {
	if c.mounted {
		c.r.enqueueUpdate(c)
	}
}

func (c *composite) PublicInstance() any {
	return c.comp
}

func (c *composite) Element() *vdom.Element {
	return c.element
}
