package reconciler

import (
	"context"
	"errors"
	"sort"

	"github.com/vango-dev/hostbridge/pkg/vdom"
)

type namedInstance struct {
	name string
	inst Instance
}

// MultiChild reconciles the structural children of one host instance.
// Child ids are the parent id followed by the child's name.
type MultiChild struct {
	r        *Reconciler
	parentID string
	children []namedInstance
}

// NewMultiChild creates an empty child set driven by r.
func NewMultiChild(r *Reconciler) *MultiChild {
	return &MultiChild{r: r}
}

// Len returns the number of mounted children.
func (m *MultiChild) Len() int {
	return len(m.children)
}

// Instances returns the mounted children in order.
func (m *MultiChild) Instances() []Instance {
	out := make([]Instance, len(m.children))
	for i, c := range m.children {
		out[i] = c.inst
	}
	return out
}

// MountChildren instantiates and mounts children under parentID.
func (m *MultiChild) MountChildren(parentID string, children []*vdom.Element, tx *Transaction, ctx context.Context) error {
	m.parentID = parentID
	for _, nc := range vdom.NameChildren(children) {
		inst, err := m.mountChild(nc.Name, nc.Element, tx, ctx)
		if err != nil {
			return err
		}
		m.children = append(m.children, namedInstance{name: nc.Name, inst: inst})
	}
	return nil
}

func (m *MultiChild) mountChild(name string, el *vdom.Element, tx *Transaction, ctx context.Context) (Instance, error) {
	inst, err := m.r.Instantiate(el)
	if err != nil {
		return nil, err
	}
	if err := m.r.Mount(inst, m.parentID+"."+name, tx, ctx); err != nil {
		return nil, err
	}
	return inst, nil
}

// Names returns the names of the mounted children in order. A child's id
// is the parent id, a dot and its name.
func (m *MultiChild) Names() []string {
	out := make([]string, len(m.children))
	for i, c := range m.children {
		out[i] = c.name
	}
	return out
}

// UpdateChildren reconciles the mounted children against next. Removed and
// replaced children are unmounted, in their previous order, before any new
// child mounts.
func (m *MultiChild) UpdateChildren(next []*vdom.Element, tx *Transaction, ctx context.Context) error {
	prev := make([]vdom.NamedChild, len(m.children))
	byName := make(map[string]Instance, len(m.children))
	for i, c := range m.children {
		prev[i] = vdom.NamedChild{Name: c.name, Element: c.inst.Element()}
		byName[c.name] = c.inst
	}

	patches := vdom.DiffNamed(prev, next)
	m.r.env.ProcessChildrenUpdates(m.parentID, patches)

	var stale []vdom.Patch
	for _, p := range patches {
		if p.Op == vdom.PatchRemove || p.Op == vdom.PatchReplace {
			stale = append(stale, p)
		}
	}
	sort.SliceStable(stale, func(i, j int) bool { return stale[i].From < stale[j].From })

	for _, p := range stale {
		inst := byName[p.Name]
		delete(byName, p.Name)
		if err := inst.UnmountComponent(); err != nil {
			m.children = m.keep(nil, byName)
			return err
		}
	}

	var updated []namedInstance
	for _, p := range patches {
		switch p.Op {
		case vdom.PatchUpdate:
			inst := byName[p.Name]
			delete(byName, p.Name)
			updated = append(updated, namedInstance{name: p.Name, inst: inst})
			if err := inst.ReceiveComponent(p.Node, tx, ctx); err != nil {
				m.children = m.keep(updated, byName)
				return err
			}
		case vdom.PatchInsert, vdom.PatchReplace:
			inst, err := m.mountChild(p.Name, p.Node, tx, ctx)
			if err != nil {
				m.children = m.keep(updated, byName)
				return err
			}
			updated = append(updated, namedInstance{name: p.Name, inst: inst})
		}
	}

	m.children = updated
	return nil
}

// keep returns done followed by the still unprocessed children in their
// previous order, so that a failed update leaves every mounted child tracked.
func (m *MultiChild) keep(done []namedInstance, pending map[string]Instance) []namedInstance {
	out := append([]namedInstance(nil), done...)
	for _, c := range m.children {
		if inst, ok := pending[c.name]; ok {
			out = append(out, namedInstance{name: c.name, inst: inst})
		}
	}
	return out
}

// UnmountChildren unmounts every child in mount order.
func (m *MultiChild) UnmountChildren() error {
	var errs []error
	for _, c := range m.children {
		if err := c.inst.UnmountComponent(); err != nil {
			errs = append(errs, err)
		}
	}
	m.children = nil
	return errors.Join(errs...)
}
