package vdom

// Kind is the element type discriminator.
type Kind uint8

const (
	KindHost      Kind = iota // Tag resolved by a native backend
	KindComposite             // User component rendering other elements
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindHost:
		return "Host"
	case KindComposite:
		return "Composite"
	default:
		return "Unknown"
	}
}

// ChildrenProp is the props key holding an element's ordered children.
const ChildrenProp = "children"

// Props holds an element's attributes, event handlers and children.
type Props map[string]any

// Element is a generic, backend-agnostic tree node description.
type Element struct {
	Kind  Kind             // Node type
	Tag   string           // Host tag or composite name
	Props Props            // Attributes, handlers and ChildrenProp
	Key   string           // Reconciliation key
	New   func() Component // For KindComposite
}

// Children returns the element's flattened child list.
func (e *Element) Children() []any {
	if e == nil || e.Props == nil {
		return nil
	}
	return Flatten(e.Props[ChildrenProp])
}

// WithKey sets the reconciliation key and returns the element.
func (e *Element) WithKey(key string) *Element {
	e.Key = key
	return e
}

// Component is anything that renders props to an element.
type Component interface {
	Render(props Props) *Element
}

// Updater requests a re-render of the composite that owns it.
type Updater interface {
	ForceUpdate()
}

// Mounter is implemented by components that want to know when they mounted.
type Mounter interface {
	ComponentDidMount(u Updater)
}

// Unmounter is implemented by components that release resources on unmount.
type Unmounter interface {
	ComponentWillUnmount()
}

// RenderFunc adapts a function to the Component interface.
type RenderFunc func(props Props) *Element

// Render implements Component.
func (f RenderFunc) Render(props Props) *Element {
	return f(props)
}

// IsValidElement reports whether v is a well-formed element.
func IsValidElement(v any) bool {
	e, ok := v.(*Element)
	if !ok || e == nil {
		return false
	}
	switch e.Kind {
	case KindHost:
		return e.Tag != ""
	case KindComposite:
		return e.New != nil
	default:
		return false
	}
}

// SameType reports whether next can update an instance mounted from prev.
func SameType(prev, next *Element) bool {
	if prev == nil || next == nil {
		return false
	}
	return prev.Kind == next.Kind && prev.Tag == next.Tag && prev.Key == next.Key
}
