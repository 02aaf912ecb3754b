package native

import (
	"fmt"

	verrors "github.com/vango-dev/hostbridge/internal/errors"
)

// Base implements the default behaviour of the Node contract.
// Backend node types embed it and override Render and, if they hold
// resources, Destroy (calling Base.Destroy).
type Base struct {
	props     Props
	children  []Node
	types     *TypeMap
	content   string
	tag       string
	listener  Listener
	destroyed bool
}

// NewBase returns a Base with no children. types may be nil for leaf nodes.
func NewBase(props Props, types *TypeMap) Base {
	if props == nil {
		props = Props{}
	}
	return Base{props: props, types: types}
}

// Props returns the current props.
func (b *Base) Props() Props {
	return b.props
}

// Children returns the children in insertion order.
func (b *Base) Children() []Node {
	return b.children
}

// AddChild appends child.
func (b *Base) AddChild(child Node) {
	b.children = append(b.children, child)
}

// RemoveChild removes child by identity.
func (b *Base) RemoveChild(child Node) {
	for i, c := range b.children {
		if c == child {
			b.children = append(b.children[:i], b.children[i+1:]...)
			return
		}
	}
}

// InsertChild moves or inserts child so that it sits at index. The index
// is clamped to the child list.
func (b *Base) InsertChild(child Node, index int) {
	b.RemoveChild(child)
	if index < 0 {
		index = 0
	}
	if index > len(b.children) {
		index = len(b.children)
	}
	b.children = append(b.children, nil)
	copy(b.children[index+1:], b.children[index:])
	b.children[index] = child
}

// Update replaces the props.
func (b *Base) Update(props Props) {
	if props == nil {
		props = Props{}
	}
	b.props = props
}

// Render renders the children in order.
func (b *Base) Render() error {
	return RenderChildren(b)
}

// CreateComponent looks tag up in the type map and constructs the node.
// A miss returns ErrUnknownType and constructs nothing.
func (b *Base) CreateComponent(tag string, props Props) (Node, error) {
	f, ok := b.types.Lookup(tag)
	if !ok {
		return nil, verrors.New("E010").
			WithNode("", tag).
			WithSuggestion(fmt.Sprintf("Register %q in the type map, known tags: %v", tag, b.types.Tags())).
			Wrap(ErrUnknownType)
	}
	if props == nil {
		props = Props{}
	}
	n := f(props)
	if n == nil {
		return nil, verrors.New("E011").WithNode("", tag).Wrap(ErrNilNode)
	}
	if ts, ok := n.(tagSetter); ok {
		ts.setTag(tag)
	}
	return n, nil
}

// SetContent sets the textual content.
func (b *Base) SetContent(content string) {
	b.content = content
}

// Content returns the textual content.
func (b *Base) Content() string {
	return b.content
}

// Destroy marks the node destroyed. A second call returns ErrDestroyed.
func (b *Base) Destroy() error {
	if b.destroyed {
		return verrors.New("E012").WithNode("", b.tag).Wrap(ErrDestroyed)
	}
	b.destroyed = true
	b.listener = nil
	return nil
}

// Destroyed reports whether Destroy has been called.
func (b *Base) Destroyed() bool {
	return b.destroyed
}

// Tag returns the tag the node was created for.
func (b *Base) Tag() string {
	return b.tag
}

func (b *Base) setTag(tag string) {
	b.tag = tag
}

// SetListener installs the event listener. nil detaches it.
func (b *Base) SetListener(l Listener) {
	b.listener = l
}

// Emit forwards a backend event to the listener, if any.
func (b *Base) Emit(event string, args ...any) {
	if b.listener != nil {
		b.listener(event, args...)
	}
}
