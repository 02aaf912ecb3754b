package native

// Props is the opaque key/value mapping a node receives from its element.
// Update replaces it wholesale; it is never merged.
type Props map[string]any

// Factory constructs a native node from its initial props.
type Factory func(props Props) Node

// Node is the contract between the host bridge and a backend node.
type Node interface {
	// Props returns the node's current props.
	Props() Props

	// Children returns the mounted structural children in render order.
	Children() []Node

	// AddChild appends a child.
	AddChild(child Node)

	// RemoveChild removes a child by identity. Removing a non-member is a no-op.
	RemoveChild(child Node)

	// Update replaces the node's props. Children are not touched.
	Update(props Props)

	// Render performs the node's side effect and renders its children.
	Render() error

	// CreateComponent constructs the node registered for tag.
	CreateComponent(tag string, props Props) (Node, error)

	// SetContent sets the node's textual content.
	SetContent(content string)

	// Content returns the node's textual content.
	Content() string

	// Destroy releases backend resources. It is called exactly once.
	Destroy() error
}

// ChildInserter is implemented by nodes that can place a child at a
// position. A member child is moved.
type ChildInserter interface {
	InsertChild(child Node, index int)
}

// Arrange reorders the children of n so that want appears in order.
// Children of n not in want keep their relative order after them. Nodes
// without InsertChild are rearranged by removing and appending.
func Arrange(n Node, want []Node) {
	if inOrder(n.Children(), want) {
		return
	}
	if ins, ok := n.(ChildInserter); ok {
		for i, child := range want {
			ins.InsertChild(child, i)
		}
		return
	}
	for _, child := range want {
		n.RemoveChild(child)
		n.AddChild(child)
	}
}

// inOrder reports whether want is a subsequence of children.
func inOrder(children, want []Node) bool {
	j := 0
	for _, c := range children {
		if j < len(want) && c == want[j] {
			j++
		}
	}
	return j == len(want)
}

// Listener receives events emitted by a node.
type Listener func(event string, args ...any)

// EventSource is implemented by nodes that emit backend events.
type EventSource interface {
	SetListener(l Listener)
}

// Tagged is implemented by nodes that know the tag they were created for.
type Tagged interface {
	Tag() string
}

type tagSetter interface {
	setTag(tag string)
}

// RenderChildren renders the children of n in order, stopping at the first error.
func RenderChildren(n Node) error {
	for _, child := range n.Children() {
		if err := child.Render(); err != nil {
			return err
		}
	}
	return nil
}

// TagOf returns the tag n was created for, or "" when unknown.
func TagOf(n Node) string {
	if t, ok := n.(Tagged); ok {
		return t.Tag()
	}
	return ""
}
