// Package native defines the contract every backend node must satisfy to be
// driven by the host bridge.
//
// A backend is a set of node types (terminal boxes, cooking steps, ...)
// that embed Base for the default behaviour and override what they need,
// typically Render:
//
//	type Box struct{ native.Base }
//
//	func NewBox(props native.Props) native.Node {
//	    return &Box{Base: native.NewBase(props, nil)}
//	}
//
//	func (b *Box) Render() error {
//	    fmt.Println("box", b.Props()["visible"])
//	    return native.RenderChildren(b)
//	}
//
// Nested element tags are resolved through a TypeMap, validated when the
// backend is configured rather than when elements mount.
package native
