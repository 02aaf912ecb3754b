// Package bridge adapts generic elements to native backend nodes.
//
// A HostComponent is the reconciler instance of one host element. Mounting
// it creates a native node through the parent node's type map, attaches
// the node to its parent and registers it under the element's id.
// Primitive children (strings and numbers) are folded into the node's
// text content; element children are mounted recursively as nested
// HostComponents.
//
// Inject installs a Bridge as the reconciler's generic component factory
// and as its environment. Host instances apply every mutation to the
// native tree themselves; the environment only moves a node back into
// place when a composite re-render replaced it with a node of another type:
//
//	r := reconciler.New()
//	bridge.Inject(r, reg)
//
// Events emitted by a native node through its listener are routed to the
// element's handler props (onClick, onFocus, ...). Focus and blur handlers
// receive the native node as their first argument.
package bridge
