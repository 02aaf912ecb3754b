// Package vdom provides the generic element model the reconciler drives.
//
// An Element describes one node of the abstract tree: either a host element
// (a string tag resolved by a native backend) or a composite element (a
// user Component that renders other elements). Elements are immutable
// descriptions; the reconciler instantiates them into mounted instances.
//
// # Element API
//
// Elements are created with factory functions. Children are passed
// variadically; strings and numbers become content children, *Element
// values structural children:
//
//	El("pancake", Props{"fryingTemperature": 145},
//	    El("butter", nil),
//	    El("jam", Props{"flavour": "orange"}),
//	    "with love", 3,
//	)
//
// The ordered child list is stored in Props under ChildrenProp so that a
// node's props always describe the element completely.
//
// # Child Diffing
//
// DiffChildren compares two structural child lists and returns Patch
// operations. Children are matched by name: their key when one is set,
// their position otherwise.
//
// # Events
//
// EventKind enumerates the backend events an element can handle. Each kind
// owns a handler prop ("onFocus", "onKeypress", ...); Handlers resolves
// them once per element.
package vdom
