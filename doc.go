// Package hostbridge renders generic element trees into native backends.
//
// A backend is a set of native node types (terminal boxes, cooking steps,
// anything implementing native.Node) plus a root node factory. Render
// mounts an element tree under a fresh root and keeps the backend tree in
// sync as components update:
//
//	types := native.MustTypeMap(map[string]native.Factory{
//	    "box": newBox,
//	})
//
//	handle, err := hostbridge.Render(
//	    hostbridge.El("box", hostbridge.Props{"border": true}, "hello"),
//	    newScreen,
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = hostbridge.Run(ctx)
//
// Mutations requested while one batch runs are applied in program order
// and the root is rendered once per scheduler tick, however many nodes
// changed.
package hostbridge
