// Package reconciler drives the lifecycle of mounted element instances.
//
// The reconciler knows nothing about native nodes. Host elements are
// instantiated through a generic factory injected by a renderer; composite
// elements are rendered here and their output is mounted under the same
// id. Structural children are reconciled by MultiChild, which diffs the
// previous and next child lists and mounts, receives or unmounts instances
// accordingly.
//
// # Extension Points
//
// A renderer plugs into the reconciler through Injection:
//
//	r := reconciler.New()
//	r.Injection().InjectGenericComponent(newHostComponent)
//	r.Injection().InjectEnvironment(myEnvironment{})
//
// # Batching
//
// PerformBatched groups lifecycle work. Updates requested with
// Updater.ForceUpdate inside a batch are queued, de-duplicated and flushed
// once the outermost batch completes.
package reconciler
