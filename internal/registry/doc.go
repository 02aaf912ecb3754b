// Package registry holds the live native nodes of one render root.
//
// A Registry maps hierarchical ids to native nodes and owns the root node
// along with its coalescing render trigger. Ids are dot separated paths
// starting at "root.<n>": the parent of "root.0.1.2" is "root.0.1", and
// the parent of a top-level id such as "root.3" is the root node itself.
//
// # Usage
//
//	loop := scheduler.NewLoop()
//	reg := registry.New(loop, registry.WithLogger(logger))
//	if _, err := reg.SetRoot(newScreen); err != nil {
//	    return err
//	}
//	reg.Add("root.0", node)
//	reg.ScheduleRender()
//	reg.ScheduleRender() // coalesced with the previous request
//
// Render passes run on the queue given to New. The index itself is safe
// for concurrent use, but native nodes are not: mutate the tree only from
// the goroutine that drives the queue.
package registry
