// Package scheduler provides the task queues that drive deferred work in
// hostbridge and the single-shot trigger used to coalesce render requests.
//
// A Queue runs posted tasks one at a time, in order. Loop is the
// production queue: a single goroutine draining tasks until its context is
// cancelled. Manual is its deterministic counterpart for tests.
//
// Once turns any number of requests issued during one tick into a single
// task:
//
//	render := scheduler.NewOnce(loop, func() { root.Render() })
//	render.Request()
//	render.Request() // coalesced
//	render.Request() // coalesced
package scheduler
