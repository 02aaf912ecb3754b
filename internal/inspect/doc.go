// Package inspect serves a live view of a render tree over HTTP.
//
// Routes:
//
//	GET /healthz   liveness probe
//	GET /tree      latest snapshot as JSON (?format=msgpack for msgpack)
//	GET /nodes     registered node ids
//	GET /metrics   Prometheus metrics
//	GET /ws        websocket; every render pass pushes a msgpack snapshot
//	               as a binary frame
//
// Usage:
//
//	srv := inspect.New(recorder, reg, inspect.WithGatherer(promReg))
//	go srv.ListenAndServe(ctx, "localhost:7070")
package inspect
