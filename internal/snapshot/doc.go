// Package snapshot captures the native tree of a registry after render
// passes and exports it.
//
// A Snapshot is a plain value tree (ids, tags, content and printable
// props) that can be encoded as JSON or msgpack. A Recorder hooks into a
// registry, takes a snapshot after every render pass and hands it to its
// sinks: a WriterSink writes JSON lines, an S3Sink uploads one object per
// pass.
//
//	rec := snapshot.NewRecorder(reg, logger, snapshot.NewWriterSink(os.Stdout))
//	rec.Attach()
package snapshot
