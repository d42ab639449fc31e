// Package ringbuffer provides a generic, bounded FIFO used as the hot
// diagnostics store for engine events.
//
// All operations on a Buffer go through a single mutex, so Append is atomic
// and Snapshot never observes a half-written buffer. The buffer never holds
// more than its capacity once Append returns.
//
//	buf := ringbuffer.MustNew[string](2)
//	buf.Append("a")
//	buf.Append("b")
//	buf.Append("c")
//	buf.Snapshot() // [b c]
//	buf.Dropped()  // 1
package ringbuffer
