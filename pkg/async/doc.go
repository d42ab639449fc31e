// Package async runs functions on their own goroutine and hands back a
// generic Future for the result.
//
// The engine recorder uses it to forward events to an analytics sink: the
// sink call runs asynchronously, the recorder waits for it with a bound, and a
// slow or panicking sink cannot take the caller down with it.
//
//	f := async.Async(ctx, event, sink.LogEvent)
//	if _, err := f.AwaitWithTimeout(5 * time.Second); err != nil {
//		log.WarnContext(ctx, "sink delivery failed", logger.Error(err))
//	}
//
// Panics inside the function complete the Future with an error wrapping
// ErrPanic. A context that is already cancelled skips the call entirely.
package async
