// Package capture drives the repeating wait, capture, send, reclaim cycle.
//
// A Loop owns the single pixel buffer for the lifetime of the process. The
// buffer is lent to the Camera to be filled and then to the FrameEncoder to
// be written, strictly one after the other, so no locking protects it.
//
//	loop, err := capture.New(capture.DefaultSettings(), cam, port,
//	    capture.WithPublisher(bus),
//	    capture.WithErrorPolicy(capture.HaltPolicy()),
//	)
//	if err != nil {
//	    return err
//	}
//	return loop.Run(ctx) // nil when ctx is cancelled, *capture.Error on halt
//
// Errors are never swallowed. Under the default halt policy the first
// configure, capture or send failure ends Run with a *Error. The retry policy
// only retries capture faults that are marked transient.
package capture
