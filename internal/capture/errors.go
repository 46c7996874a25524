package capture

import (
	"errors"
	"fmt"
)

// Op names the loop phase that failed.
type Op string

// Failing operations.
const (
	OpConfigure Op = "configure"
	OpCapture   Op = "capture"
	OpSend      Op = "send"
)

// ErrTransient marks a fault that may succeed on retry, such as bus noise.
// Camera implementations wrap it: fmt.Errorf("read: %w: %w", ErrTransient, err).
var ErrTransient = errors.New("transient fault")

// Error is returned by Loop when a phase fails.
type Error struct {
	Op        Op
	Frame     uint64 // 1-based frame number; 0 during configure
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Frame == 0 {
		return fmt.Sprintf("capture: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("capture: %s frame %d: %v", e.Op, e.Frame, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is marked transient, either by wrapping
// ErrTransient or by implementing Temporary() bool.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrTransient) {
		return true
	}
	var temp interface{ Temporary() bool }
	return errors.As(err, &temp) && temp.Temporary()
}
