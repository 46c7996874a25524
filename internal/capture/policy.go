package capture

import (
	"fmt"
	"time"
)

// OnError selects what the loop does when a capture fails.
type OnError string

// Error modes.
const (
	OnErrorHalt  OnError = "halt"  // stop the loop on the first failure
	OnErrorRetry OnError = "retry" // retry transient capture faults with backoff
)

// ParseOnError parses "halt" or "retry".
func ParseOnError(s string) (OnError, error) {
	switch OnError(s) {
	case "", OnErrorHalt:
		return OnErrorHalt, nil
	case OnErrorRetry:
		return OnErrorRetry, nil
	default:
		return OnErrorHalt, fmt.Errorf("capture: unknown error mode %q", s)
	}
}

// maxBackoffShift caps exponential growth at Backoff * 64.
const maxBackoffShift = 6

// ErrorPolicy decides between halting and retrying.
// Send failures and configure failures always halt.
type ErrorPolicy struct {
	Mode       OnError
	MaxRetries int           // consecutive retries per frame
	Backoff    time.Duration // first retry delay, doubled per attempt
}

// HaltPolicy halts on any failure.
func HaltPolicy() ErrorPolicy {
	return ErrorPolicy{Mode: OnErrorHalt}
}

// RetryPolicy retries transient capture faults up to maxRetries times.
func RetryPolicy(maxRetries int, backoff time.Duration) ErrorPolicy {
	return ErrorPolicy{Mode: OnErrorRetry, MaxRetries: maxRetries, Backoff: backoff}
}

// shouldRetry reports whether attempt (1-based) of a failed capture may be retried.
func (p ErrorPolicy) shouldRetry(err error, attempt int) bool {
	return p.Mode == OnErrorRetry && attempt <= p.MaxRetries && IsRetryable(err)
}

// delay returns the wait before retry attempt (1-based).
func (p ErrorPolicy) delay(attempt int) time.Duration {
	return p.Backoff << min(attempt-1, maxBackoffShift)
}
