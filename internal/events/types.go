package events

import "time"

// Event type constants for kelindar/event.
const (
	TypeLoopStateChanged uint32 = iota + 1
	TypeFrameSent
	TypeCaptureError
	TypeMemoryReclaimed
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LoopStateChangedEvent is published on every capture loop state transition.
type LoopStateChangedEvent struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type identifier for LoopStateChangedEvent.
func (e LoopStateChangedEvent) Type() uint32 { return TypeLoopStateChanged }

// FrameSentEvent is published after a frame has been fully written to the sink.
type FrameSentEvent struct {
	Frame           uint64        `json:"frame"`
	Bytes           int           `json:"bytes"`
	CaptureDuration time.Duration `json:"capture_duration"`
	SendDuration    time.Duration `json:"send_duration"`
	Timestamp       time.Time     `json:"timestamp"`
}

// Type returns the event type identifier for FrameSentEvent.
func (e FrameSentEvent) Type() uint32 { return TypeFrameSent }

// CaptureErrorEvent is published when configure, capture or send fails.
type CaptureErrorEvent struct {
	Op        string    `json:"op"`
	Frame     uint64    `json:"frame"`
	Error     string    `json:"error"`
	Retryable bool      `json:"retryable"`
	Fatal     bool      `json:"fatal"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type identifier for CaptureErrorEvent.
func (e CaptureErrorEvent) Type() uint32 { return TypeCaptureError }

// MemoryReclaimedEvent is published after each reclamation pass.
type MemoryReclaimedEvent struct {
	FreeBytes uint64    `json:"free_bytes"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type identifier for MemoryReclaimedEvent.
func (e MemoryReclaimedEvent) Type() uint32 { return TypeMemoryReclaimed }
