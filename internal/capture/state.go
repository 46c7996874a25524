package capture

// State is the current phase of the capture loop.
type State string

// Loop states.
const (
	StateInit       State = "init"       // reclaiming and configuring the camera
	StateReady      State = "ready"      // configured, waiting for the first frame
	StateCapturing  State = "capturing"  // camera is filling the buffer
	StateSending    State = "sending"    // encoder is writing the buffer to the sink
	StateReclaiming State = "reclaiming" // memory pass after a frame
	StateHalted     State = "halted"     // stopped by a fatal error
	StateStopped    State = "stopped"    // stopped by cancellation
)

// Stats is a snapshot of loop counters.
type Stats struct {
	State         State
	FramesSent    uint64
	BytesSent     uint64
	CaptureErrors uint64
	Retries       uint64
	LastFreeBytes uint64
}
