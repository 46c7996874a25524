package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/smazurov/webserialdisplay/internal/events"
	"github.com/smazurov/webserialdisplay/internal/framecodec"
	"github.com/smazurov/webserialdisplay/internal/logging"
	"github.com/smazurov/webserialdisplay/internal/memstats"
)

// DefaultInterval is the fixed delay before every capture.
const DefaultInterval = 2 * time.Second

// Camera is the sensor collaborator.
type Camera interface {
	// Configure applies settings once, before the first capture.
	Configure(s Settings) error
	// Capture fills buf in place with one frame and blocks until done.
	Capture(ctx context.Context, buf []byte) error
}

// Reclaimer runs memory reclamation and reports free memory.
type Reclaimer interface {
	Reclaim()
	FreeBytes() uint64
}

// FrameEncoder writes one frame to a sink.
type FrameEncoder interface {
	Encode(w io.Writer, buf []byte) error
}

// Publisher receives loop events.
type Publisher interface {
	Publish(ev events.Event)
}

// Sleeper blocks for d or until ctx is done, returning ctx.Err() in that case.
type Sleeper func(ctx context.Context, d time.Duration) error

// Loop is the capture-encode-send cycle. Create it with New.
type Loop struct {
	settings    Settings
	buf         []byte
	camera      Camera
	out         *countingWriter
	encoder     FrameEncoder
	reclaimer   Reclaimer
	publisher   Publisher
	logger      logging.Logger
	policy      ErrorPolicy
	interval    time.Duration
	sleep       Sleeper
	now         func() time.Time
	diagnostics io.Writer
	diagLine    []byte

	mu          sync.RWMutex
	stats       Stats
	initialized bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithEncoder replaces the default framecodec encoder.
func WithEncoder(enc FrameEncoder) Option {
	return func(l *Loop) { l.encoder = enc }
}

// WithReclaimer replaces the default runtime reclaimer.
func WithReclaimer(r Reclaimer) Option {
	return func(l *Loop) { l.reclaimer = r }
}

// WithPublisher sets the event publisher.
func WithPublisher(p Publisher) Option {
	return func(l *Loop) { l.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// WithErrorPolicy sets the failure policy. The default halts.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(l *Loop) { l.policy = p }
}

// WithInterval sets the delay before each capture.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) { l.interval = d }
}

// WithSleeper replaces the timer used for the interval and retry backoff.
func WithSleeper(s Sleeper) Option {
	return func(l *Loop) { l.sleep = s }
}

// WithDiagnostics writes a "mem_free N" line to w after every reclaim pass.
// Pass the sink itself to interleave diagnostics with frames on the link.
func WithDiagnostics(w io.Writer) Option {
	return func(l *Loop) { l.diagnostics = w }
}

// New validates settings and allocates the pixel buffer. The buffer is the
// only frame storage the loop ever uses.
func New(settings Settings, cam Camera, sink io.Writer, opts ...Option) (*Loop, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if cam == nil {
		return nil, errors.New("capture: nil camera")
	}
	if sink == nil {
		return nil, errors.New("capture: nil sink")
	}

	l := &Loop{
		settings: settings,
		buf:      make([]byte, settings.FrameSize()),
		camera:   cam,
		out:      &countingWriter{w: sink},
		policy:   HaltPolicy(),
		interval: DefaultInterval,
		now:      time.Now,
		diagLine: make([]byte, 0, 32),
		stats:    Stats{State: StateInit},
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.encoder == nil {
		l.encoder = framecodec.NewEncoder()
	}
	if l.reclaimer == nil {
		l.reclaimer = memstats.New()
	}
	if l.logger == nil {
		l.logger = logging.GetLogger("capture")
	}
	if l.sleep == nil {
		l.sleep = timerSleeper()
	}

	return l, nil
}

// Settings returns the settings the loop was created with.
func (l *Loop) Settings() Settings {
	return l.settings
}

// Buffer returns the loop's pixel buffer. Callers must not retain or modify
// it while the loop runs.
func (l *Loop) Buffer() []byte {
	return l.buf
}

// Stats returns a snapshot of the loop counters.
func (l *Loop) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}

// Init reclaims memory and configures the camera. A configure failure is
// fatal and leaves the loop halted.
func (l *Loop) Init(_ context.Context) error {
	l.setState(StateInit)
	l.reclaim()

	if err := l.camera.Configure(l.settings); err != nil {
		cerr := &Error{Op: OpConfigure, Err: err}
		l.fail(cerr, true)
		l.setState(StateHalted)
		return cerr
	}
	l.logger.Info("Camera configured",
		"width", l.settings.Width,
		"height", l.settings.Height,
		"flip_x", l.settings.FlipX,
		"color_mode", string(l.settings.ColorMode))

	l.reclaim()

	l.mu.Lock()
	l.initialized = true
	l.mu.Unlock()
	l.setState(StateReady)
	return nil
}

// Run initialises the loop if needed and then streams frames until ctx is
// cancelled (returns nil) or a fatal error occurs (returns *Error).
// Without cancellation Run only returns on a fatal error.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.RLock()
	initialized := l.initialized
	l.mu.RUnlock()

	if !initialized {
		if err := l.Init(ctx); err != nil {
			return err
		}
	}

	l.logger.Info("Capture loop started", "interval", l.interval, "frame_bytes", len(l.buf))

	for {
		if err := l.sleep(ctx, l.interval); err != nil {
			return l.stop()
		}

		frame := l.Stats().FramesSent + 1

		l.setState(StateCapturing)
		captureStart := l.now()
		if err := l.captureFrame(ctx, frame); err != nil {
			if ctx.Err() != nil {
				return l.stop()
			}
			l.setState(StateHalted)
			return err
		}
		captureDuration := l.now().Sub(captureStart)

		l.setState(StateSending)
		sendStart := l.now()
		written, err := l.send()
		if err != nil {
			cerr := &Error{Op: OpSend, Frame: frame, Err: err}
			l.fail(cerr, true)
			l.setState(StateHalted)
			return cerr
		}
		sendDuration := l.now().Sub(sendStart)

		l.mu.Lock()
		l.stats.FramesSent = frame
		l.stats.BytesSent += uint64(written)
		l.mu.Unlock()

		l.publish(events.FrameSentEvent{
			Frame:           frame,
			Bytes:           written,
			CaptureDuration: captureDuration,
			SendDuration:    sendDuration,
			Timestamp:       l.now(),
		})
		l.logger.Debug("Frame sent", "frame", frame, "bytes", written,
			"capture", captureDuration, "send", sendDuration)

		l.setState(StateReclaiming)
		l.reclaim()
	}
}

// captureFrame fills the buffer, applying the retry policy to failures.
func (l *Loop) captureFrame(ctx context.Context, frame uint64) error {
	for attempt := 1; ; attempt++ {
		err := l.camera.Capture(ctx, l.buf)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		cerr := &Error{Op: OpCapture, Frame: frame, Retryable: IsRetryable(err), Err: err}
		l.mu.Lock()
		l.stats.CaptureErrors++
		l.mu.Unlock()

		if !l.policy.shouldRetry(err, attempt) {
			l.fail(cerr, true)
			return cerr
		}

		l.mu.Lock()
		l.stats.Retries++
		l.mu.Unlock()
		l.fail(cerr, false)

		delay := l.policy.delay(attempt)
		l.logger.Warn("Capture failed, retrying", "frame", frame, "attempt", attempt, "backoff", delay, "error", err)
		if sleepErr := l.sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}
}

// send encodes the buffer to the sink and returns the bytes written.
func (l *Loop) send() (int, error) {
	l.out.n = 0
	if err := l.encoder.Encode(l.out, l.buf); err != nil {
		return l.out.n, err
	}
	if f, ok := l.out.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return l.out.n, fmt.Errorf("flush sink: %w", err)
		}
	}
	return l.out.n, nil
}

// reclaim runs a memory pass and emits the free memory diagnostic.
func (l *Loop) reclaim() {
	l.reclaimer.Reclaim()
	free := l.reclaimer.FreeBytes()

	l.mu.Lock()
	l.stats.LastFreeBytes = free
	l.mu.Unlock()

	l.logger.Info("mem_free", "bytes", free)
	l.publish(events.MemoryReclaimedEvent{FreeBytes: free, Timestamp: l.now()})

	if l.diagnostics != nil {
		l.diagLine = append(l.diagLine[:0], "mem_free "...)
		l.diagLine = strconv.AppendUint(l.diagLine, free, 10)
		l.diagLine = append(l.diagLine, '\n')
		if _, err := l.diagnostics.Write(l.diagLine); err != nil {
			l.logger.Warn("Failed to write memory diagnostic", "error", err)
		}
	}
}

func (l *Loop) fail(err *Error, fatal bool) {
	if fatal {
		l.logger.Error("Capture loop failure", "op", string(err.Op), "frame", err.Frame, "error", err.Err)
	}
	l.publish(events.CaptureErrorEvent{
		Op:        string(err.Op),
		Frame:     err.Frame,
		Error:     err.Err.Error(),
		Retryable: err.Retryable,
		Fatal:     fatal,
		Timestamp: l.now(),
	})
}

func (l *Loop) stop() error {
	l.setState(StateStopped)
	l.logger.Info("Capture loop stopped", "frames_sent", l.Stats().FramesSent)
	return nil
}

func (l *Loop) setState(to State) {
	l.mu.Lock()
	from := l.stats.State
	l.stats.State = to
	l.mu.Unlock()

	if from == to {
		return
	}
	l.publish(events.LoopStateChangedEvent{From: string(from), To: string(to), Timestamp: l.now()})
}

func (l *Loop) publish(ev events.Event) {
	if l.publisher != nil {
		l.publisher.Publish(ev)
	}
}

// countingWriter counts bytes written through it for one frame.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// timerSleeper returns a Sleeper reusing one timer across calls.
func timerSleeper() Sleeper {
	var t *time.Timer
	return func(ctx context.Context, d time.Duration) error {
		if t == nil {
			t = time.NewTimer(d)
		} else {
			t.Reset(d)
		}
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
}
