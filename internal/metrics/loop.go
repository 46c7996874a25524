// Package metrics provides Prometheus metrics for the capture loop.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// States mirrors the capture loop states exported as a gauge set.
var States = []string{"init", "ready", "capturing", "sending", "reclaiming", "halted", "stopped"}

var (
	framesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "webserialdisplay",
		Subsystem: "loop",
		Name:      "frames_sent_total",
		Help:      "Frames fully written to the sink",
	})

	bytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "webserialdisplay",
		Subsystem: "loop",
		Name:      "bytes_sent_total",
		Help:      "Encoded bytes written to the sink",
	})

	captureErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webserialdisplay",
		Subsystem: "loop",
		Name:      "errors_total",
		Help:      "Failures by operation and whether they were fatal",
	}, []string{"op", "fatal"})

	freeMemory = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "webserialdisplay",
		Subsystem: "memory",
		Name:      "free_bytes",
		Help:      "Free memory reported after the last reclaim pass",
	})

	captureDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "webserialdisplay",
		Subsystem: "loop",
		Name:      "capture_duration_seconds",
		Help:      "Time spent capturing one frame",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	sendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "webserialdisplay",
		Subsystem: "loop",
		Name:      "send_duration_seconds",
		Help:      "Time spent encoding and writing one frame",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	loopState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "webserialdisplay",
		Subsystem: "loop",
		Name:      "state",
		Help:      "1 for the current capture loop state, 0 otherwise",
	}, []string{"state"})

	// Local cache for status logging and tests.
	snapshot   LoopMetrics
	snapshotMu sync.RWMutex
)

// LoopMetrics holds the current metric values.
type LoopMetrics struct {
	FramesSent    uint64
	BytesSent     uint64
	Errors        uint64
	FatalErrors   uint64
	FreeBytes     uint64
	State         string
	LastFrameTime time.Time
}

// RecordFrame records one sent frame.
func RecordFrame(bytes int, capture, send time.Duration, at time.Time) {
	framesSent.Inc()
	bytesSent.Add(float64(bytes))
	captureDuration.Observe(capture.Seconds())
	sendDuration.Observe(send.Seconds())

	update(func(m *LoopMetrics) {
		m.FramesSent++
		m.BytesSent += uint64(bytes)
		m.LastFrameTime = at
	})
}

// RecordError records a loop failure.
func RecordError(op string, fatal bool) {
	label := "false"
	if fatal {
		label = "true"
	}
	captureErrors.WithLabelValues(op, label).Inc()

	update(func(m *LoopMetrics) {
		m.Errors++
		if fatal {
			m.FatalErrors++
		}
	})
}

// SetFreeMemory sets the free memory gauge.
func SetFreeMemory(bytes uint64) {
	freeMemory.Set(float64(bytes))
	update(func(m *LoopMetrics) { m.FreeBytes = bytes })
}

// SetState marks state as the current loop state.
func SetState(state string) {
	for _, s := range States {
		v := 0.0
		if s == state {
			v = 1
		}
		loopState.WithLabelValues(s).Set(v)
	}
	update(func(m *LoopMetrics) { m.State = state })
}

// Snapshot returns a copy of the current values.
func Snapshot() LoopMetrics {
	snapshotMu.RLock()
	defer snapshotMu.RUnlock()
	return snapshot
}

// Reset zeroes the local cache. Prometheus counters are not reset.
func Reset() {
	snapshotMu.Lock()
	snapshot = LoopMetrics{}
	snapshotMu.Unlock()
}

func update(fn func(*LoopMetrics)) {
	snapshotMu.Lock()
	defer snapshotMu.Unlock()
	fn(&snapshot)
}
