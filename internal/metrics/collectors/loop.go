// Package collectors feeds capture loop events into the metrics package.
package collectors

import (
	"log/slog"
	"sync"

	"github.com/smazurov/webserialdisplay/internal/events"
	"github.com/smazurov/webserialdisplay/internal/metrics"
)

// Subscriber is the part of the event bus the collector needs.
type Subscriber interface {
	Subscribe(handler any) func()
}

// LoopCollector records loop events as metrics.
type LoopCollector struct {
	logger   *slog.Logger
	bus      Subscriber
	unsubs   []func()
	stopOnce sync.Once
}

// NewLoopCollector creates a collector for bus.
func NewLoopCollector(bus Subscriber) *LoopCollector {
	return &LoopCollector{
		logger: slog.With("component", "loop_collector"),
		bus:    bus,
	}
}

// Start subscribes to loop events.
func (c *LoopCollector) Start() {
	c.unsubs = append(c.unsubs,
		c.bus.Subscribe(func(e events.FrameSentEvent) {
			metrics.RecordFrame(e.Bytes, e.CaptureDuration, e.SendDuration, e.Timestamp)
		}),
		c.bus.Subscribe(func(e events.CaptureErrorEvent) {
			metrics.RecordError(e.Op, e.Fatal)
		}),
		c.bus.Subscribe(func(e events.MemoryReclaimedEvent) {
			metrics.SetFreeMemory(e.FreeBytes)
		}),
		c.bus.Subscribe(func(e events.LoopStateChangedEvent) {
			metrics.SetState(e.To)
		}),
	)
	c.logger.Debug("Loop collector started")
}

// Stop unsubscribes from the bus.
func (c *LoopCollector) Stop() {
	c.stopOnce.Do(func() {
		for _, unsub := range c.unsubs {
			unsub()
		}
		c.unsubs = nil
	})
}
