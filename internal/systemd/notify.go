// Package systemd reports service readiness and liveness to systemd.
package systemd

import (
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/smazurov/webserialdisplay/internal/events"
	"github.com/smazurov/webserialdisplay/internal/logging"
)

// NotifyFunc sends a state string to the service manager. It matches
// daemon.SdNotify.
type NotifyFunc func(unsetEnvironment bool, state string) (bool, error)

// Subscriber is the part of the event bus the notifier needs.
type Subscriber interface {
	Subscribe(handler any) func()
}

// Notifier sends READY once the camera is configured and a watchdog
// keepalive for every frame sent. A halted loop stops the keepalives, so a
// unit with WatchdogSec restarts the service.
type Notifier struct {
	notify   NotifyFunc
	logger   logging.Logger
	watchdog time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastPing time.Time
	unsubs   []func()
}

// NewNotifier creates a notifier using the NOTIFY_SOCKET of the process.
func NewNotifier(logger logging.Logger) *Notifier {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		logger.Warn("Failed to read systemd watchdog settings", "error", err)
	}
	return newNotifier(daemon.SdNotify, interval, logger)
}

func newNotifier(notify NotifyFunc, watchdog time.Duration, logger logging.Logger) *Notifier {
	return &Notifier{
		notify:   notify,
		logger:   logger,
		watchdog: watchdog,
		now:      time.Now,
	}
}

// Start subscribes to loop events.
func (n *Notifier) Start(bus Subscriber) {
	n.unsubs = append(n.unsubs,
		bus.Subscribe(func(e events.LoopStateChangedEvent) {
			switch e.To {
			case "ready":
				n.send(daemon.SdNotifyReady)
			case "halted":
				n.send("STATUS=capture loop halted")
			}
		}),
		bus.Subscribe(func(events.FrameSentEvent) {
			n.ping()
		}),
	)
	if n.watchdog > 0 {
		n.logger.Info("systemd watchdog enabled", "interval", n.watchdog)
	}
}

// Stop tells systemd the service is stopping and unsubscribes.
func (n *Notifier) Stop() {
	for _, unsub := range n.unsubs {
		unsub()
	}
	n.unsubs = nil
	n.send(daemon.SdNotifyStopping)
}

// ping sends a keepalive at most every half watchdog interval.
func (n *Notifier) ping() {
	if n.watchdog <= 0 {
		return
	}
	now := n.now()

	n.mu.Lock()
	due := now.Sub(n.lastPing) >= n.watchdog/2
	if due {
		n.lastPing = now
	}
	n.mu.Unlock()

	if due {
		n.send(daemon.SdNotifyWatchdog)
	}
}

func (n *Notifier) send(state string) {
	sent, err := n.notify(false, state)
	if err != nil {
		n.logger.Warn("Failed to notify systemd", "state", state, "error", err)
		return
	}
	if sent {
		n.logger.Debug("Notified systemd", "state", state)
	}
}
