package led

import (
	"sync"

	"github.com/smazurov/webserialdisplay/internal/events"
	"github.com/smazurov/webserialdisplay/internal/logging"
)

// Subscriber is the part of the event bus the manager needs.
type Subscriber interface {
	Subscribe(handler any) func()
}

// indication is what the status LED shows for a loop state.
type indication struct {
	enabled bool
	pattern string
}

// indications maps capture loop states to LED output. A streaming loop
// beats; a halted loop blinks; a stopped loop is dark.
var indications = map[string]indication{
	"init":       {true, PatternSolid},
	"ready":      {true, PatternHeartbeat},
	"capturing":  {true, PatternHeartbeat},
	"sending":    {true, PatternHeartbeat},
	"reclaiming": {true, PatternHeartbeat},
	"halted":     {true, PatternBlink},
	"stopped":    {false, ""},
}

// Manager subscribes to loop state events and drives the status LED.
type Manager struct {
	controller  Controller
	bus         Subscriber
	unsubscribe func()
	logger      logging.Logger

	mu      sync.Mutex
	current indication
	set     bool
}

// NewManager creates a new LED manager that reacts to loop state changes
func NewManager(controller Controller, bus Subscriber, logger logging.Logger) *Manager {
	return &Manager{
		controller: controller,
		bus:        bus,
		logger:     logger,
	}
}

// Start begins listening for loop state change events
func (m *Manager) Start() {
	m.unsubscribe = m.bus.Subscribe(func(e events.LoopStateChangedEvent) {
		m.handleEvent(e)
	})
	m.logger.Info("LED manager started", "status_led", m.controller.StatusLED())
}

// Stop unsubscribes and turns the status LED off.
func (m *Manager) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.apply(indications["stopped"])
	m.logger.Info("LED manager stopped")
}

func (m *Manager) handleEvent(e events.LoopStateChangedEvent) {
	ind, ok := indications[e.To]
	if !ok {
		m.logger.Debug("Ignoring unknown loop state", "state", e.To)
		return
	}
	m.apply(ind)
}

// apply sets the LED unless it already shows ind. The loop changes state
// several times per frame while the indication stays the same.
func (m *Manager) apply(ind indication) {
	ledType := m.controller.StatusLED()
	if ledType == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.set && m.current == ind {
		return
	}

	if err := m.controller.Set(ledType, ind.enabled, ind.pattern); err != nil {
		m.logger.Warn("Failed to set status LED", "led", ledType, "pattern", ind.pattern, "error", err)
		return
	}
	m.current = ind
	m.set = true
	m.logger.Debug("Status LED updated", "led", ledType, "enabled", ind.enabled, "pattern", ind.pattern)
}

// GetController returns the underlying LED controller
func (m *Manager) GetController() Controller {
	return m.controller
}
