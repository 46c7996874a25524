package led

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs implements Controller using Linux sysfs LED interface
type sysfs struct {
	root   string
	leds   map[string]string // LED type -> sysfs name mapping
	status string
}

func newSysfs(root string, leds map[string]string, status string) *sysfs {
	return &sysfs{root: root, leds: leds, status: status}
}

// Set controls an LED's state and optional pattern
func (s *sysfs) Set(ledType string, enabled bool, pattern string) error {
	sysfsName, ok := s.leds[ledType]
	if !ok {
		return fmt.Errorf("LED type %q not supported on this board", ledType)
	}

	ledPath := filepath.Join(s.root, sysfsName)
	if _, err := os.Stat(ledPath); os.IsNotExist(err) {
		return fmt.Errorf("LED %q not found at %s", ledType, ledPath)
	}

	if !enabled {
		pattern = PatternSolid
	}

	if pattern != "" {
		if err := writeAttr(ledPath, "trigger", triggerFor(pattern)); err != nil {
			return fmt.Errorf("failed to set LED trigger: %w", err)
		}
	}

	// Triggers drive brightness themselves; only a manual LED needs it.
	if pattern == PatternSolid || pattern == "" {
		brightness := "0"
		if enabled {
			brightness = "1"
		}
		if err := writeAttr(ledPath, "brightness", brightness); err != nil {
			return fmt.Errorf("failed to set LED brightness: %w", err)
		}
	}

	return nil
}

// triggerFor maps a pattern to a kernel LED trigger.
func triggerFor(pattern string) string {
	switch pattern {
	case PatternSolid:
		return "none"
	case PatternBlink:
		return "timer"
	case PatternHeartbeat:
		return "heartbeat"
	default:
		return pattern // Allow raw trigger names
	}
}

func writeAttr(ledPath, attr, value string) error {
	return os.WriteFile(filepath.Join(ledPath, attr), []byte(value), 0o644)
}

// Available returns the list of LED types supported by this controller
func (s *sysfs) Available() []string {
	types := make([]string, 0, len(s.leds))
	for ledType := range s.leds {
		types = append(types, ledType)
	}
	slices.Sort(types)
	return types
}

// Patterns returns the list of patterns supported by this controller
func (s *sysfs) Patterns() []string {
	return []string{PatternSolid, PatternBlink, PatternHeartbeat}
}

// StatusLED returns the board's status LED.
func (s *sysfs) StatusLED() string {
	return s.status
}
