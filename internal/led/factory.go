package led

import (
	"os"
	"strings"

	"github.com/smazurov/webserialdisplay/internal/logging"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// board maps a device tree model to its LEDs.
type board struct {
	match  string
	leds   map[string]string // LED type -> sysfs name
	status string
}

var boards = []board{
	{match: "Raspberry Pi", leds: map[string]string{"act": "ACT", "pwr": "PWR"}, status: "act"},
	{match: "NanoPC-T6", leds: map[string]string{"user": "usr_led", "system": "sys_led"}, status: "system"},
	{match: "Orange Pi", leds: map[string]string{"blue": "blue_led", "green": "green_led"}, status: "green"},
}

// New creates a new LED controller based on board detection
// Falls back to no-op controller if LEDs are not available.
func New(logger logging.Logger) Controller {
	return newForModel(detectBoard(), sysfsLEDPath, logger)
}

func newForModel(model, root string, logger logging.Logger) Controller {
	if logger == nil {
		logger = logging.GetLogger("led")
	}
	logger.Info("Detecting board for LED control", "board_model", model)

	for _, b := range boards {
		if strings.Contains(model, b.match) {
			logger.Info("Using sysfs LED controller", "board", b.match, "status_led", b.status)
			return newSysfs(root, b.leds, b.status)
		}
	}

	logger.Info("No LED support detected, using no-op controller", "board_model", model)
	return newNoop(logger)
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}

	// Device tree model contains null bytes, trim them
	return strings.TrimRight(string(data), "\x00")
}
