// Package logging provides structured logging with per-module log level configuration.
//
// # Overview
//
// The logging system uses Go's slog package with output routing chosen
// around the frame stream:
//   - Logs to stderr by default, because stdout is frequently the serial
//     console that carries encoded frames
//   - Logs to systemd journal when available
//   - Logs to both when both are available
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",   // Global log level: debug, info, warn, error
//		Format: "text",   // Output format: text or json
//		Output: "stderr", // stderr, stdout or none
//		Modules: map[string]string{
//			"capture": "debug", // Per-module overrides
//			"serial":  "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("capture")
//	logger.Info("Frame sent", "frame", n, "bytes", size)
//
// Levels can be changed at runtime with Reload; cached loggers pick up
// the new level because each module owns a slog.LevelVar.
//
// # Viewing Logs
//
//	journalctl -t webserialdisplay -f
//	journalctl -t webserialdisplay MODULE=capture
//
// # Configuration
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//	output = "stderr"
//	capture = "debug"
package logging
