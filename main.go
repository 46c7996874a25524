package main

import (
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/webserialdisplay/cmd"
	"github.com/smazurov/webserialdisplay/internal/config"
	"github.com/smazurov/webserialdisplay/internal/logging"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Camera settings
	CameraKind   string `help:"Camera implementation (v4l2, pattern)" default:"v4l2" toml:"camera.kind" env:"CAMERA_KIND"`
	CameraDevice string `help:"V4L2 device path" default:"/dev/video0" toml:"camera.device" env:"CAMERA_DEVICE"`
	CameraSize   int    `help:"Square frame size in pixels (96 or 240)" default:"96" toml:"camera.size" env:"CAMERA_SIZE"`
	CameraFlipX  bool   `help:"Mirror frames horizontally" default:"true" toml:"camera.flip_x" env:"CAMERA_FLIP_X"`

	// Serial sink settings
	SerialDevice string `help:"Sink device: TTY path, file, or - for stdout" default:"-" toml:"serial.device" env:"SERIAL_DEVICE"`
	SerialBaud   int    `help:"Baud rate for TTY sinks" default:"115200" toml:"serial.baud" env:"SERIAL_BAUD"`

	// Loop settings
	LoopInterval   string `help:"Delay before every capture" default:"2s" toml:"loop.interval" env:"LOOP_INTERVAL"`
	LoopOnError    string `help:"Failure policy (halt, retry)" default:"halt" toml:"loop.on_error" env:"LOOP_ON_ERROR"`
	LoopMaxRetries int    `help:"Consecutive capture retries before halting" default:"3" toml:"loop.max_retries" env:"LOOP_MAX_RETRIES"`
	LoopBackoff    string `help:"Initial delay between capture retries" default:"500ms" toml:"loop.backoff" env:"LOOP_BACKOFF"`

	// Codec settings
	CodecPartial string `help:"Trailing partial chunk handling (reject, short)" default:"reject" toml:"codec.partial" env:"CODEC_PARTIAL"`

	// Diagnostics settings
	DiagnosticsInline bool `help:"Write mem_free lines to the sink after every frame" default:"true" toml:"diagnostics.inline" env:"DIAGNOSTICS_INLINE"`

	// Metrics settings
	MetricsListen string `help:"Prometheus listen address, empty to disable" default:"" toml:"metrics.listen" env:"METRICS_LISTEN"`

	// Features settings
	FeaturesLEDStatus bool `help:"Show loop state on the board status LED" default:"false" toml:"features.led_status" env:"FEATURES_LED_STATUS"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingOutput  string `help:"Log destination (stderr, stdout, none)" default:"stderr" toml:"logging.output" env:"LOGGING_OUTPUT"`
	LoggingCapture string `help:"Capture loop logging level" default:"" toml:"logging.capture" env:"LOGGING_CAPTURE"`
	LoggingCamera  string `help:"Camera logging level" default:"" toml:"logging.camera" env:"LOGGING_CAMERA"`
	LoggingSerial  string `help:"Serial sink logging level" default:"" toml:"logging.serial" env:"LOGGING_SERIAL"`
	LoggingMetrics string `help:"Metrics logging level" default:"" toml:"logging.metrics" env:"LOGGING_METRICS"`
}

// loggingConfig builds the logging configuration from options.
func (o *Options) loggingConfig() logging.Config {
	modules := make(map[string]string)
	for module, level := range map[string]string{
		"capture": o.LoggingCapture,
		"camera":  o.LoggingCamera,
		"serial":  o.LoggingSerial,
		"metrics": o.LoggingMetrics,
	} {
		if level != "" {
			modules[module] = level
		}
	}
	return logging.Config{
		Level:   o.LoggingLevel,
		Format:  o.LoggingFormat,
		Output:  o.LoggingOutput,
		Modules: modules,
	}
}

func main() {
	var root *cobra.Command

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically; CLI flags win.
		loadErr := config.LoadConfig(opts, root)

		logging.Initialize(opts.loggingConfig())
		logger := logging.GetLogger("main")
		if loadErr != nil {
			logger.Warn("Failed to load config", "error", loadErr)
		}

		app := newApp(opts, logger)
		hooks.OnStart(app.start)
		hooks.OnStop(app.stop)
	})
	root = cli.Root()
	root.Use = "webserialdisplay"
	root.Short = "Stream grayscale camera frames over a serial link"

	root.AddCommand(cmd.CreateReceiveCmd())
	root.AddCommand(cmd.CreateDevicesCmd())
	root.AddCommand(cmd.CreateVersionCmd())

	// Run the CLI
	cli.Run()
}
