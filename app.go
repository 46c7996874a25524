package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/smazurov/webserialdisplay/internal/camera"
	"github.com/smazurov/webserialdisplay/internal/capture"
	"github.com/smazurov/webserialdisplay/internal/config"
	"github.com/smazurov/webserialdisplay/internal/events"
	"github.com/smazurov/webserialdisplay/internal/framecodec"
	"github.com/smazurov/webserialdisplay/internal/led"
	"github.com/smazurov/webserialdisplay/internal/logging"
	"github.com/smazurov/webserialdisplay/internal/metrics/collectors"
	"github.com/smazurov/webserialdisplay/internal/metrics/exporters"
	"github.com/smazurov/webserialdisplay/internal/serial"
	"github.com/smazurov/webserialdisplay/internal/systemd"
	"github.com/smazurov/webserialdisplay/internal/version"
)

// app owns the streaming service started by the root command.
type app struct {
	opts   *Options
	logger logging.Logger
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newApp(opts *Options, logger logging.Logger) *app {
	ctx, cancel := context.WithCancel(context.Background())
	return &app{
		opts:   opts,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// start runs the capture loop in the foreground. A fatal loop error exits
// the process with status 1.
func (a *app) start() {
	err := a.run(a.ctx)
	close(a.done)
	if err != nil {
		a.logger.Error("Streaming stopped", "error", err)
		os.Exit(1)
	}
}

// stop cancels the loop and waits for cleanup.
func (a *app) stop() {
	a.logger.Info("Shutting down")
	a.cancel()
	<-a.done
}

// streamConfig is the validated form of Options.
type streamConfig struct {
	settings capture.Settings
	policy   capture.ErrorPolicy
	interval time.Duration
	partial  framecodec.PartialPolicy
}

func parseStreamConfig(opts *Options) (streamConfig, error) {
	var cfg streamConfig
	var errs []error

	cfg.settings = capture.SquareSettings(opts.CameraSize)
	cfg.settings.FlipX = opts.CameraFlipX
	if err := cfg.settings.Validate(); err != nil {
		errs = append(errs, err)
	}

	interval, err := time.ParseDuration(opts.LoopInterval)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("loop interval: %w", err))
	case interval < 0:
		errs = append(errs, fmt.Errorf("loop interval %s is negative", interval))
	}
	cfg.interval = interval

	mode, err := capture.ParseOnError(opts.LoopOnError)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.policy = capture.HaltPolicy()
	if mode == capture.OnErrorRetry {
		backoff, backoffErr := time.ParseDuration(opts.LoopBackoff)
		if backoffErr != nil {
			errs = append(errs, fmt.Errorf("loop backoff: %w", backoffErr))
		}
		if opts.LoopMaxRetries < 1 {
			errs = append(errs, fmt.Errorf("loop max retries must be at least 1, got %d", opts.LoopMaxRetries))
		}
		cfg.policy = capture.RetryPolicy(opts.LoopMaxRetries, backoff)
	}

	cfg.partial, err = framecodec.ParsePartialPolicy(opts.CodecPartial)
	if err != nil {
		errs = append(errs, err)
	}

	return cfg, errors.Join(errs...)
}

func (a *app) run(ctx context.Context) error {
	opts := a.opts
	// Tags every capture log line so journal output of one run can be grouped.
	runID := uuid.New().String()
	a.logger.Info("Starting webserialdisplay", append(version.Get().LogAttrs(), "run_id", runID)...)

	cfg, err := parseStreamConfig(opts)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	sinkCfg := serial.Config{Device: opts.SerialDevice, BaudRate: opts.SerialBaud}
	if sinkCfg.IsStdout() && opts.LoggingOutput == "stdout" {
		return errors.New("logging output stdout would interleave with frames on the stdout sink")
	}

	bus := events.New()
	defer func() {
		if closeErr := bus.Close(); closeErr != nil {
			a.logger.Debug("Event bus close error", "error", closeErr)
		}
	}()

	stopWatch := a.watchLogging(ctx)
	defer stopWatch()

	collector := collectors.NewLoopCollector(bus)
	collector.Start()
	defer collector.Stop()

	if opts.MetricsListen != "" {
		srv, listenErr := exporters.Listen(opts.MetricsListen, logging.GetLogger("metrics"))
		if listenErr != nil {
			return fmt.Errorf("metrics listener: %w", listenErr)
		}
		go func() {
			if serveErr := srv.Serve(ctx); serveErr != nil {
				a.logger.Error("Metrics endpoint failed", "error", serveErr)
			}
		}()
	}

	if opts.FeaturesLEDStatus {
		a.logger.Info("LED status enabled, initializing")
		ledLogger := logging.GetLogger("led")
		ledManager := led.NewManager(led.New(ledLogger), bus, ledLogger)
		ledManager.Start()
		defer ledManager.Stop()
	}

	notifier := systemd.NewNotifier(logging.GetLogger("systemd"))
	notifier.Start(bus)
	defer notifier.Stop()

	port, err := serial.Open(sinkCfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := port.Close(); closeErr != nil {
			a.logger.Warn("Failed to close sink", "error", closeErr)
		}
	}()
	logging.GetLogger("serial").Info("Sink opened", "device", port.Name(), "tty", port.IsTTY(), "baud", sinkCfg.BaudRate)

	cam, err := camera.New(opts.CameraKind, opts.CameraDevice, logging.GetLogger("camera"))
	if err != nil {
		return err
	}
	if closer, ok := cam.(io.Closer); ok {
		defer closer.Close()
	}

	enc := framecodec.NewEncoder(framecodec.WithPartialPolicy(cfg.partial))
	// One buffered write per frame; the loop flushes after each encode.
	sink := bufio.NewWriterSize(port, enc.Size(cfg.settings.FrameSize()))

	loopOpts := []capture.Option{
		capture.WithEncoder(enc),
		capture.WithPublisher(bus),
		capture.WithLogger(logging.GetLogger("capture").With("run_id", runID)),
		capture.WithErrorPolicy(cfg.policy),
		capture.WithInterval(cfg.interval),
	}
	if opts.DiagnosticsInline {
		// Written after the frame flush, so lines never split a frame.
		loopOpts = append(loopOpts, capture.WithDiagnostics(port))
	}

	loop, err := capture.New(cfg.settings, cam, sink, loopOpts...)
	if err != nil {
		return err
	}
	return loop.Run(ctx)
}

// watchLogging reloads logging levels when the config file changes. The
// returned function stops the watcher.
func (a *app) watchLogging(ctx context.Context) func() {
	path := a.opts.Config
	if path == "" {
		return func() {}
	}
	if _, err := os.Stat(path); err != nil {
		a.logger.Debug("Config file not found, logging reload disabled", "path", path)
		return func() {}
	}

	watcher := config.NewConfigWatcher(path, config.LoadLogging, a.logger)
	watcher.OnReload(func(cfg logging.Config) {
		logging.Reload(cfg)
		a.logger.Info("Logging levels reloaded", "level", cfg.Level)
	})
	if err := watcher.Start(ctx); err != nil {
		a.logger.Warn("Failed to watch config file", "path", path, "error", err)
		return func() {}
	}
	return func() {
		if err := watcher.Stop(); err != nil {
			a.logger.Debug("Config watcher stop error", "error", err)
		}
	}
}
