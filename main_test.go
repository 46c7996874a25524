package main

import (
	"testing"
	"time"

	"github.com/smazurov/webserialdisplay/internal/capture"
	"github.com/smazurov/webserialdisplay/internal/framecodec"
)

func defaultOptions() *Options {
	return &Options{
		CameraKind:     "pattern",
		CameraSize:     96,
		CameraFlipX:    true,
		SerialDevice:   "-",
		SerialBaud:     115200,
		LoopInterval:   "2s",
		LoopOnError:    "halt",
		LoopMaxRetries: 3,
		LoopBackoff:    "500ms",
		CodecPartial:   "reject",
		LoggingLevel:   "info",
		LoggingFormat:  "text",
		LoggingOutput:  "stderr",
	}
}

func TestParseStreamConfigDefaults(t *testing.T) {
	cfg, err := parseStreamConfig(defaultOptions())
	if err != nil {
		t.Fatalf("parseStreamConfig() error = %v", err)
	}

	if cfg.settings != capture.DefaultSettings() {
		t.Errorf("settings = %+v, want %+v", cfg.settings, capture.DefaultSettings())
	}
	if cfg.interval != capture.DefaultInterval {
		t.Errorf("interval = %v, want %v", cfg.interval, capture.DefaultInterval)
	}
	if cfg.policy != capture.HaltPolicy() {
		t.Errorf("policy = %+v, want halt", cfg.policy)
	}
	if cfg.partial != framecodec.PartialReject {
		t.Errorf("partial = %v, want reject", cfg.partial)
	}
}

func TestParseStreamConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
		check   func(*testing.T, streamConfig)
	}{
		{
			name:   "240 without flip",
			modify: func(o *Options) { o.CameraSize = 240; o.CameraFlipX = false },
			check: func(t *testing.T, c streamConfig) {
				if c.settings.Width != 240 || c.settings.FlipX {
					t.Errorf("settings = %+v", c.settings)
				}
			},
		},
		{
			name: "retry policy",
			modify: func(o *Options) {
				o.LoopOnError = "retry"
				o.LoopMaxRetries = 5
				o.LoopBackoff = "1s"
			},
			check: func(t *testing.T, c streamConfig) {
				if c.policy != capture.RetryPolicy(5, time.Second) {
					t.Errorf("policy = %+v", c.policy)
				}
			},
		},
		{
			name:   "short line partial policy",
			modify: func(o *Options) { o.CodecPartial = "short" },
			check: func(t *testing.T, c streamConfig) {
				if c.partial != framecodec.PartialShortLine {
					t.Errorf("partial = %v", c.partial)
				}
			},
		},
		{name: "unsupported size", modify: func(o *Options) { o.CameraSize = 128 }, wantErr: true},
		{name: "bad interval", modify: func(o *Options) { o.LoopInterval = "soon" }, wantErr: true},
		{name: "negative interval", modify: func(o *Options) { o.LoopInterval = "-1s" }, wantErr: true},
		{name: "unknown error mode", modify: func(o *Options) { o.LoopOnError = "ignore" }, wantErr: true},
		{
			name:    "retry without attempts",
			modify:  func(o *Options) { o.LoopOnError = "retry"; o.LoopMaxRetries = 0 },
			wantErr: true,
		},
		{name: "unknown partial policy", modify: func(o *Options) { o.CodecPartial = "pad" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			tt.modify(opts)
			cfg, err := parseStreamConfig(opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseStreamConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoggingConfig(t *testing.T) {
	opts := defaultOptions()
	opts.LoggingCapture = "debug"

	cfg := opts.loggingConfig()
	if cfg.Output != "stderr" {
		t.Errorf("Output = %q, want stderr", cfg.Output)
	}
	if len(cfg.Modules) != 1 || cfg.Modules["capture"] != "debug" {
		t.Errorf("Modules = %v, want only capture=debug", cfg.Modules)
	}
}
