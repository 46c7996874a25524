package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func resetState() {
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	isInitialized = false
	globalConfig = Config{}
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	resetState()

	var buf bytes.Buffer
	Initialize(Config{
		Level:  "info",
		Format: "text",
		Writer: &buf,
		Modules: map[string]string{
			"capture": "debug",
			"serial":  "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"capture", true, true, true},
		{"serial", false, false, true},
		{"other", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()

			if got := handler.Enabled(context.Background(), slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("module %q: Debug enabled = %v, want %v", tt.module, got, tt.wantDebug)
			}
			if got := handler.Enabled(context.Background(), slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("module %q: Info enabled = %v, want %v", tt.module, got, tt.wantInfo)
			}
			if got := handler.Enabled(context.Background(), slog.LevelWarn); got != tt.wantWarn {
				t.Errorf("module %q: Warn enabled = %v, want %v", tt.module, got, tt.wantWarn)
			}
		})
	}
}

func TestLoggerWritesModuleAttr(t *testing.T) {
	resetState()

	var buf bytes.Buffer
	Initialize(Config{Level: "debug", Format: "text", Writer: &buf})

	GetLogger("codec").Debug("frame encoded", "lines", 98)

	output := buf.String()
	for _, want := range []string{"frame encoded", "module=codec", "lines=98", "level=DEBUG"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %s", want, output)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	resetState()

	var buf bytes.Buffer
	Initialize(Config{Level: "info", Format: "json", Writer: &buf})

	GetLogger("main").Info("started")

	if !strings.Contains(buf.String(), `"module":"main"`) {
		t.Errorf("expected JSON output with module key, got: %s", buf.String())
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetState()

	loggerBefore := GetLogger("capture")
	if loggerBefore.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Logger created before Initialize should NOT have debug enabled")
	}

	var buf bytes.Buffer
	Initialize(Config{
		Level:   "info",
		Format:  "text",
		Writer:  &buf,
		Modules: map[string]string{"capture": "debug"},
	})

	loggerAfter := GetLogger("capture")
	if loggerBefore != loggerAfter {
		t.Error("Logger should be cached - same pointer before and after Initialize")
	}
	if !loggerBefore.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Cached logger should have debug enabled after Initialize")
	}

	loggerBefore.Debug("routed after init")
	if !strings.Contains(buf.String(), "routed after init") {
		t.Errorf("cached logger should write to the initialized writer, got: %s", buf.String())
	}
}

func TestReloadChangesLevels(t *testing.T) {
	resetState()

	var buf bytes.Buffer
	Initialize(Config{Level: "info", Format: "text", Writer: &buf})
	logger := GetLogger("serial")

	if logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should be disabled before reload")
	}

	Reload(Config{Level: "warn", Modules: map[string]string{"serial": "debug"}})

	if !logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("serial module should accept debug after reload")
	}
	if GetLogger("other").Handler().Enabled(context.Background(), slog.LevelInfo) {
		t.Error("new module should inherit reloaded global warn level")
	}
}

func TestMultiHandlerDebugOutput(t *testing.T) {
	var buf bytes.Buffer

	debugHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	infoHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	multi := NewMultiHandler(debugHandler, infoHandler)
	logger := slog.New(multi).With("module", "test")

	logger.Debug("debug only message")

	if count := strings.Count(buf.String(), "debug only message"); count != 1 {
		t.Errorf("Expected 1 debug message, got %d. Output: %s", count, buf.String())
	}

	buf.Reset()
	logger.Info("both")
	if count := strings.Count(buf.String(), "both"); count != 2 {
		t.Errorf("Expected 2 info messages, got %d. Output: %s", count, buf.String())
	}
}

func TestParseLevelValues(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		isNil bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"invalid", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input)
			if tt.isNil {
				if got != nil {
					t.Errorf("parseLevel(%q) = %v, want nil", tt.input, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("parseLevel(%q) = nil, want %v", tt.input, tt.want)
			}
			if *got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, *got, tt.want)
			}
		})
	}
}
