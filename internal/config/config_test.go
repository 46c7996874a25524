package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/cobra"
)

// TestConfig represents a test configuration structure.
type TestConfig struct {
	Config string `help:"Config file path"`

	CameraKind   string   `toml:"camera.kind" env:"CAMERA_KIND"`
	CameraSize   int      `toml:"camera.size" env:"CAMERA_SIZE"`
	CameraFlipX  bool     `toml:"camera.flip_x" env:"CAMERA_FLIP_X"`
	SerialDevice string   `toml:"serial.device" env:"SERIAL_DEVICE"`
	Tags         []string `toml:"test.tags" env:"TAGS"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

const sampleTOML = `
[camera]
kind = "pattern"
size = 240
flip_x = false

[serial]
device = "/dev/ttyGS0"

[test]
tags = ["a", "b"]
`

func TestLoadConfigFromTOML(t *testing.T) {
	cfg := &TestConfig{Config: writeConfig(t, sampleTOML), CameraFlipX: true}

	if err := LoadConfig(cfg, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	want := TestConfig{
		Config:       cfg.Config,
		CameraKind:   "pattern",
		CameraSize:   240,
		CameraFlipX:  false,
		SerialDevice: "/dev/ttyGS0",
		Tags:         []string{"a", "b"},
	}
	if !reflect.DeepEqual(*cfg, want) {
		t.Errorf("LoadConfig() = %+v, want %+v", *cfg, want)
	}
}

func TestLoadConfigFromEnvVars(t *testing.T) {
	t.Setenv("WEBSERIAL_CAMERA_KIND", "v4l2")
	t.Setenv("WEBSERIAL_CAMERA_SIZE", "96")
	t.Setenv("WEBSERIAL_CAMERA_FLIP_X", "true")
	t.Setenv("WEBSERIAL_TAGS", "x, y ,z")

	cfg := &TestConfig{}
	if err := LoadConfig(cfg, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.CameraKind != "v4l2" || cfg.CameraSize != 96 || !cfg.CameraFlipX {
		t.Errorf("env values not applied: %+v", cfg)
	}
	if want := []string{"x", "y", "z"}; !reflect.DeepEqual(cfg.Tags, want) {
		t.Errorf("Tags = %v, want %v", cfg.Tags, want)
	}
}

func TestLoadConfigEnvOverridesToml(t *testing.T) {
	t.Setenv("WEBSERIAL_CAMERA_SIZE", "96")

	cfg := &TestConfig{Config: writeConfig(t, sampleTOML)}
	if err := LoadConfig(cfg, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.CameraSize != 96 {
		t.Errorf("CameraSize = %d, want env value 96", cfg.CameraSize)
	}
	if cfg.CameraKind != "pattern" {
		t.Errorf("CameraKind = %q, want TOML value pattern", cfg.CameraKind)
	}
}

func TestLoadConfigCLIOverridesAll(t *testing.T) {
	t.Setenv("WEBSERIAL_SERIAL_DEVICE", "/dev/ttyACM0")

	cfg := &TestConfig{Config: writeConfig(t, sampleTOML)}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&cfg.SerialDevice, "serial-device", "-", "")
	if err := cmd.Flags().Set("serial-device", "/dev/ttyUSB0"); err != nil {
		t.Fatal(err)
	}

	if err := LoadConfig(cfg, cmd); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.SerialDevice != "/dev/ttyUSB0" {
		t.Errorf("SerialDevice = %q, want CLI value", cfg.SerialDevice)
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	t.Run("bad env int", func(t *testing.T) {
		t.Setenv("WEBSERIAL_CAMERA_SIZE", "large")
		if err := LoadConfig(&TestConfig{}, nil); err == nil {
			t.Error("expected error for non-numeric size")
		}
	})

	t.Run("TOML type mismatch", func(t *testing.T) {
		cfg := &TestConfig{Config: writeConfig(t, "[camera]\nsize = \"big\"\n")}
		if err := LoadConfig(cfg, nil); err == nil {
			t.Error("expected error for string size")
		}
	})

	t.Run("invalid TOML", func(t *testing.T) {
		cfg := &TestConfig{Config: writeConfig(t, "[camera\nsize = 1")}
		if err := LoadConfig(cfg, nil); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("not a pointer", func(t *testing.T) {
		if err := LoadConfig(TestConfig{}, nil); err == nil {
			t.Error("expected error for non-pointer options")
		}
	})
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg := &TestConfig{Config: filepath.Join(t.TempDir(), "absent.toml"), CameraKind: "v4l2"}

	if err := LoadConfig(cfg, nil); err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if cfg.CameraKind != "v4l2" {
		t.Errorf("defaults changed: %+v", cfg)
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"Config":            "config",
		"SerialDevice":      "serial-device",
		"LoopOnError":       "loop-on-error",
		"MetricsListen":     "metrics-listen",
		"FeaturesLEDStatus": "features-led-status",
		"CameraFlipX":       "camera-flip-x",
	}
	for in, want := range tests {
		if got := fieldNameToFlag(in); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetNestedValue(t *testing.T) {
	data := map[string]any{
		"loop": map[string]any{"interval": "2s"},
		"flat": "value",
	}

	tests := []struct {
		path string
		want any
	}{
		{"loop.interval", "2s"},
		{"flat", "value"},
		{"loop.missing", nil},
		{"flat.deeper", nil},
	}
	for _, tt := range tests {
		if got := getNestedValue(data, tt.path); got != tt.want {
			t.Errorf("getNestedValue(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestLoadLogging(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"
format = "json"
output = "stdout"
capture = "warn"
serial = "error"
`)

	cfg, err := LoadLogging(path)
	if err != nil {
		t.Fatalf("LoadLogging failed: %v", err)
	}
	if cfg.Level != "debug" || cfg.Format != "json" || cfg.Output != "stdout" {
		t.Errorf("global settings = %+v", cfg)
	}
	want := map[string]string{"capture": "warn", "serial": "error"}
	if !reflect.DeepEqual(cfg.Modules, want) {
		t.Errorf("Modules = %v, want %v", cfg.Modules, want)
	}
}

func TestLoadLoggingConfigDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "absent.toml"), writeConfig(t, "not toml [")} {
		cfg := LoadLoggingConfig(path)
		if cfg.Level != "info" || cfg.Format != "text" || cfg.Output != "stderr" {
			t.Errorf("LoadLoggingConfig(%q) = %+v, want defaults", path, cfg)
		}
	}
}
