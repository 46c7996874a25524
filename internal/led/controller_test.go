package led

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNoopController(t *testing.T) {
	ctrl := newNoop(testLogger())

	// Should return no errors
	if err := ctrl.Set("act", true, PatternSolid); err != nil {
		t.Errorf("Set() returned error: %v", err)
	}

	// Should return empty lists
	if types := ctrl.Available(); len(types) != 0 {
		t.Errorf("Available() = %v, want empty slice", types)
	}
	if patterns := ctrl.Patterns(); len(patterns) != 0 {
		t.Errorf("Patterns() = %v, want empty slice", patterns)
	}
	if ctrl.StatusLED() != "" {
		t.Errorf("StatusLED() = %q, want empty", ctrl.StatusLED())
	}
}

func TestSysfsController_Available(t *testing.T) {
	tests := []struct {
		name string
		leds map[string]string
		want []string
	}{
		{"Raspberry Pi LEDs", map[string]string{"act": "ACT", "pwr": "PWR"}, []string{"act", "pwr"}},
		{"Orange Pi LEDs", map[string]string{"green": "green_led", "blue": "blue_led"}, []string{"blue", "green"}},
		{"No LEDs", map[string]string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newSysfs(t.TempDir(), tt.leds, "").Available()
			if !slices.Equal(got, tt.want) {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSysfsController_Patterns(t *testing.T) {
	got := newSysfs(t.TempDir(), nil, "").Patterns()
	want := []string{PatternSolid, PatternBlink, PatternHeartbeat}
	if !slices.Equal(got, want) {
		t.Errorf("Patterns() = %v, want %v", got, want)
	}
}

func TestSysfsController_Set_InvalidType(t *testing.T) {
	ctrl := newSysfs(t.TempDir(), map[string]string{"act": "ACT"}, "act")

	if err := ctrl.Set("nonexistent", true, ""); err == nil {
		t.Error("Set() with invalid LED type should return error")
	}
}

func TestSysfsController_Set_MissingLED(t *testing.T) {
	ctrl := newSysfs(t.TempDir(), map[string]string{"act": "ACT"}, "act")

	if err := ctrl.Set("act", true, PatternSolid); err == nil {
		t.Error("Set() on missing sysfs LED should return error")
	}
}

func TestSysfsController_Set(t *testing.T) {
	tests := []struct {
		name           string
		enabled        bool
		pattern        string
		wantTrigger    string
		wantBrightness string
	}{
		{"solid on", true, PatternSolid, "none", "1"},
		{"heartbeat", true, PatternHeartbeat, "heartbeat", ""},
		{"blink", true, PatternBlink, "timer", ""},
		{"off", false, "", "none", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			ledDir := filepath.Join(root, "ACT")
			if err := os.Mkdir(ledDir, 0o755); err != nil {
				t.Fatal(err)
			}

			ctrl := newSysfs(root, map[string]string{"act": "ACT"}, "act")
			if err := ctrl.Set("act", tt.enabled, tt.pattern); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			if got := readAttr(t, ledDir, "trigger"); got != tt.wantTrigger {
				t.Errorf("trigger = %q, want %q", got, tt.wantTrigger)
			}
			if got := readAttr(t, ledDir, "brightness"); got != tt.wantBrightness {
				t.Errorf("brightness = %q, want %q", got, tt.wantBrightness)
			}
		})
	}
}

func readAttr(t *testing.T, dir, attr string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, attr))
	if os.IsNotExist(err) {
		return ""
	}
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
