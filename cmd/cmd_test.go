package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smazurov/webserialdisplay/internal/framecodec"
)

func TestPrintDevices(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var out bytes.Buffer
		if err := printDevices(&out, nil); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out.String(), "No V4L2 capture devices") {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("table", func(t *testing.T) {
		var out bytes.Buffer
		err := printDevices(&out, []device{
			{Path: "/dev/video0", Name: "UVC Camera", ID: "usb-cam-video-index0", CanRead: true, Grayscale: true},
		})
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("got %d lines, want header and one row", len(lines))
		}
		for _, want := range []string{"/dev/video0", "UVC Camera", "yes", "usb-cam-video-index0"} {
			if !strings.Contains(lines[1], want) {
				t.Errorf("row %q missing %q", lines[1], want)
			}
		}
	})
}

func TestReceiveCmd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "capture.txt")

	var stream bytes.Buffer
	for range 2 {
		if err := framecodec.Encode(&stream, make([]byte, 96*96)); err != nil {
			t.Fatal(err)
		}
		stream.WriteString("mem_free 1024\n")
	}
	if err := os.WriteFile(input, stream.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "frames")
	cmd := CreateReceiveCmd()
	cmd.SetArgs([]string{"--input", input, "--output", out, "--format", "pgm"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, name := range []string{"frame_000001.pgm", "frame_000002.pgm"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := CreateVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "webserialdisplay ") {
		t.Errorf("output = %q", out.String())
	}
}
