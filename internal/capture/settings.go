package capture

import (
	"fmt"
	"slices"

	"github.com/smazurov/webserialdisplay/internal/framecodec"
)

// ColorMode is the sensor output color mode.
type ColorMode string

// Color modes. Only grayscale is streamed.
const (
	ColorGrayscale ColorMode = "grayscale"
	ColorRGB565    ColorMode = "rgb565"
)

// SupportedSizes lists the square frame dimensions the pipeline accepts.
var SupportedSizes = []int{96, 240}

// Settings configures the camera once at startup.
type Settings struct {
	Width     int
	Height    int
	FlipX     bool
	ColorMode ColorMode
}

// DefaultSettings returns a 96x96 horizontally flipped grayscale setup.
func DefaultSettings() Settings {
	return SquareSettings(96)
}

// SquareSettings returns flipped grayscale settings for a size x size frame.
func SquareSettings(size int) Settings {
	return Settings{
		Width:     size,
		Height:    size,
		FlipX:     true,
		ColorMode: ColorGrayscale,
	}
}

// FrameSize returns the pixel buffer length in bytes (1 byte per pixel).
func (s Settings) FrameSize() int {
	return s.Width * s.Height
}

// Validate checks the settings against what the pipeline can stream.
func (s Settings) Validate() error {
	if s.Width != s.Height {
		return fmt.Errorf("capture: frame must be square, got %dx%d", s.Width, s.Height)
	}
	if !slices.Contains(SupportedSizes, s.Width) {
		return fmt.Errorf("capture: unsupported frame size %d, want one of %v", s.Width, SupportedSizes)
	}
	if s.ColorMode != ColorGrayscale {
		return fmt.Errorf("capture: unsupported color mode %q", s.ColorMode)
	}
	if s.FrameSize()%framecodec.Stride != 0 {
		return fmt.Errorf("capture: frame size %d not a multiple of stride %d", s.FrameSize(), framecodec.Stride)
	}
	return nil
}
