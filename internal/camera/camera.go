// Package camera provides the sensor implementations driven by the capture
// loop: a V4L2 device on Linux and a synthetic test pattern.
package camera

import (
	"fmt"

	"github.com/smazurov/webserialdisplay/internal/capture"
	"github.com/smazurov/webserialdisplay/internal/logging"
)

// Camera kinds accepted by New.
const (
	KindV4L2    = "v4l2"
	KindPattern = "pattern"
)

// DefaultDevice is the V4L2 node used when none is configured.
const DefaultDevice = "/dev/video0"

// New creates a camera of the given kind. An empty kind selects V4L2.
func New(kind, device string, logger logging.Logger) (capture.Camera, error) {
	if logger == nil {
		logger = logging.GetLogger("camera")
	}

	switch kind {
	case KindV4L2, "":
		if device == "" {
			device = DefaultDevice
		}
		logger.Info("Using V4L2 camera", "device", device)
		return newV4L2(device, logger)
	case KindPattern:
		logger.Info("Using synthetic pattern camera")
		return NewPattern(), nil
	default:
		return nil, fmt.Errorf("camera: unknown kind %q (want %s or %s)", kind, KindV4L2, KindPattern)
	}
}

// flipRows mirrors each row of a width x height grayscale frame in place.
func flipRows(buf []byte, width, height int) {
	for y := range height {
		row := buf[y*width : (y+1)*width]
		for i, j := 0, width-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = row[j], row[i]
		}
	}
}

// extractLuma copies the Y samples of a packed YUYV frame into dst.
// stride is the source bytes per line.
func extractLuma(dst, src []byte, width, height, stride int) {
	for y := range height {
		line := src[y*stride:]
		out := dst[y*width : (y+1)*width]
		for x := range out {
			out[x] = line[2*x]
		}
	}
}

// copyRows removes line padding from a GREY frame.
func copyRows(dst, src []byte, width, height, stride int) {
	for y := range height {
		copy(dst[y*width:(y+1)*width], src[y*stride:y*stride+width])
	}
}
