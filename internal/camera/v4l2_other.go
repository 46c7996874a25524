//go:build !linux

package camera

import (
	"errors"

	"github.com/smazurov/webserialdisplay/internal/capture"
	"github.com/smazurov/webserialdisplay/internal/logging"
)

// ErrUnsupported is returned for V4L2 cameras on non-Linux systems.
var ErrUnsupported = errors.New("camera: v4l2 is only supported on linux")

func newV4L2(string, logging.Logger) (capture.Camera, error) {
	return nil, ErrUnsupported
}
