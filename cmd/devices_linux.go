//go:build linux

package cmd

import (
	"github.com/smazurov/webserialdisplay/internal/logging"
	"github.com/smazurov/webserialdisplay/pkg/linuxav/v4l2"
)

func listDevices() ([]device, error) {
	logger := logging.GetLogger("camera")

	found, err := v4l2.FindDevices()
	if err != nil {
		return nil, err
	}

	devices := make([]device, 0, len(found))
	for _, info := range found {
		d := device{
			Path:    info.DevicePath,
			Name:    info.DeviceName,
			ID:      info.DeviceID,
			CanRead: info.CanRead(),
		}

		formats, fmtErr := v4l2.GetFormats(info.DevicePath)
		if fmtErr != nil {
			logger.Debug("Failed to enumerate formats", "device", info.DevicePath, "error", fmtErr)
		}
		for _, f := range formats {
			if f.PixelFormat == v4l2.PixFmtGrey || f.PixelFormat == v4l2.PixFmtYUYV {
				d.Grayscale = true
				break
			}
		}
		devices = append(devices, d)
	}
	return devices, nil
}
