//go:build linux

package camera

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/smazurov/webserialdisplay/internal/capture"
	"github.com/smazurov/webserialdisplay/internal/logging"
	"github.com/smazurov/webserialdisplay/pkg/linuxav/v4l2"
)

// pollTimeoutMs bounds each wait so cancellation is observed promptly.
const pollTimeoutMs = 200

// V4L2 captures grayscale frames from a Video4Linux2 device with read(2).
type V4L2 struct {
	path     string
	logger   logging.Logger
	dev      *v4l2.Device
	settings capture.Settings
	format   v4l2.Format
	// scratch holds the raw frame when it cannot be read straight into the
	// caller buffer (YUYV or padded lines). Allocated once in Configure.
	scratch  []byte
	softFlip bool
}

func newV4L2(path string, logger logging.Logger) (capture.Camera, error) {
	return &V4L2{path: path, logger: logger}, nil
}

// Configure opens the device and negotiates size, pixel format and flip.
func (c *V4L2) Configure(s capture.Settings) error {
	if c.dev != nil {
		return errors.New("v4l2 camera already configured")
	}

	dev, err := v4l2.Open(c.path)
	if err != nil {
		return err
	}

	format, err := negotiate(dev, uint32(s.Width), uint32(s.Height))
	if err != nil {
		_ = dev.Close()
		return err
	}

	c.dev = dev
	c.settings = s
	c.format = format
	c.scratch = nil
	if format.PixelFormat != v4l2.PixFmtGrey || int(format.BytesPerLine) != s.Width ||
		int(format.SizeImage) != s.FrameSize() {
		c.scratch = make([]byte, format.SizeImage)
	}

	c.softFlip = false
	if err := dev.SetHFlip(s.FlipX); err != nil {
		if s.FlipX {
			c.softFlip = true
			c.logger.Warn("Driver refused horizontal flip, mirroring in software", "device", c.path, "error", err)
		} else {
			c.logger.Debug("Failed to clear horizontal flip", "device", c.path, "error", err)
		}
	}

	c.logger.Info("V4L2 format negotiated",
		"device", c.path,
		"card", dev.Info().DeviceName,
		"width", format.Width,
		"height", format.Height,
		"pixel_format", v4l2.FormatFourCC(format.PixelFormat),
		"bytes_per_line", format.BytesPerLine,
		"size_image", format.SizeImage,
		"software_flip", c.softFlip)
	return nil
}

// negotiate prefers GREY and falls back to YUYV. The driver must accept the
// exact frame size.
func negotiate(dev *v4l2.Device, width, height uint32) (v4l2.Format, error) {
	var lastErr error
	for _, pixfmt := range []uint32{v4l2.PixFmtGrey, v4l2.PixFmtYUYV} {
		format, err := dev.SetFormat(width, height, pixfmt)
		if err != nil {
			lastErr = err
			continue
		}
		if format.PixelFormat != pixfmt {
			lastErr = fmt.Errorf("driver substituted %s for %s",
				v4l2.FormatFourCC(format.PixelFormat), v4l2.FormatFourCC(pixfmt))
			continue
		}
		if format.Width != width || format.Height != height {
			return v4l2.Format{}, fmt.Errorf("driver adjusted %dx%d to %dx%d", width, height, format.Width, format.Height)
		}
		bpp := uint32(1)
		if pixfmt == v4l2.PixFmtYUYV {
			bpp = 2
		}
		if format.BytesPerLine < width*bpp || format.SizeImage < format.BytesPerLine*height {
			return v4l2.Format{}, fmt.Errorf("driver reported inconsistent geometry: %d bytes per line, %d bytes per image",
				format.BytesPerLine, format.SizeImage)
		}
		return format, nil
	}
	return v4l2.Format{}, fmt.Errorf("no grayscale capable format: %w", lastErr)
}

// Capture blocks until a frame has been read into buf.
func (c *V4L2) Capture(ctx context.Context, buf []byte) error {
	if c.dev == nil {
		return errors.New("v4l2 camera not configured")
	}
	w, h := c.settings.Width, c.settings.Height
	if len(buf) != w*h {
		return fmt.Errorf("buffer is %d bytes, want %d", len(buf), w*h)
	}

	target := buf
	if c.scratch != nil {
		target = c.scratch
	}
	want := len(target)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ready, err := c.dev.WaitReadable(pollTimeoutMs)
		if err != nil {
			return classify("poll", err)
		}
		if !ready {
			continue
		}

		n, err := c.dev.Read(target)
		if errors.Is(err, syscall.EAGAIN) {
			continue
		}
		if err != nil {
			return classify("read", err)
		}
		if n < want {
			return fmt.Errorf("short frame of %d bytes, want %d: %w", n, want, capture.ErrTransient)
		}
		break
	}

	if c.scratch != nil {
		stride := int(c.format.BytesPerLine)
		if c.format.PixelFormat == v4l2.PixFmtYUYV {
			extractLuma(buf, c.scratch, w, h, stride)
		} else {
			copyRows(buf, c.scratch, w, h, stride)
		}
	}
	if c.softFlip {
		flipRows(buf, w, h)
	}
	return nil
}

// Close releases the device.
func (c *V4L2) Close() error {
	if c.dev == nil {
		return nil
	}
	err := c.dev.Close()
	c.dev = nil
	return err
}

// classify marks recoverable bus faults as transient. A vanished device is
// permanent.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, syscall.EIO), errors.Is(err, syscall.EAGAIN),
		errors.Is(err, syscall.EINTR), errors.Is(err, syscall.ETIMEDOUT):
		return fmt.Errorf("%s: %w: %w", op, capture.ErrTransient, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
