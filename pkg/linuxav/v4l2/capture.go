//go:build linux

package v4l2

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrReadNotSupported is returned by Open for devices without read(2) I/O.
var ErrReadNotSupported = errors.New("v4l2: device does not support read I/O")

// Device is an open capture device using read(2) I/O.
type Device struct {
	path string
	fd   int
	info DeviceInfo
	pfd  []unix.PollFd
}

// Open opens a capture device and checks it supports read(2) I/O.
func Open(path string) (*Device, error) {
	fd, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	caps := v4l2Capability{}
	if err := ioctl(fd, vidiocQuerycap, unsafe.Pointer(&caps)); err != nil {
		_ = closeFd(fd)
		return nil, fmt.Errorf("query capabilities of %s: %w", path, err)
	}

	effective := caps.effectiveCaps()
	if effective&v4l2CapVideoCapture == 0 {
		_ = closeFd(fd)
		return nil, fmt.Errorf("%s is not a video capture device", path)
	}
	if effective&v4l2CapReadWrite == 0 {
		_ = closeFd(fd)
		return nil, fmt.Errorf("%s: %w", path, ErrReadNotSupported)
	}

	return &Device{
		path: path,
		fd:   fd,
		info: DeviceInfo{
			DevicePath: path,
			DeviceName: cstr(caps.card[:]),
			Caps:       effective,
		},
		pfd: []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}},
	}, nil
}

// Info returns the identity reported by the driver.
func (d *Device) Info() DeviceInfo {
	return d.info
}

// Formats enumerates the pixel formats of the open device.
func (d *Device) Formats() ([]FormatInfo, error) {
	return enumFormats(d.fd)
}

// SetFormat requests a progressive capture format. The driver may adjust
// the request; the accepted format is returned.
func (d *Device) SetFormat(width, height, pixelFormat uint32) (Format, error) {
	f := v4l2Format{typ: v4l2BufTypeVideoCapture}
	f.pix.width = width
	f.pix.height = height
	f.pix.pixelformat = pixelFormat
	f.pix.field = v4l2FieldNone

	if err := ioctl(d.fd, vidiocSFmt, unsafe.Pointer(&f)); err != nil {
		return Format{}, fmt.Errorf("set format %dx%d %s: %w", width, height, FormatFourCC(pixelFormat), err)
	}

	return Format{
		Width:        f.pix.width,
		Height:       f.pix.height,
		PixelFormat:  f.pix.pixelformat,
		BytesPerLine: f.pix.bytesperline,
		SizeImage:    f.pix.sizeimage,
	}, nil
}

// SetControl sets a single integer control.
func (d *Device) SetControl(id uint32, value int32) error {
	ctrl := v4l2Control{id: id, value: value}
	if err := ioctl(d.fd, vidiocSCtrl, unsafe.Pointer(&ctrl)); err != nil {
		return fmt.Errorf("set control 0x%08x=%d: %w", id, value, err)
	}
	return nil
}

// SetHFlip mirrors the image horizontally in the sensor pipeline.
func (d *Device) SetHFlip(enabled bool) error {
	var v int32
	if enabled {
		v = 1
	}
	return d.SetControl(CIDHFlip, v)
}

// WaitReadable blocks until a frame is ready or timeoutMs elapses.
func (d *Device) WaitReadable(timeoutMs int) (bool, error) {
	for {
		n, err := unix.Poll(d.pfd, timeoutMs)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, nil
		}
		if d.pfd[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return false, syscall.ENODEV
		}
		return true, nil
	}
}

// Read reads one frame into buf. It returns syscall.EAGAIN when no frame
// is ready yet.
func (d *Device) Read(buf []byte) (int, error) {
	for {
		n, err := syscall.Read(d.fd, buf)
		if errors.Is(err, syscall.EINTR) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return n, nil
	}
}

// Close releases the device.
func (d *Device) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := closeFd(d.fd)
	d.fd = -1
	return err
}
