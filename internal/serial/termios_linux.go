//go:build linux

package serial

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

var baudRates = map[int]uint32{
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	2000000: unix.B2000000,
}

func openDevice(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY, 0)
}

// makeRaw applies raw 8N1 settings when f is a terminal. It reports false
// with no error for regular files and pipes.
func makeRaw(f *os.File, baud int) (func() error, bool, error) {
	fd := int(f.Fd())

	orig, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		if errors.Is(err, unix.ENOTTY) || errors.Is(err, unix.EINVAL) {
			return nil, false, nil
		}
		return nil, false, err
	}

	speed, ok := baudRates[baud]
	if !ok {
		return nil, true, fmt.Errorf("unsupported baud rate %d", baud)
	}

	t := *orig
	rawMode(&t, speed)
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &t); err != nil {
		return nil, true, err
	}

	restore := func() error {
		return unix.IoctlSetTermios(fd, unix.TCSETS, orig)
	}
	return restore, true, nil
}

// rawMode mirrors cfmakeraw(3) plus 8N1 framing without flow control.
func rawMode(t *unix.Termios, speed uint32) {
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CRTSCTS | unix.CBAUD
	t.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL | speed
	t.Ispeed = speed
	t.Ospeed = speed
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
}
