//go:build linux

package serial

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestRawMode(t *testing.T) {
	t.Run("clears line discipline", func(t *testing.T) {
		term := unix.Termios{
			Iflag: unix.ICRNL | unix.IXON,
			Oflag: unix.OPOST | unix.ONLCR,
			Lflag: unix.ECHO | unix.ICANON | unix.ISIG,
			Cflag: unix.PARENB | unix.CSTOPB | unix.CS7 | unix.B9600,
		}
		rawMode(&term, unix.B115200)

		if term.Oflag&unix.OPOST != 0 {
			t.Error("OPOST still set; newlines would be translated")
		}
		if term.Lflag&(unix.ECHO|unix.ICANON|unix.ISIG) != 0 {
			t.Errorf("Lflag = 0x%x, want canonical mode and echo cleared", term.Lflag)
		}
		if term.Iflag&(unix.ICRNL|unix.IXON) != 0 {
			t.Errorf("Iflag = 0x%x, want input translation cleared", term.Iflag)
		}
	})

	t.Run("8N1 at requested speed", func(t *testing.T) {
		var term unix.Termios
		rawMode(&term, unix.B115200)

		if term.Cflag&unix.CSIZE != unix.CS8 {
			t.Error("character size is not 8 bits")
		}
		if term.Cflag&(unix.PARENB|unix.CSTOPB) != 0 {
			t.Error("parity or two stop bits set")
		}
		if term.Cflag&unix.CBAUD != unix.B115200 {
			t.Errorf("baud bits = 0x%x, want B115200", term.Cflag&unix.CBAUD)
		}
		if term.Ispeed != unix.B115200 || term.Ospeed != unix.B115200 {
			t.Errorf("speeds = %d/%d, want B115200", term.Ispeed, term.Ospeed)
		}
		if term.Cc[unix.VMIN] != 1 || term.Cc[unix.VTIME] != 0 {
			t.Error("VMIN/VTIME not set for blocking byte reads")
		}
	})
}

func TestBaudRatesCoverDefault(t *testing.T) {
	if _, ok := baudRates[DefaultBaudRate]; !ok {
		t.Errorf("default baud rate %d has no termios speed", DefaultBaudRate)
	}
}
