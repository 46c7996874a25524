// Package serial opens the byte sink frames are written to: a serial TTY
// configured raw 8N1, or the process stdout when it is itself the console.
package serial

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// DefaultBaudRate matches the USB console of the original device.
const DefaultBaudRate = 115200

// Config selects and configures the sink device.
type Config struct {
	// Device is a TTY path, a plain file or FIFO, or "-"/"stdout".
	Device   string `toml:"device"`
	BaudRate int    `toml:"baud"`
}

// IsStdout reports whether the config selects the process stdout.
func (c Config) IsStdout() bool {
	return c.Device == "" || c.Device == "-" || c.Device == "stdout"
}

// Port is an open sink. It implements io.ReadWriteCloser.
type Port struct {
	name  string
	file  *os.File
	owned bool
	tty   bool

	mu      sync.Mutex
	closed  bool
	restore func() error
}

// Open opens the configured device. TTYs are switched to raw 8N1 at the
// configured baud rate and restored on Close; other files are used as is.
func Open(cfg Config) (*Port, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.BaudRate < 0 {
		return nil, fmt.Errorf("serial: invalid baud rate %d", cfg.BaudRate)
	}

	p := &Port{name: cfg.Device}
	if cfg.IsStdout() {
		p.name = "stdout"
		p.file = os.Stdout
	} else {
		f, err := openDevice(cfg.Device)
		if err != nil {
			return nil, fmt.Errorf("serial: open %s: %w", cfg.Device, err)
		}
		p.file = f
		p.owned = true
	}

	restore, tty, err := makeRaw(p.file, cfg.BaudRate)
	if err != nil {
		if p.owned {
			_ = p.file.Close()
		}
		return nil, fmt.Errorf("serial: configure %s: %w", p.name, err)
	}
	p.tty = tty
	p.restore = restore
	return p, nil
}

// Name returns the device name.
func (p *Port) Name() string {
	return p.name
}

// IsTTY reports whether termios settings were applied.
func (p *Port) IsTTY() bool {
	return p.tty
}

// Write writes p to the device. Writes are append-only; nothing is read back.
func (p *Port) Write(b []byte) (int, error) {
	return p.file.Write(b)
}

// Read reads from the device.
func (p *Port) Read(b []byte) (int, error) {
	return p.file.Read(b)
}

// Close restores terminal settings and closes the device. Stdout is left
// open.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if p.restore != nil {
		if err := p.restore(); err != nil {
			errs = append(errs, fmt.Errorf("restore termios: %w", err))
		}
	}
	if p.owned {
		if err := p.file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
