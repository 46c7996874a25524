package camera

import (
	"context"
	"fmt"
	"sync"

	"github.com/smazurov/webserialdisplay/internal/capture"
)

// Pattern is a synthetic camera producing a diagonal gradient that moves
// one pixel per frame. Output is deterministic for a given frame count.
type Pattern struct {
	mu       sync.Mutex
	settings capture.Settings
	frame    int
}

// NewPattern returns an unconfigured pattern camera.
func NewPattern() *Pattern {
	return &Pattern{}
}

// Configure records the frame geometry.
func (p *Pattern) Configure(s capture.Settings) error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("pattern: invalid size %dx%d", s.Width, s.Height)
	}
	p.mu.Lock()
	p.settings = s
	p.frame = 0
	p.mu.Unlock()
	return nil
}

// Capture renders the next frame into buf.
func (p *Pattern) Capture(ctx context.Context, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	w, h := p.settings.Width, p.settings.Height
	if w == 0 {
		return fmt.Errorf("pattern: capture before configure")
	}
	if len(buf) != w*h {
		return fmt.Errorf("pattern: buffer is %d bytes, want %d", len(buf), w*h)
	}

	scale := 255 / max(w+h-2, 1)
	for y := range h {
		for x := range w {
			buf[y*w+x] = byte(((x+y)*scale + p.frame) & 0xFF)
		}
	}
	if p.settings.FlipX {
		flipRows(buf, w, h)
	}
	p.frame++
	return nil
}

// Frames returns how many frames have been rendered since Configure.
func (p *Pattern) Frames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}
