package display

import (
	"bufio"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
)

// Output formats supported by Saver.
const (
	FormatPNG = "png"
	FormatPGM = "pgm"
)

// Saver writes decoded frames to a directory as numbered image files.
// It is safe for concurrent use.
type Saver struct {
	dir     string
	format  string
	saved   atomic.Uint64
	dropped atomic.Uint64
}

// NewSaver creates dir if needed and returns a saver writing format files.
func NewSaver(dir, format string) (*Saver, error) {
	if format != FormatPNG && format != FormatPGM {
		return nil, fmt.Errorf("display: unsupported format %q (must be %s or %s)", format, FormatPNG, FormatPGM)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("display: create output directory: %w", err)
	}
	return &Saver{dir: dir, format: format}, nil
}

// Save writes frame seq as frame_{seq:06d}.{ext} and returns the path.
func (s *Saver) Save(seq uint64, luma []byte, size int) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("frame_%06d.%s", seq, s.format))
	if err := s.write(path, luma, size); err != nil {
		s.dropped.Add(1)
		return "", err
	}
	s.saved.Add(1)
	return path, nil
}

func (s *Saver) write(path string, luma []byte, size int) error {
	img, err := Gray(luma, size)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("display: create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	switch s.format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatPGM:
		err = WritePGM(w, luma, size)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("display: encode %s: %w", path, err)
	}
	return nil
}

// Stats returns the number of saved and dropped frames.
func (s *Saver) Stats() (saved, dropped uint64) {
	return s.saved.Load(), s.dropped.Load()
}

// WritePGM writes a binary (P5) portable graymap.
func WritePGM(w io.Writer, luma []byte, size int) error {
	if size <= 0 || len(luma) != size*size {
		return fmt.Errorf("display: frame is %d bytes, want %dx%d", len(luma), size, size)
	}
	if _, err := fmt.Fprintf(w, "P5\n%d %d\n255\n", size, size); err != nil {
		return err
	}
	_, err := w.Write(luma)
	return err
}
