package framecodec

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

const defaultMaxLine = 64 * 1024

// ErrFrameTooLarge is returned when a frame decodes to more bytes than the
// destination buffer holds.
var ErrFrameTooLarge = errors.New("framecodec: frame larger than destination buffer")

// FrameError describes a malformed frame. The reader has already discarded
// the frame and resynchronises on the next begin marker.
type FrameError struct {
	Line int // 1-based line number in the stream
	Err  error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("framecodec: malformed frame at line %d: %v", e.Line, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// ReaderStats counts what a Reader has seen so far.
type ReaderStats struct {
	Frames     uint64 // complete frames returned
	Discarded  uint64 // frames dropped as truncated or malformed
	StrayLines uint64 // lines seen outside any frame
	LinesRead  uint64
}

// Reader recovers frames from a line stream produced by Encoder.
type Reader struct {
	sc      *bufio.Scanner
	scratch []byte
	line    int
	stats   ReaderStats
	onStray func(line []byte)
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxLine sets the longest line the reader accepts.
func WithMaxLine(n int) ReaderOption {
	return func(r *Reader) {
		r.sc.Buffer(make([]byte, 0, min(n, 4096)), n)
	}
}

// WithStrayHandler registers a callback for lines outside a frame. The slice
// is only valid for the duration of the call.
func WithStrayHandler(fn func(line []byte)) ReaderOption {
	return func(r *Reader) {
		r.onStray = fn
	}
}

// NewReader creates a frame reader over src.
func NewReader(src io.Reader, opts ...ReaderOption) *Reader {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 4096), defaultMaxLine)
	r := &Reader{sc: sc}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stats returns a snapshot of the reader counters.
func (r *Reader) Stats() ReaderStats {
	return r.stats
}

// ReadFrame reads the next complete frame into dst and returns its length.
//
// Lines before a begin marker are skipped. A begin marker inside an open
// frame drops the truncated frame and starts over. At end of input it
// returns io.EOF, or io.ErrUnexpectedEOF if a frame was left open.
func (r *Reader) ReadFrame(dst []byte) (int, error) {
	inFrame := false
	n := 0

	for r.sc.Scan() {
		r.line++
		r.stats.LinesRead++
		line := bytes.TrimSuffix(r.sc.Bytes(), []byte{'\r'})

		switch {
		case string(line) == BeginMarker:
			if inFrame {
				r.stats.Discarded++
			}
			inFrame = true
			n = 0
			continue
		case !inFrame:
			r.stats.StrayLines++
			if r.onStray != nil {
				r.onStray(line)
			}
			continue
		case string(line) == EndMarker:
			r.stats.Frames++
			return n, nil
		}

		if need := base64.StdEncoding.DecodedLen(len(line)); need > len(r.scratch) {
			r.scratch = make([]byte, need)
		}
		m, err := base64.StdEncoding.Decode(r.scratch, line)
		if err != nil {
			r.stats.Discarded++
			return 0, &FrameError{Line: r.line, Err: err}
		}
		if n+m > len(dst) {
			r.stats.Discarded++
			return 0, &FrameError{Line: r.line, Err: ErrFrameTooLarge}
		}
		n += copy(dst[n:], r.scratch[:m])
	}

	if err := r.sc.Err(); err != nil {
		return 0, fmt.Errorf("framecodec: read stream: %w", err)
	}
	if inFrame {
		r.stats.Discarded++
		return 0, io.ErrUnexpectedEOF
	}
	return 0, io.EOF
}
