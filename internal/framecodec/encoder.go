package framecodec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// Stride is the number of raw bytes encoded per line.
const Stride = 96

// Marker lines delimiting a frame. They are never base64 encoded.
const (
	BeginMarker = "-----BEGIN FRAME-----"
	EndMarker   = "-----END FRAME-----"
)

var (
	beginLine = []byte(BeginMarker + "\n")
	endLine   = []byte(EndMarker + "\n")
)

// ErrPartialChunk is returned when a buffer length is not a multiple of the
// encoder stride and the encoder rejects partial chunks.
var ErrPartialChunk = errors.New("framecodec: buffer length not a multiple of stride")

// PartialPolicy selects how a trailing chunk shorter than the stride is handled.
type PartialPolicy int

const (
	// PartialReject fails the encode before any byte is written.
	PartialReject PartialPolicy = iota
	// PartialShortLine encodes the trailing bytes as a shorter final line.
	PartialShortLine
)

// String returns the configuration name of the policy.
func (p PartialPolicy) String() string {
	switch p {
	case PartialReject:
		return "reject"
	case PartialShortLine:
		return "short"
	default:
		return fmt.Sprintf("PartialPolicy(%d)", int(p))
	}
}

// ParsePartialPolicy parses "reject" or "short".
func ParsePartialPolicy(s string) (PartialPolicy, error) {
	switch s {
	case "", "reject":
		return PartialReject, nil
	case "short":
		return PartialShortLine, nil
	default:
		return PartialReject, fmt.Errorf("framecodec: unknown partial chunk policy %q", s)
	}
}

// Encoder writes frames in the delimited base64 line format.
//
// The line scratch buffer is allocated once, so Encode does not allocate.
// An Encoder must not be used from multiple goroutines at once.
type Encoder struct {
	stride  int
	policy  PartialPolicy
	scratch []byte
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithStride overrides the raw bytes per line. Non-positive values are ignored.
func WithStride(n int) Option {
	return func(e *Encoder) {
		if n > 0 {
			e.stride = n
		}
	}
}

// WithPartialPolicy sets the trailing partial chunk policy.
func WithPartialPolicy(p PartialPolicy) Option {
	return func(e *Encoder) {
		e.policy = p
	}
}

// NewEncoder creates an encoder with Stride and PartialReject unless overridden.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{
		stride: Stride,
		policy: PartialReject,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.scratch = make([]byte, base64.StdEncoding.EncodedLen(e.stride)+1)
	return e
}

// Stride returns the raw bytes encoded per line.
func (e *Encoder) Stride() int {
	return e.stride
}

// Policy returns the partial chunk policy.
func (e *Encoder) Policy() PartialPolicy {
	return e.policy
}

// Encode writes buf to w as one frame. buf is not modified.
func (e *Encoder) Encode(w io.Writer, buf []byte) error {
	if rem := len(buf) % e.stride; rem != 0 && e.policy == PartialReject {
		return fmt.Errorf("%w: length %d, stride %d", ErrPartialChunk, len(buf), e.stride)
	}

	if _, err := w.Write(beginLine); err != nil {
		return fmt.Errorf("framecodec: write begin marker: %w", err)
	}

	for off := 0; off < len(buf); off += e.stride {
		end := min(off+e.stride, len(buf))
		n := base64.StdEncoding.EncodedLen(end - off)
		base64.StdEncoding.Encode(e.scratch, buf[off:end])
		e.scratch[n] = '\n'
		if _, err := w.Write(e.scratch[:n+1]); err != nil {
			return fmt.Errorf("framecodec: write chunk at offset %d: %w", off, err)
		}
	}

	if _, err := w.Write(endLine); err != nil {
		return fmt.Errorf("framecodec: write end marker: %w", err)
	}
	return nil
}

// Size returns the exact number of bytes Encode writes for an n-byte buffer.
func (e *Encoder) Size(n int) int {
	size := len(beginLine) + len(endLine)
	full := n / e.stride
	size += full * (base64.StdEncoding.EncodedLen(e.stride) + 1)
	if rem := n % e.stride; rem != 0 {
		size += base64.StdEncoding.EncodedLen(rem) + 1
	}
	return size
}

// Lines returns the number of lines Encode writes for an n-byte buffer,
// markers included.
func (e *Encoder) Lines(n int) int {
	return (n+e.stride-1)/e.stride + 2
}

// Encode writes buf to w using a default encoder.
func Encode(w io.Writer, buf []byte) error {
	return NewEncoder().Encode(w, buf)
}

// FrameSize returns the encoded size of an n-byte buffer at the default stride.
func FrameSize(n int) int {
	return NewEncoder().Size(n)
}
