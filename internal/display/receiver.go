package display

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/smazurov/webserialdisplay/internal/framecodec"
	"github.com/smazurov/webserialdisplay/internal/logging"
)

// MaxFrameSize is the largest square side the receiver accepts.
const MaxFrameSize = 240

var memFreePrefix = []byte("mem_free ")

// FrameHandler consumes one decoded frame. luma is reused after it returns.
type FrameHandler func(seq uint64, luma []byte, size int) error

// ReceiverStats summarises a receive session.
type ReceiverStats struct {
	Frames        uint64
	Malformed     uint64
	Skipped       uint64 // frames that were not square
	LastFreeBytes uint64 // last mem_free diagnostic seen, 0 if none
	Stream        framecodec.ReaderStats
}

// Receiver decodes frames from the device byte stream.
type Receiver struct {
	reader *framecodec.Reader
	buf    []byte
	logger logging.Logger
	stats  ReceiverStats
}

// NewReceiver reads frames from src.
func NewReceiver(src io.Reader, logger logging.Logger) *Receiver {
	r := &Receiver{
		buf:    make([]byte, MaxFrameSize*MaxFrameSize),
		logger: logger,
	}
	r.reader = framecodec.NewReader(src, framecodec.WithStrayHandler(r.stray))
	return r
}

func (r *Receiver) stray(line []byte) {
	if rest, ok := bytes.CutPrefix(line, memFreePrefix); ok {
		if free, err := strconv.ParseUint(string(rest), 10, 64); err == nil {
			r.stats.LastFreeBytes = free
			r.logger.Debug("Device memory", "free_bytes", free)
			return
		}
	}
	r.logger.Debug("Skipping line outside frame", "line", string(line))
}

// Run decodes frames until end of input, ctx is done, or maxFrames frames
// were handled (0 means no limit). Malformed frames are logged and skipped.
func (r *Receiver) Run(ctx context.Context, maxFrames uint64, handle FrameHandler) (ReceiverStats, error) {
	for maxFrames == 0 || r.stats.Frames < maxFrames {
		if err := ctx.Err(); err != nil {
			return r.Stats(), nil
		}

		n, err := r.reader.ReadFrame(r.buf)
		var frameErr *framecodec.FrameError
		switch {
		case errors.Is(err, io.EOF):
			return r.Stats(), nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			r.logger.Warn("Stream ended inside a frame")
			return r.Stats(), nil
		case errors.As(err, &frameErr):
			r.stats.Malformed++
			r.logger.Warn("Dropping malformed frame", "line", frameErr.Line, "error", frameErr.Err)
			continue
		case err != nil:
			return r.Stats(), err
		}

		size, err := SquareSize(n)
		if err != nil {
			r.stats.Skipped++
			r.logger.Warn("Dropping non-square frame", "bytes", n)
			continue
		}

		seq := r.stats.Frames + 1
		if err := handle(seq, r.buf[:n], size); err != nil {
			return r.Stats(), err
		}
		r.stats.Frames = seq
	}
	return r.Stats(), nil
}

// Stats returns the counters so far.
func (r *Receiver) Stats() ReceiverStats {
	s := r.stats
	s.Stream = r.reader.Stats()
	return s
}
