package sse

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apierrors "github.com/diogo/ssechat/internal/errors"
	"github.com/diogo/ssechat/internal/models"
)

// DefaultMaxBufferSize caps the partial frame retained between chunks.
const DefaultMaxBufferSize = 1 << 20

// Stats counts what a Decoder has seen so far
type Stats struct {
	// Data is the number of data frames successfully decoded.
	Data int
	// Malformed is the number of data frames dropped because the payload did not parse.
	Malformed int
	// Ignored is the number of keep-alive or unrecognized segments skipped.
	Ignored int
}

// Decoder turns an unbounded sequence of byte chunks into frames.
//
// ┌──────────────┐   ┌────────────────┐   ┌─────────────┐
// │ body chunks  │──▶│ UTF-8 decoder  │──▶│ text buffer │
// └──────────────┘   └────────────────┘   └─────────────┘
// │
// ▼ split on "\n\n"
// ┌──────────────┐
// │   []Frame    │  trailing partial segment stays buffered
// └──────────────┘
//
// A Decoder is not safe for concurrent use; one stream session owns one Decoder.
type Decoder struct {
	text    transform.Transformer
	pending []byte // undecoded trailing bytes of an incomplete rune
	buf     string // decoded text not yet forming a complete frame

	maxBuffer   int
	onMalformed func(*apierrors.MalformedFrameError)

	done  bool
	stats Stats
}

// Option configures a Decoder created with NewDecoder
type Option func(*Decoder)

// WithMaxBufferSize sets the cap on the buffered partial frame.
// A value <= 0 disables the cap.
func WithMaxBufferSize(n int) Option {
	return func(d *Decoder) {
		d.maxBuffer = n
	}
}

// WithMalformedHandler registers a hook invoked for every dropped data frame
func WithMalformedHandler(fn func(*apierrors.MalformedFrameError)) Option {
	return func(d *Decoder) {
		d.onMalformed = fn
	}
}

// NewDecoder creates a Decoder with the default buffer cap
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		text:      unicode.UTF8.NewDecoder(),
		maxBuffer: DefaultMaxBufferSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode consumes one chunk and returns the frames it completed, in order.
//
// After an end frame the decoder is done: the end frame is the last frame
// returned and every later chunk is ignored. If the retained partial frame
// grows past the buffer cap, Decode returns the frames completed so far
// together with a *errors.FrameTooLargeError; the stream must be abandoned.
func (d *Decoder) Decode(chunk []byte) ([]Frame, error) {
	if d.done {
		return nil, nil
	}

	d.buf += d.decodeText(chunk, false)

	segments := strings.Split(d.buf, models.FrameSeparator)
	d.buf = segments[len(segments)-1]

	var frames []Frame
	for _, segment := range segments[:len(segments)-1] {
		frame, ok := d.classify(segment)
		if !ok {
			continue
		}
		frames = append(frames, frame)

		if frame.Type == FrameEnd {
			d.finish()
			return frames, nil
		}
	}

	if d.maxBuffer > 0 && len(d.buf) > d.maxBuffer {
		size := len(d.buf)
		d.finish()
		return frames, apierrors.NewFrameTooLargeError(size, d.maxBuffer)
	}

	return frames, nil
}

// Done reports whether the end frame was seen or the decoder was closed
func (d *Decoder) Done() bool {
	return d.done
}

// Stats returns the counters accumulated so far
func (d *Decoder) Stats() Stats {
	return d.stats
}

// Buffered returns the number of decoded bytes waiting for a frame separator
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Close flushes the decoder and returns how many buffered bytes were
// discarded. A trailing frame without its separator is never emitted.
func (d *Decoder) Close() int {
	if d.done {
		return 0
	}
	tail := d.decodeText(nil, true)
	discarded := len(d.buf) + len(tail)
	d.finish()
	return discarded
}

// Reset clears all state so the decoder can serve a new stream
func (d *Decoder) Reset() {
	d.text.Reset()
	d.pending = nil
	d.buf = ""
	d.done = false
	d.stats = Stats{}
}

// classify turns one complete segment into a frame.
// It returns false for segments that produce nothing.
func (d *Decoder) classify(segment string) (Frame, bool) {
	switch {
	case strings.HasPrefix(segment, models.EndMarker):
		return Frame{Type: FrameEnd}, true

	case strings.HasPrefix(segment, models.DataPrefix):
		data := strings.TrimSpace(strings.TrimPrefix(segment, models.DataPrefix))
		if data == "" {
			// keep-alive
			d.stats.Ignored++
			return Frame{}, false
		}

		payload, err := ParsePayload(data)
		if err != nil {
			d.stats.Malformed++
			if malformed, ok := err.(*apierrors.MalformedFrameError); ok && d.onMalformed != nil {
				d.onMalformed(malformed)
			}
			return Frame{}, false
		}

		d.stats.Data++
		return Frame{Type: FrameData, Payload: payload}, true

	default:
		d.stats.Ignored++
		return Frame{}, false
	}
}

// decodeText runs the UTF-8 transformer over pending bytes plus chunk.
// Incomplete trailing sequences are kept for the next call unless atEOF.
func (d *Decoder) decodeText(chunk []byte, atEOF bool) string {
	src := make([]byte, 0, len(d.pending)+len(chunk))
	src = append(src, d.pending...)
	src = append(src, chunk...)
	d.pending = nil

	if len(src) == 0 {
		return ""
	}

	var out strings.Builder
	dst := make([]byte, 3*len(src)+utf8.UTFMax)
	for {
		nDst, nSrc, err := d.text.Transform(dst, src, atEOF)
		out.Write(dst[:nDst])
		src = src[nSrc:]

		switch err {
		case transform.ErrShortDst:
			dst = make([]byte, 2*len(dst))
			continue
		case transform.ErrShortSrc:
			d.pending = append(d.pending, src...)
		}
		return out.String()
	}
}

func (d *Decoder) finish() {
	d.done = true
	d.buf = ""
	d.pending = nil
}
