package codec

import (
	"bytes"
	"fmt"
	"io"
	"iter"

	"github.com/opd-ai/gtvf/bitstream"
	"github.com/opd-ai/gtvf/frame"
	"github.com/opd-ai/gtvf/limits"
)

// decodeMode is the token decoder's state.
type decodeMode uint8

const (
	readCount decodeMode = iota
	readLiteral
	readRepeat
)

// decoderState is the per-frame token decoder. A fresh value is built for
// every frame.
type decoderState struct {
	mode      decodeMode
	remaining int
	pixel     uint8
	stats     Stats
}

// step performs one transition, inserting at most one pixel into fb.
func (s *decoderState) step(r *bitstream.Reader, fb *frame.Buffer) error {
	switch s.mode {
	case readCount:
		return s.readToken(r, fb)

	case readLiteral:
		v, err := r.ReadU8()
		if err != nil {
			return err
		}
		return s.insert(fb, v)

	case readRepeat:
		return s.insert(fb, s.pixel)

	default:
		return fmt.Errorf("unknown decoder mode %d", s.mode)
	}
}

// readToken reads a count field and, for repeats, the repeated sample.
func (s *decoderState) readToken(r *bitstream.Reader, fb *frame.Buffer) error {
	field, err := r.ReadU16()
	if err != nil {
		return err
	}

	kind, length := ParseCountField(field)
	if length == 0 {
		return fmt.Errorf("%w: zero-length %s token (count field %#04x)", ErrInvalidToken, kind, field)
	}
	if length > fb.Remaining() {
		return fmt.Errorf("%w: %s token of %d samples with %d left in frame", ErrBufferOverflow, kind, length, fb.Remaining())
	}

	if kind == TokenRepeat {
		pixel, err := r.ReadU8()
		if err != nil {
			return err
		}
		s.pixel = pixel
		s.mode = readRepeat
	} else {
		s.mode = readLiteral
	}
	s.remaining = length
	s.stats.addToken(kind, length)
	return nil
}

func (s *decoderState) insert(fb *frame.Buffer, v uint8) error {
	if err := fb.InsertPixel(v); err != nil {
		return err
	}
	s.remaining--
	if s.remaining == 0 {
		s.mode = readCount
	}
	return nil
}

// DecodeFrame fills one frame of the header's size from r.
func DecodeFrame(r *bitstream.Reader, h Header) (*frame.Buffer, error) {
	fb, _, err := decodeFrame(r, h)
	return fb, err
}

func decodeFrame(r *bitstream.Reader, h Header) (*frame.Buffer, Stats, error) {
	fb, err := frame.New(int(h.Height), int(h.Width))
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	s := &decoderState{mode: readCount}
	for !fb.IsFull() {
		if err := s.step(r, fb); err != nil {
			return nil, Stats{}, err
		}
	}
	s.stats.Frames = 1
	return fb, s.stats, nil
}

// Decoder reads a GTVF stream frame by frame.
type Decoder struct {
	r      *bitstream.Reader
	header Header
	stats  Stats
	err    error
}

// NewDecoder reads and validates the stream header from r.
func NewDecoder(r io.Reader) (*Decoder, error) {
	br := bitstream.NewReader(r)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		r:      br,
		header: h,
		stats:  Stats{Bytes: limits.HeaderSize},
	}, nil
}

// NewBytesDecoder is NewDecoder over an in-memory stream.
func NewBytesDecoder(data []byte) (*Decoder, error) {
	return NewDecoder(bytes.NewReader(data))
}

// Header returns the stream header.
func (d *Decoder) Header() Header {
	return d.header
}

// Stats returns counters for every frame decoded so far.
func (d *Decoder) Stats() Stats {
	return d.stats
}

// Next decodes the next frame. It returns io.EOF when the stream ends cleanly
// at a frame boundary. Any other error is final: later calls return it again
// and no partially filled frame is ever returned.
func (d *Decoder) Next() (*frame.Buffer, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.r.AtEnd() {
		d.err = io.EOF
		return nil, io.EOF
	}

	fb, frameStats, err := decodeFrame(d.r, d.header)
	if err != nil {
		d.err = newError("decode", d.stats.Frames, d.r.Offset(), err)
		return nil, d.err
	}

	frameStats.Bytes = d.r.Offset() - d.stats.Bytes
	d.stats.merge(frameStats)
	return fb, nil
}

// All returns the remaining frames as a lazy sequence. Iteration stops after
// the last frame, or after yielding the first error.
func (d *Decoder) All() iter.Seq2[*frame.Buffer, error] {
	return func(yield func(*frame.Buffer, error) bool) {
		for {
			fb, err := d.Next()
			if err == io.EOF {
				return
			}
			if !yield(fb, err) || err != nil {
				return
			}
		}
	}
}
