package codec

import (
	"fmt"

	"github.com/opd-ai/gtvf/bitstream"
	"github.com/opd-ai/gtvf/limits"
)

// Header is the stream header written once at the start of every GTVF file.
type Header struct {
	Height uint16
	Width  uint16
}

// NewHeader builds a header for a height x width stream.
func NewHeader(height, width int) (Header, error) {
	if err := limits.ValidateDimensions(height, width); err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	return Header{Height: uint16(height), Width: uint16(width)}, nil
}

// Validate checks that both dimensions are non-zero.
func (h Header) Validate() error {
	if err := limits.ValidateDimensions(int(h.Height), int(h.Width)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	return nil
}

// Pixels returns the number of samples in one frame.
func (h Header) Pixels() int {
	return limits.FramePixels(int(h.Height), int(h.Width))
}

// String returns the frame size as WIDTHxHEIGHT.
func (h Header) String() string {
	return fmt.Sprintf("%dx%d", h.Width, h.Height)
}

// ReadHeader reads and validates a stream header.
func ReadHeader(r *bitstream.Reader) (Header, error) {
	height, err := r.ReadU16()
	if err != nil {
		return Header{}, fmt.Errorf("reading header height: %w", err)
	}
	width, err := r.ReadU16()
	if err != nil {
		return Header{}, fmt.Errorf("reading header width: %w", err)
	}
	h := Header{Height: height, Width: width}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// WriteHeader validates and writes a stream header.
func WriteHeader(w *bitstream.Writer, h Header) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if err := w.WriteU16(h.Height); err != nil {
		return err
	}
	return w.WriteU16(h.Width)
}
