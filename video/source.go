// Package video provides the frame sources and sinks that surround the GTVF codec.
//
// This file defines the Source and Sink contracts and the luma frame type
// passed from sources to the encoder.
package video

import (
	"errors"
	"fmt"

	"github.com/opd-ai/gtvf/frame"
	"github.com/opd-ai/gtvf/limits"
)

var (
	// ErrDimensionMismatch indicates a frame whose size differs from the stream's
	ErrDimensionMismatch = errors.New("frame dimensions do not match stream")

	// ErrUnsupportedFormat indicates input the source cannot interpret
	ErrUnsupportedFormat = errors.New("unsupported input format")
)

// Frame is one source frame reduced to a single 8-bit sample per pixel.
type Frame struct {
	Width  int
	Height int
	Luma   []uint8 // raster order, len == Width*Height
}

// Validate checks that the luma plane covers exactly Width x Height samples.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("video frame cannot be nil")
	}
	return limits.ValidateFrameSamples(f.Luma, f.Height, f.Width)
}

// Source yields frames in capture order.
type Source interface {
	// Dimensions returns the size shared by every frame.
	Dimensions() (width, height int)
	// Next returns the next frame, or io.EOF after the last one.
	Next() (*Frame, error)
}

// Sink accepts decoded frames in order.
type Sink interface {
	// Start announces the stream size before the first frame. It is called
	// once, even for streams with no frames.
	Start(width, height int) error
	// WriteFrame consumes one full frame buffer.
	WriteFrame(fb *frame.Buffer) error
	// Close flushes buffered output. It does not close writers passed in by the caller.
	Close() error
}

// checkDimensions verifies a frame against the stream size.
func checkDimensions(width, height, wantWidth, wantHeight int) error {
	if width != wantWidth || height != wantHeight {
		return fmt.Errorf("%w: expected %dx%d, got %dx%d", ErrDimensionMismatch, wantWidth, wantHeight, width, height)
	}
	return nil
}
