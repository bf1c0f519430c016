// Package limits provides centralized format limits for GTVF streams.
// This ensures consistent validation across the codec, the video I/O layer and the CLI.
package limits

import (
	"errors"
	"fmt"
)

const (
	// HeaderSize is the size of the stream header in bytes (u16 height + u16 width)
	HeaderSize = 4

	// TokenCountSize is the size of a token's count field in bytes
	TokenCountSize = 2

	// RepeatFlag marks a repeat token. Count fields at or above it are repeats,
	// count fields below it are literals.
	RepeatFlag = 0x8000

	// MaxRunLength is the longest run a single token can describe, for both token kinds
	MaxRunLength = 0x7FFF

	// MaxDimension is the largest height or width a stream header can declare
	MaxDimension = 0xFFFF

	// MaxFramePixels is the number of samples in the largest possible frame
	MaxFramePixels = MaxDimension * MaxDimension
)

var (
	// ErrZeroDimension indicates a height or width of zero
	ErrZeroDimension = errors.New("zero frame dimension")

	// ErrDimensionTooLarge indicates a height or width that does not fit in the header
	ErrDimensionTooLarge = errors.New("frame dimension too large")

	// ErrSampleCount indicates a sample slice that does not cover exactly one frame
	ErrSampleCount = errors.New("sample count does not match frame size")
)

// ValidateDimensions validates a frame size against the header field range.
// Returns an error with context including the offending dimensions.
func ValidateDimensions(height, width int) error {
	if height <= 0 || width <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrZeroDimension, width, height)
	}
	if height > MaxDimension || width > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrDimensionTooLarge, width, height, MaxDimension, MaxDimension)
	}
	return nil
}

// ValidateFrameSamples validates that samples holds exactly one height x width frame.
func ValidateFrameSamples(samples []byte, height, width int) error {
	if err := ValidateDimensions(height, width); err != nil {
		return err
	}
	if want := height * width; len(samples) != want {
		return fmt.Errorf("%w: got %d samples, want %d", ErrSampleCount, len(samples), want)
	}
	return nil
}

// FramePixels returns the number of samples in a height x width frame.
func FramePixels(height, width int) int {
	return height * width
}
