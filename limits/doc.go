// Package limits provides centralized format constants and validation functions
// for GTVF streams. This package ensures consistent size enforcement across the
// codec, the video I/O collaborators and the command line tool.
//
// # Token Space
//
// Every token starts with a 16-bit count field. The field space is split in two
// at RepeatFlag (0x8000):
//
//   - 0x0001 to 0x7FFF: literal tokens carrying that many samples
//   - 0x8001 to 0xFFFF: repeat tokens carrying one sample repeated
//     (field - RepeatFlag) times
//
// MaxRunLength (0x7FFF) therefore bounds both token kinds. Zero-length tokens
// (0x0000 and 0x8000) are never written.
//
// # Frame Dimensions
//
// The stream header stores height and width as unsigned 16-bit integers, so each
// dimension must lie in 1..MaxDimension:
//
//	err := limits.ValidateDimensions(height, width)
//	if errors.Is(err, limits.ErrZeroDimension) {
//	    // Reject the header
//	}
//
// ValidateFrameSamples additionally checks that a luma slice covers exactly one
// frame before it is handed to the encoder.
//
// # Error Types
//
//   - ErrZeroDimension: a height or width of zero
//   - ErrDimensionTooLarge: a height or width above MaxDimension
//   - ErrSampleCount: a sample slice of the wrong length
package limits
