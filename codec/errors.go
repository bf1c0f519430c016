package codec

import (
	"errors"
	"fmt"

	"github.com/opd-ai/gtvf/bitstream"
	"github.com/opd-ai/gtvf/frame"
)

// Common errors for GTVF encoding and decoding
var (
	// ErrInvalidHeader indicates a header declaring a zero or out-of-range dimension
	ErrInvalidHeader = errors.New("invalid stream header")

	// ErrInvalidToken indicates a token whose count field describes zero samples
	ErrInvalidToken = errors.New("invalid token")

	// ErrFrameSize indicates a sample slice that does not match the stream's frame size
	ErrFrameSize = errors.New("frame size mismatch")

	// ErrTruncatedStream indicates the stream ended inside a field or payload
	ErrTruncatedStream = bitstream.ErrTruncatedStream

	// ErrBufferOverflow indicates a token running past the end of its frame
	ErrBufferOverflow = frame.ErrBufferOverflow
)

// Error describes a failure while encoding or decoding a specific frame.
type Error struct {
	Op     string // "encode" or "decode"
	Frame  int    // zero-based index of the frame being processed
	Offset int64  // stream byte offset where the failure was detected
	Err    error  // underlying error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gtvf %s frame %d at offset %d: %v", e.Op, e.Frame, e.Offset, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates a new Error
func newError(op string, frameIndex int, offset int64, err error) *Error {
	return &Error{
		Op:     op,
		Frame:  frameIndex,
		Offset: offset,
		Err:    err,
	}
}
