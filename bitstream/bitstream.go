// Package bitstream provides sequential big-endian field I/O for GTVF streams.
//
// A Reader extracts fixed-width unsigned fields from a byte source and tracks a
// read cursor; a Writer emits the matching fields to an io.Writer. Neither type
// exposes random access, so fields are always consumed in stream order.
package bitstream

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrTruncatedStream indicates that fewer bytes remained than a field required.
var ErrTruncatedStream = errors.New("truncated stream")

// Reader reads big-endian fields from a byte source.
type Reader struct {
	src *bufio.Reader
	off int64
	buf [2]byte
	err error // sticky non-EOF error observed by AtEnd
}

// NewReader creates a Reader over r. Reads are buffered internally.
func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{src: br}
	}
	return &Reader{src: bufio.NewReader(r)}
}

// NewBytesReader creates a Reader over an immutable byte slice.
func NewBytesReader(data []byte) *Reader {
	return NewReader(bytes.NewReader(data))
}

// ReadU16 reads a big-endian unsigned 16-bit field.
func (r *Reader) ReadU16() (uint16, error) {
	if err := r.fill(2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.buf[:2]), nil
}

// ReadU8 reads a single byte field.
func (r *Reader) ReadU8() (uint8, error) {
	if err := r.fill(1); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

// fill reads exactly n bytes into r.buf and advances the cursor.
func (r *Reader) fill(n int) error {
	if r.err != nil {
		return r.err
	}
	got, err := io.ReadFull(r.src, r.buf[:n])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedStream, n, r.off, got)
		}
		return err
	}
	r.off += int64(n)
	return nil
}

// AtEnd reports whether every byte of the source has been consumed.
// A read error other than end of input is reported by the next read instead.
func (r *Reader) AtEnd() bool {
	if r.err != nil {
		return false
	}
	_, err := r.src.Peek(1)
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) {
		return true
	}
	r.err = err
	return false
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.off
}

// Writer writes big-endian fields to an io.Writer.
type Writer struct {
	w   io.Writer
	n   int64
	buf [2]byte
}

// NewWriter creates a Writer emitting to w. No buffering is added; wrap w in a
// bufio.Writer or bytes.Buffer to batch writes.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteU16 writes a big-endian unsigned 16-bit field.
func (w *Writer) WriteU16(v uint16) error {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	_, err := w.Write(w.buf[:2])
	return err
}

// WriteU8 writes a single byte field.
func (w *Writer) WriteU8(v uint8) error {
	w.buf[0] = v
	_, err := w.Write(w.buf[:1])
	return err
}

// Write writes p verbatim. It implements io.Writer so payload runs can be
// emitted in one call.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}

// Written returns the number of bytes emitted so far.
func (w *Writer) Written() int64 {
	return w.n
}
