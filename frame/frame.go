// Package frame provides the fixed-size pixel grid that GTVF decoding fills.
//
// A Buffer owns its pixels and only accepts sequential insertion in raster
// order, so a decoder can never write out of order. Readers of a full buffer
// (video sinks, digests) get read-only views.
package frame

import (
	"errors"
	"fmt"
	"image"
)

// Channels is the number of 8-bit channels stored per pixel.
const Channels = 3

// maxPreallocPixels caps the storage reserved up front by New.
const maxPreallocPixels = 1 << 20

// ErrBufferOverflow indicates an insertion into a buffer that is already full.
// In a decoder this means the token stream and the frame size disagree.
var ErrBufferOverflow = errors.New("frame buffer overflow")

// Buffer is a height x width grid of RGB pixels filled one pixel at a time.
type Buffer struct {
	height int
	width  int
	pix    []uint8 // RGB triples in raster order, len == cursor*Channels
	cursor int     // index of the next pixel to write
}

// New creates an empty buffer. Dimensions must be positive. Pixel storage
// grows as pixels are inserted, so the memory held tracks the pixels written
// rather than the declared frame size.
func New(height, width int) (*Buffer, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions: %dx%d", width, height)
	}
	return &Buffer{
		height: height,
		width:  width,
		pix:    make([]uint8, 0, min(height*width, maxPreallocPixels)*Channels),
	}, nil
}

// InsertPixel writes (v, v, v) at the next raster position.
func (b *Buffer) InsertPixel(v uint8) error {
	if b.IsFull() {
		return fmt.Errorf("%w: %dx%d frame already holds %d pixels", ErrBufferOverflow, b.width, b.height, b.cursor)
	}
	b.pix = append(b.pix, v, v, v)
	b.cursor++
	return nil
}

// IsFull reports whether every pixel has been written.
func (b *Buffer) IsFull() bool {
	return b.cursor == b.height*b.width
}

// Remaining returns the number of pixels still to be written.
func (b *Buffer) Remaining() int {
	return b.height*b.width - b.cursor
}

// Len returns the number of pixels written so far.
func (b *Buffer) Len() int {
	return b.cursor
}

// Height returns the number of rows.
func (b *Buffer) Height() int {
	return b.height
}

// Width returns the number of columns.
func (b *Buffer) Width() int {
	return b.width
}

// Pixel returns the RGB triple at column x, row y. Pixels not yet written are zero.
func (b *Buffer) Pixel(x, y int) [Channels]uint8 {
	i := (y*b.width + x) * Channels
	if i >= len(b.pix) {
		return [Channels]uint8{}
	}
	return [Channels]uint8{b.pix[i], b.pix[i+1], b.pix[i+2]}
}

// Luma returns a copy of the first channel of every pixel in raster order.
func (b *Buffer) Luma() []uint8 {
	out := make([]uint8, b.height*b.width)
	for i := 0; i < b.cursor; i++ {
		out[i] = b.pix[i*Channels]
	}
	return out
}

// Gray returns the frame as a grayscale image built from the first channel.
func (b *Buffer) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.width, b.height))
	copy(img.Pix, b.Luma())
	return img
}

// RGBA returns the frame as an opaque RGBA image.
func (b *Buffer) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	for j := 3; j < len(img.Pix); j += 4 {
		img.Pix[j] = 0xFF
	}
	for i, j := 0, 0; i < len(b.pix); i, j = i+Channels, j+4 {
		img.Pix[j] = b.pix[i]
		img.Pix[j+1] = b.pix[i+1]
		img.Pix[j+2] = b.pix[i+2]
	}
	return img
}
