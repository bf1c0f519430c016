// Package video provides sample extraction from decoded images.
//
// GTVF keeps one 8-bit sample per pixel. This file reduces arbitrary images to
// that single plane.
package video

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Channel selects which value of a color pixel becomes the stored sample.
type Channel int

const (
	// ChannelRed keeps the first channel of the RGB triple and drops the other two.
	ChannelRed Channel = iota
	// ChannelLuma keeps ITU-R BT.601 luma computed from all three channels.
	ChannelLuma
)

// String returns the channel name used on the command line.
func (c Channel) String() string {
	switch c {
	case ChannelRed:
		return "red"
	case ChannelLuma:
		return "luma"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// ParseChannel parses a channel name as produced by Channel.String.
func ParseChannel(name string) (Channel, error) {
	switch strings.ToLower(name) {
	case "red", "r":
		return ChannelRed, nil
	case "luma", "y", "gray", "grey":
		return ChannelLuma, nil
	default:
		return 0, fmt.Errorf("unknown channel %q (want red or luma)", name)
	}
}

// ExtractSamples reduces img to one sample per pixel in raster order.
func ExtractSamples(img image.Image, ch Channel) []uint8 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]uint8, w*h)

	switch src := img.(type) {
	case *image.Gray:
		// Gray pixels carry the same value in every channel.
		for y := 0; y < h; y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out[y*w:(y+1)*w], src.Pix[i:i+w])
		}
		return out

	case *image.YCbCr:
		if ch == ChannelLuma {
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					out[y*w+x] = src.Y[src.YOffset(b.Min.X+x, b.Min.Y+y)]
				}
			}
			return out
		}

	case *image.NRGBA:
		if ch == ChannelRed {
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					out[y*w+x] = src.Pix[src.PixOffset(b.Min.X+x, b.Min.Y+y)]
				}
			}
			return out
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = sampleOf(img.At(b.Min.X+x, b.Min.Y+y), ch)
		}
	}
	return out
}

func sampleOf(c color.Color, ch Channel) uint8 {
	if ch == ChannelLuma {
		return color.GrayModel.Convert(c).(color.Gray).Y
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA).R
}
