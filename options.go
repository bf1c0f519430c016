package gtvf

import (
	"fmt"

	"github.com/opd-ai/gtvf/limits"
	"github.com/opd-ai/gtvf/video"
)

// EncodeOptions configures how source frames are turned into GTVF samples.
type EncodeOptions struct {
	// Channel selects the sample taken from color image inputs.
	// YUV4MPEG2 inputs always use their Y plane.
	Channel video.Channel

	// ScaleWidth and ScaleHeight resize every frame before encoding.
	// Both zero keeps the source size.
	ScaleWidth  int
	ScaleHeight int
}

// DefaultEncodeOptions returns options that keep the source size and take
// the red channel of color images.
func DefaultEncodeOptions() *EncodeOptions {
	return &EncodeOptions{Channel: video.ChannelRed}
}

// Validate checks the channel and the scaling target.
func (o *EncodeOptions) Validate() error {
	if o.Channel != video.ChannelRed && o.Channel != video.ChannelLuma {
		return fmt.Errorf("unknown channel %v", o.Channel)
	}
	if o.ScaleWidth == 0 && o.ScaleHeight == 0 {
		return nil
	}
	if err := limits.ValidateDimensions(o.ScaleHeight, o.ScaleWidth); err != nil {
		return fmt.Errorf("invalid scale %dx%d: %w", o.ScaleWidth, o.ScaleHeight, err)
	}
	return nil
}

// Scaling reports whether frames are resized before encoding.
func (o *EncodeOptions) Scaling() bool {
	return o.ScaleWidth != 0 || o.ScaleHeight != 0
}

// prepare wraps src in a scaler when the options ask for a different size.
func (o *EncodeOptions) prepare(src video.Source) (video.Source, error) {
	if !o.Scaling() {
		return src, nil
	}
	w, h := src.Dimensions()
	if !video.IsScalingRequired(w, h, o.ScaleWidth, o.ScaleHeight) {
		return src, nil
	}
	return video.NewScaledSource(src, o.ScaleWidth, o.ScaleHeight)
}

// DecodeOptions configures the outputs written by DecodeFile.
type DecodeOptions struct {
	// FrameRate is written into YUV4MPEG2 output headers.
	FrameRate video.Y4MOptions

	// PNGPrefix names the images written when the output is a directory.
	PNGPrefix string
}

// DefaultDecodeOptions returns 30 frames per second and "frame" image names.
func DefaultDecodeOptions() *DecodeOptions {
	return &DecodeOptions{
		FrameRate: video.DefaultY4MOptions(),
		PNGPrefix: "frame",
	}
}

// Validate checks the frame rate and image prefix.
func (o *DecodeOptions) Validate() error {
	if err := o.FrameRate.Validate(); err != nil {
		return err
	}
	if o.PNGPrefix == "" {
		return fmt.Errorf("PNG prefix cannot be empty")
	}
	return nil
}
