// Package video provides frame scaling for GTVF sources.
//
// This file implements a Source wrapper that resizes every luma frame to a
// fixed output size before it reaches the encoder.
package video

import (
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"

	"github.com/opd-ai/gtvf/limits"
)

// ScaledSource resizes the frames of another source using bilinear interpolation.
type ScaledSource struct {
	src    Source
	width  int
	height int
	interp draw.Interpolator
}

// NewScaledSource wraps src so that every frame is resized to width x height.
func NewScaledSource(src Source, width, height int) (*ScaledSource, error) {
	if src == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	if err := limits.ValidateDimensions(height, width); err != nil {
		return nil, fmt.Errorf("invalid target dimensions: %w", err)
	}

	srcWidth, srcHeight := src.Dimensions()
	logrus.WithFields(logrus.Fields{
		"function":      "NewScaledSource",
		"source_width":  srcWidth,
		"source_height": srcHeight,
		"target_width":  width,
		"target_height": height,
	}).Info("Scaling source frames")

	return &ScaledSource{src: src, width: width, height: height, interp: draw.BiLinear}, nil
}

// IsScalingRequired reports whether source and target sizes differ.
func IsScalingRequired(srcWidth, srcHeight, dstWidth, dstHeight int) bool {
	return srcWidth != dstWidth || srcHeight != dstHeight
}

// Dimensions returns the target size.
func (s *ScaledSource) Dimensions() (width, height int) {
	return s.width, s.height
}

// Next returns the next source frame resized to the target size.
func (s *ScaledSource) Next() (*Frame, error) {
	f, err := s.src.Next()
	if err != nil {
		return nil, err
	}
	return s.Scale(f)
}

// Scale resizes a single frame. A frame already at the target size is returned unchanged.
func (s *ScaledSource) Scale(f *Frame) (*Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if !IsScalingRequired(f.Width, f.Height, s.width, s.height) {
		return f, nil
	}

	src := &image.Gray{Pix: f.Luma, Stride: f.Width, Rect: image.Rect(0, 0, f.Width, f.Height)}
	dst := image.NewGray(image.Rect(0, 0, s.width, s.height))
	s.interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return &Frame{Width: s.width, Height: s.height, Luma: dst.Pix}, nil
}
