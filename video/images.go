// Package video provides still-image sequence input and output.
//
// This file implements a source that reads one frame per image file and a sink
// that writes one grayscale PNG per decoded frame.
package video

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoding
	_ "image/jpeg" // register JPEG decoding
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/gtvf/frame"
	"github.com/opd-ai/gtvf/limits"
)

// ImageSequenceSource yields one frame per image file, in the order given.
type ImageSequenceSource struct {
	paths   []string
	channel Channel
	width   int
	height  int
	next    int
	first   *Frame
}

// NewImageSequenceSource decodes the first image to learn the stream size.
// Every later image must have the same dimensions.
func NewImageSequenceSource(paths []string, ch Channel) (*ImageSequenceSource, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("image sequence is empty")
	}

	s := &ImageSequenceSource{paths: paths, channel: ch}
	first, err := s.load(paths[0])
	if err != nil {
		return nil, err
	}
	if err := limits.ValidateDimensions(first.Height, first.Width); err != nil {
		return nil, fmt.Errorf("%s: %w", paths[0], err)
	}
	s.width, s.height = first.Width, first.Height
	s.first = first

	logrus.WithFields(logrus.Fields{
		"function": "NewImageSequenceSource",
		"images":   len(paths),
		"width":    s.width,
		"height":   s.height,
		"channel":  ch.String(),
	}).Info("Opened image sequence source")

	return s, nil
}

// GlobImages returns the files matching pattern in lexical order.
func GlobImages(pattern string) ([]string, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no images match %q", pattern)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *ImageSequenceSource) load(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, path, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "ImageSequenceSource.load",
		"path":     path,
		"format":   format,
	}).Debug("Decoded image")

	b := img.Bounds()
	return &Frame{Width: b.Dx(), Height: b.Dy(), Luma: ExtractSamples(img, s.channel)}, nil
}

// Dimensions returns the size of the first image.
func (s *ImageSequenceSource) Dimensions() (width, height int) {
	return s.width, s.height
}

// Next returns the next image as a frame.
func (s *ImageSequenceSource) Next() (*Frame, error) {
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}

	path := s.paths[s.next]
	f := s.first
	s.first = nil
	if f == nil {
		var err error
		if f, err = s.load(path); err != nil {
			return nil, err
		}
	}
	if err := checkDimensions(f.Width, f.Height, s.width, s.height); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s.next++
	return f, nil
}

// PNGSequenceSink writes each frame to <dir>/<prefix>_NNNNNN.png.
type PNGSequenceSink struct {
	dir    string
	prefix string
	frames int
}

// NewPNGSequenceSink creates dir if needed.
func NewPNGSequenceSink(dir, prefix string) (*PNGSequenceSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &PNGSequenceSink{dir: dir, prefix: prefix}, nil
}

// FramePath returns the file name used for frame index i.
func (s *PNGSequenceSink) FramePath(i int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%06d.png", s.prefix, i))
}

// Start is a no-op; every image takes its size from its frame.
func (s *PNGSequenceSink) Start(width, height int) error {
	return nil
}

// WriteFrame encodes fb as a grayscale PNG.
func (s *PNGSequenceSink) WriteFrame(fb *frame.Buffer) error {
	path := s.FramePath(s.frames)
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, fb.Gray()); err != nil {
		out.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	s.frames++
	return nil
}

// Frames returns the number of images written.
func (s *PNGSequenceSink) Frames() int {
	return s.frames
}

// Close is a no-op; every image is closed as soon as it is written.
func (s *PNGSequenceSink) Close() error {
	return nil
}
