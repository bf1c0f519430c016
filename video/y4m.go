// Package video provides YUV4MPEG2 input and output.
//
// This file implements a reader that keeps only the Y plane of each frame and a
// writer that emits monochrome YUV4MPEG2 at a fixed frame rate.
package video

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/gtvf/frame"
	"github.com/opd-ai/gtvf/limits"
)

const (
	y4mMagic       = "YUV4MPEG2"
	y4mFrameMarker = "FRAME"
	y4mMaxLine     = 1024
)

// Y4MOptions configures a Y4MSink.
type Y4MOptions struct {
	FrameRateNum int
	FrameRateDen int
}

// DefaultY4MOptions returns 30 frames per second output.
func DefaultY4MOptions() Y4MOptions {
	return Y4MOptions{FrameRateNum: 30, FrameRateDen: 1}
}

// Validate checks that the frame rate is a positive fraction.
func (o Y4MOptions) Validate() error {
	if o.FrameRateNum <= 0 || o.FrameRateDen <= 0 {
		return fmt.Errorf("invalid frame rate %d:%d", o.FrameRateNum, o.FrameRateDen)
	}
	return nil
}

// Y4MSource reads frames from a YUV4MPEG2 stream.
type Y4MSource struct {
	r          *bufio.Reader
	width      int
	height     int
	colorspace string
	rateNum    int
	rateDen    int
	chroma     int // bytes of non-luma planes per frame
	frames     int
}

// NewY4MSource parses the stream header from r.
func NewY4MSource(r io.Reader) (*Y4MSource, error) {
	br := bufio.NewReader(r)
	line, err := readY4MLine(br)
	if err != nil {
		return nil, fmt.Errorf("reading YUV4MPEG2 header: %w", err)
	}

	s := &Y4MSource{r: br, colorspace: "420jpeg", rateNum: 30, rateDen: 1}
	if err := s.parseHeader(line); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewY4MSource",
			"header":   line,
			"error":    err.Error(),
		}).Error("Rejected YUV4MPEG2 header")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NewY4MSource",
		"width":      s.width,
		"height":     s.height,
		"colorspace": s.colorspace,
		"frame_rate": fmt.Sprintf("%d:%d", s.rateNum, s.rateDen),
	}).Info("Opened YUV4MPEG2 source")

	return s, nil
}

func (s *Y4MSource) parseHeader(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != y4mMagic {
		return fmt.Errorf("%w: missing %s signature", ErrUnsupportedFormat, y4mMagic)
	}

	for _, field := range fields[1:] {
		tag, value := field[0], field[1:]
		var err error
		switch tag {
		case 'W':
			s.width, err = strconv.Atoi(value)
		case 'H':
			s.height, err = strconv.Atoi(value)
		case 'F':
			s.rateNum, s.rateDen, err = parseRatio(value)
		case 'C':
			s.colorspace = value
		}
		if err != nil {
			return fmt.Errorf("%w: bad %c tag %q: %v", ErrUnsupportedFormat, tag, value, err)
		}
	}

	if err := limits.ValidateDimensions(s.height, s.width); err != nil {
		return err
	}

	chroma, err := chromaSize(s.colorspace, s.width, s.height)
	if err != nil {
		return err
	}
	s.chroma = chroma
	return nil
}

// chromaSize returns the bytes following the Y plane in each frame.
func chromaSize(colorspace string, width, height int) (int, error) {
	cw, ch := (width+1)/2, (height+1)/2
	switch colorspace {
	case "420", "420jpeg", "420paldv", "420mpeg2":
		return 2 * cw * ch, nil
	case "422":
		return 2 * cw * height, nil
	case "444":
		return 2 * width * height, nil
	case "444alpha":
		return 3 * width * height, nil
	case "mono":
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: YUV4MPEG2 colorspace %q", ErrUnsupportedFormat, colorspace)
	}
}

func parseRatio(value string) (int, int, error) {
	num, den, ok := strings.Cut(value, ":")
	if !ok {
		return 0, 0, fmt.Errorf("expected n:d")
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, 0, err
	}
	d, err := strconv.Atoi(den)
	if err != nil {
		return 0, 0, err
	}
	if n <= 0 || d <= 0 {
		return 0, 0, fmt.Errorf("non-positive ratio")
	}
	return n, d, nil
}

// readY4MLine reads one newline-terminated header line.
func readY4MLine(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	for sb.Len() <= y4mMaxLine {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		if b == '\n' {
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
	return "", fmt.Errorf("%w: header line longer than %d bytes", ErrUnsupportedFormat, y4mMaxLine)
}

// Dimensions returns the frame size declared in the stream header.
func (s *Y4MSource) Dimensions() (width, height int) {
	return s.width, s.height
}

// FrameRate returns the frame rate declared in the stream header.
func (s *Y4MSource) FrameRate() (num, den int) {
	return s.rateNum, s.rateDen
}

// Next reads the next frame and discards its chroma planes.
func (s *Y4MSource) Next() (*Frame, error) {
	line, err := readY4MLine(s.r)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading frame %d marker: %w", s.frames, err)
	}
	if !strings.HasPrefix(line, y4mFrameMarker) {
		return nil, fmt.Errorf("%w: frame %d starts with %q", ErrUnsupportedFormat, s.frames, line)
	}

	f := &Frame{Width: s.width, Height: s.height, Luma: make([]uint8, s.width*s.height)}
	if _, err := io.ReadFull(s.r, f.Luma); err != nil {
		return nil, fmt.Errorf("reading frame %d luma plane: %w", s.frames, err)
	}
	if _, err := s.r.Discard(s.chroma); err != nil {
		return nil, fmt.Errorf("reading frame %d chroma planes: %w", s.frames, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Y4MSource.Next",
		"frame":    s.frames,
	}).Debug("Read YUV4MPEG2 frame")

	s.frames++
	return f, nil
}

// Y4MSink writes decoded frames as a monochrome YUV4MPEG2 stream.
type Y4MSink struct {
	w       *bufio.Writer
	opts    Y4MOptions
	width   int
	height  int
	started bool
	frames  int
}

// NewY4MSink creates a sink writing to w. The stream header is written by
// Start, or with the first frame when Start was not called.
func NewY4MSink(w io.Writer, opts Y4MOptions) (*Y4MSink, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Y4MSink{w: bufio.NewWriter(w), opts: opts}, nil
}

// Start writes the stream header for width x height frames. Calling it
// again with the same size is a no-op.
func (s *Y4MSink) Start(width, height int) error {
	if s.started {
		return checkDimensions(width, height, s.width, s.height)
	}
	if err := limits.ValidateDimensions(height, width); err != nil {
		return err
	}

	s.width, s.height = width, height
	if _, err := fmt.Fprintf(s.w, "%s W%d H%d F%d:%d Ip A1:1 Cmono\n",
		y4mMagic, s.width, s.height, s.opts.FrameRateNum, s.opts.FrameRateDen); err != nil {
		return err
	}
	s.started = true

	logrus.WithFields(logrus.Fields{
		"function":   "Y4MSink.Start",
		"width":      s.width,
		"height":     s.height,
		"frame_rate": fmt.Sprintf("%d:%d", s.opts.FrameRateNum, s.opts.FrameRateDen),
	}).Info("Started YUV4MPEG2 output")
	return nil
}

// WriteFrame appends one frame.
func (s *Y4MSink) WriteFrame(fb *frame.Buffer) error {
	if !fb.IsFull() {
		return fmt.Errorf("refusing to write partial frame %d (%d of %d pixels)", s.frames, fb.Len(), fb.Len()+fb.Remaining())
	}
	if !s.started {
		if err := s.Start(fb.Width(), fb.Height()); err != nil {
			return err
		}
	}

	if err := checkDimensions(fb.Width(), fb.Height(), s.width, s.height); err != nil {
		return err
	}
	if _, err := s.w.WriteString(y4mFrameMarker + "\n"); err != nil {
		return err
	}
	if _, err := s.w.Write(fb.Luma()); err != nil {
		return err
	}
	s.frames++
	return nil
}

// Frames returns the number of frames written.
func (s *Y4MSink) Frames() int {
	return s.frames
}

// Close flushes buffered output.
func (s *Y4MSink) Close() error {
	return s.w.Flush()
}
