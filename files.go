package gtvf

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/gtvf/video"
)

// File extensions recognised by the path-based helpers. Any of them may carry
// an additional video.CompressedExt suffix.
const (
	ExtGTVF = ".gtvf"
	ExtY4M  = ".y4m"
)

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}

// baseExt returns the extension of path after dropping a compression suffix.
func baseExt(path string) string {
	if video.IsCompressed(path) {
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}
	return strings.ToLower(filepath.Ext(path))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenSource opens a frame source by name: a YUV4MPEG2 file, a single image,
// or a glob pattern matching an image sequence. The returned closer releases
// the underlying file.
func OpenSource(path string, ch video.Channel) (video.Source, io.Closer, error) {
	if strings.ContainsAny(path, "*?[") {
		paths, err := video.GlobImages(path)
		if err != nil {
			return nil, nil, err
		}
		src, err := video.NewImageSequenceSource(paths, ch)
		if err != nil {
			return nil, nil, err
		}
		return src, nopCloser{}, nil
	}

	ext := baseExt(path)
	switch {
	case ext == ExtY4M:
		in, err := video.OpenInput(path)
		if err != nil {
			return nil, nil, err
		}
		src, err := video.NewY4MSource(in)
		if err != nil {
			in.Close()
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		return src, in, nil

	case imageExts[ext] && !video.IsCompressed(path):
		src, err := video.NewImageSequenceSource([]string{path}, ch)
		if err != nil {
			return nil, nil, err
		}
		return src, nopCloser{}, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", video.ErrUnsupportedFormat, path)
	}
}

// OpenSink creates a frame sink by name: a YUV4MPEG2 file when the name ends
// in .y4m (optionally compressed), otherwise a directory of PNG images.
// A nil opts uses DefaultDecodeOptions.
func OpenSink(path string, opts *DecodeOptions) (video.Sink, io.Closer, error) {
	if opts == nil {
		opts = DefaultDecodeOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	if baseExt(path) == ExtY4M {
		out, err := video.CreateOutput(path)
		if err != nil {
			return nil, nil, err
		}
		sink, err := video.NewY4MSink(out, opts.FrameRate)
		if err != nil {
			out.Close()
			return nil, nil, err
		}
		return sink, out, nil
	}

	sink, err := video.NewPNGSequenceSink(filepath.Clean(path), opts.PNGPrefix)
	if err != nil {
		return nil, nil, err
	}
	return sink, nopCloser{}, nil
}

// EncodeFile encodes the source named by input into the GTVF file output.
func (t *Transcoder) EncodeFile(ctx context.Context, input, output string, opts *EncodeOptions) (*Result, error) {
	if opts == nil {
		opts = DefaultEncodeOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	src, srcCloser, err := OpenSource(input, opts.Channel)
	if err != nil {
		return nil, err
	}
	defer srcCloser.Close()

	out, err := video.CreateOutput(output)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Transcoder.EncodeFile",
		"input":    input,
		"output":   output,
	}).Info("Encoding file")

	result, err := t.Encode(ctx, src, out, opts)
	if closeErr := out.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return result, err
}

// DecodeFile decodes the GTVF file input into the sink named by output.
func (t *Transcoder) DecodeFile(ctx context.Context, input, output string, opts *DecodeOptions) (*Result, error) {
	if opts == nil {
		opts = DefaultDecodeOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	in, err := video.OpenInput(input)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	sink, sinkCloser, err := OpenSink(output, opts)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Transcoder.DecodeFile",
		"input":    input,
		"output":   output,
	}).Info("Decoding file")

	result, err := t.Decode(ctx, in, sink)
	if closeErr := sinkCloser.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return result, err
}

// VerifyFile runs Verify on the source named by input.
func (t *Transcoder) VerifyFile(ctx context.Context, input string, opts *EncodeOptions) (*VerifyResult, error) {
	if opts == nil {
		opts = DefaultEncodeOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	src, srcCloser, err := OpenSource(input, opts.Channel)
	if err != nil {
		return nil, err
	}
	defer srcCloser.Close()

	return t.Verify(ctx, src, opts)
}

// InspectFile runs Inspect on the GTVF file at path.
func InspectFile(path string) (*Info, error) {
	in, err := video.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	return Inspect(in)
}
