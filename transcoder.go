package gtvf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/gtvf/codec"
	"github.com/opd-ai/gtvf/video"
)

// ErrVerifyMismatch indicates that decoding an encoded stream did not
// reproduce the source frames.
var ErrVerifyMismatch = errors.New("decoded frames differ from source")

// Progress describes a running encode or decode after each frame.
type Progress struct {
	Op      string // "encode" or "decode"
	Frames  int
	Bytes   int64 // GTVF stream bytes written or consumed, header included
	Elapsed time.Duration
}

// ProgressCallback receives a Progress report after every frame.
type ProgressCallback func(p Progress)

// Result summarizes a finished encode or decode.
type Result struct {
	Header  codec.Header
	Stats   codec.Stats
	Elapsed time.Duration
}

// FramesPerSecond returns the processing speed, or 0 when no time elapsed.
func (r *Result) FramesPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Stats.Frames) / r.Elapsed.Seconds()
}

// VerifyResult reports an encode-then-decode round trip.
type VerifyResult struct {
	Encode        *Result
	Decode        *Result
	SourceDigest  string
	DecodedDigest string
	// FirstMismatch is the first differing frame index, or -1 when the
	// decoded frames match the source exactly.
	FirstMismatch int
}

// OK reports whether every decoded frame matched its source frame.
func (v *VerifyResult) OK() bool {
	return v.FirstMismatch < 0
}

// Transcoder moves frames between video sources, GTVF streams and video sinks.
// A Transcoder is not safe for concurrent use.
type Transcoder struct {
	timeProvider TimeProvider
	onProgress   ProgressCallback
}

// NewTranscoder creates a transcoder using the package default time provider.
func NewTranscoder() *Transcoder {
	return &Transcoder{timeProvider: defaultTimeProvider}
}

// SetTimeProvider sets a custom time provider for deterministic testing.
func (t *Transcoder) SetTimeProvider(tp TimeProvider) {
	if tp == nil {
		tp = DefaultTimeProvider{}
	}
	t.timeProvider = tp
}

// OnProgress sets the callback invoked after each frame.
func (t *Transcoder) OnProgress(callback ProgressCallback) {
	t.onProgress = callback
}

func (t *Transcoder) report(op string, stats codec.Stats, start time.Time) {
	if t.onProgress == nil {
		return
	}
	t.onProgress(Progress{
		Op:      op,
		Frames:  stats.Frames,
		Bytes:   stats.Bytes,
		Elapsed: t.timeProvider.Since(start),
	})
}

// Encode reads every frame from src and writes a GTVF stream to w.
// The context is checked before each frame; on cancellation w holds the
// header and every frame completed so far.
func (t *Transcoder) Encode(ctx context.Context, src video.Source, w io.Writer, opts *EncodeOptions) (*Result, error) {
	if opts == nil {
		opts = DefaultEncodeOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	src, err := opts.prepare(src)
	if err != nil {
		return nil, err
	}
	return t.encode(ctx, src, w)
}

func (t *Transcoder) encode(ctx context.Context, src video.Source, w io.Writer) (*Result, error) {
	start := t.timeProvider.Now()
	width, height := src.Dimensions()

	header, err := codec.NewHeader(height, width)
	if err != nil {
		return nil, err
	}
	enc, err := codec.NewEncoder(w, header)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Transcoder.Encode",
		"width":    width,
		"height":   height,
	}).Info("Starting GTVF encode")

	for {
		if err := ctx.Err(); err != nil {
			return t.fail("Transcoder.Encode", enc.Header(), enc.Stats(), start, err)
		}

		f, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return t.fail("Transcoder.Encode", enc.Header(), enc.Stats(), start,
				fmt.Errorf("reading source frame %d: %w", enc.Stats().Frames, err))
		}
		if err := enc.EncodeFrame(f.Luma); err != nil {
			return t.fail("Transcoder.Encode", enc.Header(), enc.Stats(), start, err)
		}

		logrus.WithFields(logrus.Fields{
			"function": "Transcoder.Encode",
			"frame":    enc.Stats().Frames - 1,
			"bytes":    enc.Stats().Bytes,
		}).Debug("Encoded frame")
		t.report("encode", enc.Stats(), start)
	}

	result := &Result{Header: enc.Header(), Stats: enc.Stats(), Elapsed: t.timeProvider.Since(start)}
	logrus.WithFields(logrus.Fields{
		"function":          "Transcoder.Encode",
		"frames":            result.Stats.Frames,
		"bytes":             result.Stats.Bytes,
		"literal_tokens":    result.Stats.LiteralTokens,
		"repeat_tokens":     result.Stats.RepeatTokens,
		"compression_ratio": result.Stats.CompressionRatio(),
		"elapsed":           result.Elapsed,
	}).Info("GTVF encode finished")

	return result, nil
}

// Decode reads a GTVF stream from r and writes every frame to sink. The sink
// is closed before Decode returns, so on failure or cancellation it holds
// every frame decoded up to that point.
func (t *Transcoder) Decode(ctx context.Context, r io.Reader, sink video.Sink) (result *Result, err error) {
	defer func() {
		if closeErr := sink.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	start := t.timeProvider.Now()
	dec, err := codec.NewDecoder(r)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Transcoder.Decode",
			"error":    err.Error(),
		}).Error("Failed to read GTVF header")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Transcoder.Decode",
		"header":   dec.Header().String(),
	}).Info("Starting GTVF decode")

	h := dec.Header()
	if err := sink.Start(int(h.Width), int(h.Height)); err != nil {
		return t.fail("Transcoder.Decode", h, dec.Stats(), start, fmt.Errorf("starting output: %w", err))
	}

	for {
		if err := ctx.Err(); err != nil {
			return t.fail("Transcoder.Decode", dec.Header(), dec.Stats(), start, err)
		}

		fb, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return t.fail("Transcoder.Decode", dec.Header(), dec.Stats(), start, err)
		}
		if err := sink.WriteFrame(fb); err != nil {
			return t.fail("Transcoder.Decode", dec.Header(), dec.Stats(), start,
				fmt.Errorf("writing frame %d: %w", dec.Stats().Frames-1, err))
		}

		logrus.WithFields(logrus.Fields{
			"function": "Transcoder.Decode",
			"frame":    dec.Stats().Frames - 1,
		}).Debug("Decoded frame")
		t.report("decode", dec.Stats(), start)
	}

	result = &Result{Header: dec.Header(), Stats: dec.Stats(), Elapsed: t.timeProvider.Since(start)}
	logrus.WithFields(logrus.Fields{
		"function": "Transcoder.Decode",
		"frames":   result.Stats.Frames,
		"bytes":    result.Stats.Bytes,
		"elapsed":  result.Elapsed,
	}).Info("GTVF decode finished")

	return result, nil
}

// fail logs err and returns the partial result alongside it.
func (t *Transcoder) fail(function string, h codec.Header, stats codec.Stats, start time.Time, err error) (*Result, error) {
	entry := logrus.WithFields(logrus.Fields{
		"function": function,
		"frames":   stats.Frames,
		"error":    err.Error(),
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		entry.Warn("GTVF transcode cancelled")
	} else {
		entry.Error("GTVF transcode failed")
	}
	return &Result{Header: h, Stats: stats, Elapsed: t.timeProvider.Since(start)}, err
}

// digestSource records the digest of every frame it passes on.
type digestSource struct {
	video.Source
	digest *video.Digest
}

func (s *digestSource) Next() (*video.Frame, error) {
	f, err := s.Source.Next()
	if err != nil {
		return nil, err
	}
	s.digest.Add(f.Luma)
	return f, nil
}

// Verify encodes src in memory, decodes the result and compares BLAKE2b
// digests of the source and decoded frames. A mismatch returns the result
// together with an error wrapping ErrVerifyMismatch.
func (t *Transcoder) Verify(ctx context.Context, src video.Source, opts *EncodeOptions) (*VerifyResult, error) {
	if opts == nil {
		opts = DefaultEncodeOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	src, err := opts.prepare(src)
	if err != nil {
		return nil, err
	}

	sourced := &digestSource{Source: src, digest: video.NewDigest()}
	var stream bytes.Buffer
	encoded, err := t.encode(ctx, sourced, &stream)
	if err != nil {
		return nil, err
	}

	decodedSink := video.NewDigestSink()
	decoded, err := t.Decode(ctx, &stream, decodedSink)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{
		Encode:        encoded,
		Decode:        decoded,
		SourceDigest:  sourced.digest.String(),
		DecodedDigest: decodedSink.String(),
		FirstMismatch: sourced.digest.FirstMismatch(decodedSink.Digest),
	}

	fields := logrus.Fields{
		"function":       "Transcoder.Verify",
		"frames":         encoded.Stats.Frames,
		"source_digest":  result.SourceDigest,
		"decoded_digest": result.DecodedDigest,
	}
	if !result.OK() {
		fields["first_mismatch"] = result.FirstMismatch
		logrus.WithFields(fields).Error("Round trip mismatch")
		return result, fmt.Errorf("%w: first differing frame %d", ErrVerifyMismatch, result.FirstMismatch)
	}
	logrus.WithFields(fields).Info("Round trip verified")
	return result, nil
}
