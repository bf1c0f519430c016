package gtvf

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/gtvf/codec"
	"github.com/opd-ai/gtvf/frame"
	"github.com/opd-ai/gtvf/video"
)

// mockTimeProvider advances by step on every call to Now.
type mockTimeProvider struct {
	now  time.Time
	step time.Duration
}

func (m *mockTimeProvider) Now() time.Time {
	m.now = m.now.Add(m.step)
	return m.now
}

func (m *mockTimeProvider) Since(t time.Time) time.Duration {
	return m.Now().Sub(t)
}

// memorySource replays frames held in memory.
type memorySource struct {
	width, height int
	frames        [][]uint8
}

func (s *memorySource) Dimensions() (int, int) { return s.width, s.height }

func (s *memorySource) Next() (*video.Frame, error) {
	if len(s.frames) == 0 {
		return nil, io.EOF
	}
	f := &video.Frame{Width: s.width, Height: s.height, Luma: s.frames[0]}
	s.frames = s.frames[1:]
	return f, nil
}

// collectSink keeps the luma plane of every frame it receives.
type collectSink struct {
	width, height int
	frames        [][]uint8
	closed        bool
}

func (s *collectSink) Start(width, height int) error {
	s.width, s.height = width, height
	return nil
}

func (s *collectSink) WriteFrame(fb *frame.Buffer) error {
	s.frames = append(s.frames, fb.Luma())
	return nil
}

func (s *collectSink) Close() error {
	s.closed = true
	return nil
}

func testFrames() [][]uint8 {
	return [][]uint8{
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		{9, 9, 9, 1, 2, 2, 2, 2, 7, 8, 8, 200},
	}
}

func newTestSource() *memorySource {
	return &memorySource{width: 4, height: 3, frames: testFrames()}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tr := NewTranscoder()
	var stream bytes.Buffer

	encoded, err := tr.Encode(context.Background(), newTestSource(), &stream, nil)
	require.NoError(t, err)
	assert.Equal(t, codec.Header{Height: 3, Width: 4}, encoded.Header)
	assert.Equal(t, 3, encoded.Stats.Frames)
	assert.Equal(t, int64(stream.Len()), encoded.Stats.Bytes)

	sink := &collectSink{}
	decoded, err := tr.Decode(context.Background(), bytes.NewReader(stream.Bytes()), sink)
	require.NoError(t, err)
	assert.True(t, sink.closed)
	assert.Equal(t, 4, sink.width)
	assert.Equal(t, 3, sink.height)
	assert.Equal(t, testFrames(), sink.frames)
	assert.Equal(t, encoded.Stats, decoded.Stats)
}

func TestEncodeReportsProgress(t *testing.T) {
	tr := NewTranscoder()
	tr.SetTimeProvider(&mockTimeProvider{now: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC), step: time.Second})

	var reports []Progress
	tr.OnProgress(func(p Progress) {
		reports = append(reports, p)
	})

	result, err := tr.Encode(context.Background(), newTestSource(), io.Discard, DefaultEncodeOptions())
	require.NoError(t, err)

	require.Len(t, reports, 3)
	for i, p := range reports {
		assert.Equal(t, "encode", p.Op)
		assert.Equal(t, i+1, p.Frames)
		assert.Equal(t, time.Duration(i+1)*time.Second, p.Elapsed)
	}
	assert.Equal(t, result.Stats.Bytes, reports[2].Bytes)
	assert.Equal(t, 4*time.Second, result.Elapsed)
	assert.InDelta(t, 0.75, result.FramesPerSecond(), 1e-9)
}

func TestEncodeStopsOnCancel(t *testing.T) {
	tr := NewTranscoder()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr.OnProgress(func(p Progress) {
		if p.Frames == 1 {
			cancel()
		}
	})

	var stream bytes.Buffer
	result, err := tr.Encode(ctx, newTestSource(), &stream, nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Stats.Frames)

	info, err := Inspect(&stream)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Stats.Frames)
}

func TestDecodeStopsOnCancel(t *testing.T) {
	var stream bytes.Buffer
	_, err := NewTranscoder().Encode(context.Background(), newTestSource(), &stream, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &collectSink{}
	_, err = NewTranscoder().Decode(ctx, &stream, sink)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.frames)
	assert.True(t, sink.closed)
}

func TestEncodeScalesFrames(t *testing.T) {
	src := &memorySource{width: 4, height: 4, frames: [][]uint8{bytes.Repeat([]uint8{90}, 16)}}
	opts := &EncodeOptions{Channel: video.ChannelLuma, ScaleWidth: 2, ScaleHeight: 2}

	var stream bytes.Buffer
	result, err := NewTranscoder().Encode(context.Background(), src, &stream, opts)
	require.NoError(t, err)
	assert.Equal(t, codec.Header{Height: 2, Width: 2}, result.Header)

	sink := &collectSink{}
	_, err = NewTranscoder().Decode(context.Background(), &stream, sink)
	require.NoError(t, err)
	assert.Equal(t, [][]uint8{{90, 90, 90, 90}}, sink.frames)
}

func TestEncodeRejectsWrongFrameSize(t *testing.T) {
	src := &memorySource{width: 2, height: 2, frames: [][]uint8{{1, 2, 3}}}
	_, err := NewTranscoder().Encode(context.Background(), src, io.Discard, nil)
	assert.ErrorIs(t, err, codec.ErrFrameSize)

	var cerr *codec.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "encode", cerr.Op)
	assert.Equal(t, 0, cerr.Frame)
}

func TestDecodeTruncatedStream(t *testing.T) {
	var stream bytes.Buffer
	_, err := NewTranscoder().Encode(context.Background(), newTestSource(), &stream, nil)
	require.NoError(t, err)

	data := stream.Bytes()[:stream.Len()-1]
	sink := &collectSink{}
	result, err := NewTranscoder().Decode(context.Background(), bytes.NewReader(data), sink)
	assert.ErrorIs(t, err, codec.ErrTruncatedStream)
	assert.Equal(t, 2, result.Stats.Frames)
	assert.Equal(t, testFrames()[:2], sink.frames)
	assert.True(t, sink.closed)
}

func TestDecodeInvalidHeader(t *testing.T) {
	sink := &collectSink{}
	_, err := NewTranscoder().Decode(context.Background(), bytes.NewReader([]byte{0, 0, 0, 4}), sink)
	assert.ErrorIs(t, err, codec.ErrInvalidHeader)
	assert.True(t, sink.closed)
}

func TestEncodeOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    EncodeOptions
		wantErr bool
	}{
		{name: "defaults", opts: *DefaultEncodeOptions()},
		{name: "luma_scaled", opts: EncodeOptions{Channel: video.ChannelLuma, ScaleWidth: 320, ScaleHeight: 240}},
		{name: "unknown_channel", opts: EncodeOptions{Channel: video.Channel(7)}, wantErr: true},
		{name: "half_scale", opts: EncodeOptions{ScaleWidth: 320}, wantErr: true},
		{name: "negative_scale", opts: EncodeOptions{ScaleWidth: -1, ScaleHeight: 10}, wantErr: true},
		{name: "oversized_scale", opts: EncodeOptions{ScaleWidth: 70000, ScaleHeight: 10}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodeOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultDecodeOptions().Validate())

	opts := DefaultDecodeOptions()
	opts.PNGPrefix = ""
	assert.Error(t, opts.Validate())

	opts = DefaultDecodeOptions()
	opts.FrameRate.FrameRateDen = 0
	assert.Error(t, opts.Validate())
}

func TestVerify(t *testing.T) {
	result, err := NewTranscoder().Verify(context.Background(), newTestSource(), nil)
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, -1, result.FirstMismatch)
	assert.Equal(t, result.SourceDigest, result.DecodedDigest)
	assert.Equal(t, 3, result.Encode.Stats.Frames)
	assert.Equal(t, 3, result.Decode.Stats.Frames)
}

func TestVerifyEmptySource(t *testing.T) {
	src := &memorySource{width: 2, height: 2}
	result, err := NewTranscoder().Verify(context.Background(), src, nil)
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, 0, result.Encode.Stats.Frames)
}

func TestVerifyResultOK(t *testing.T) {
	assert.True(t, (&VerifyResult{FirstMismatch: -1}).OK())
	assert.False(t, (&VerifyResult{FirstMismatch: 0}).OK())
}

func TestInspect(t *testing.T) {
	var stream bytes.Buffer
	encoded, err := NewTranscoder().Encode(context.Background(), newTestSource(), &stream, nil)
	require.NoError(t, err)

	info, err := Inspect(bytes.NewReader(stream.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, encoded.Header, info.Header)
	assert.Equal(t, encoded.Stats, info.Stats)
	assert.Equal(t, 36, info.Stats.Samples())
	assert.Contains(t, info.String(), "4x3, 3 frames")

	partial, err := Inspect(bytes.NewReader(stream.Bytes()[:stream.Len()-1]))
	assert.ErrorIs(t, err, codec.ErrTruncatedStream)
	require.NotNil(t, partial)
	assert.Equal(t, 2, partial.Stats.Frames)
}

func TestDecodeHeaderOnlyStreamToY4M(t *testing.T) {
	var out bytes.Buffer
	sink, err := video.NewY4MSink(&out, video.DefaultY4MOptions())
	require.NoError(t, err)

	result, err := NewTranscoder().Decode(context.Background(), bytes.NewReader([]byte{0x00, 0x02, 0x00, 0x03}), sink)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.Frames)
	assert.Equal(t, "YUV4MPEG2 W3 H2 F30:1 Ip A1:1 Cmono\n", out.String())

	src, err := video.NewY4MSource(&out)
	require.NoError(t, err)
	w, h := src.Dimensions()
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, h)
	_, err = src.Next()
	assert.Equal(t, io.EOF, err)
}
