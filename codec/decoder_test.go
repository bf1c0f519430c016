package codec

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/gtvf/bitstream"
	"github.com/opd-ai/gtvf/frame"
	"github.com/opd-ai/gtvf/limits"
)

// encodeStream encodes frames into a complete in-memory stream.
func encodeStream(t testing.TB, height, width int, frames ...[]uint8) []byte {
	t.Helper()

	h, err := NewHeader(height, width)
	require.NoError(t, err)

	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, h)
	require.NoError(t, err)
	for _, f := range frames {
		require.NoError(t, enc.EncodeFrame(f))
	}
	return buf.Bytes()
}

// decodeAll decodes every frame of a stream and returns the luma planes.
func decodeAll(t testing.TB, data []byte) [][]uint8 {
	t.Helper()

	dec, err := NewBytesDecoder(data)
	require.NoError(t, err)

	var out [][]uint8
	for fb, err := range dec.All() {
		require.NoError(t, err)
		require.True(t, fb.IsFull())
		out = append(out, fb.Luma())
	}
	return out
}

func randomFrame(rng *rand.Rand, n int) []uint8 {
	out := make([]uint8, n)
	for i := range out {
		out[i] = uint8(rng.Intn(256))
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	tests := []struct {
		name   string
		height int
		width  int
		frame  []uint8
	}{
		{name: "single_pixel", height: 1, width: 1, frame: []uint8{200}},
		{name: "all_same", height: 48, width: 64, frame: filled(48*64, 17)},
		{name: "all_same_max_run", height: 1, width: limits.MaxRunLength, frame: filled(limits.MaxRunLength, 0)},
		{name: "alternating", height: 48, width: 64, frame: alternating(48 * 64)},
		{name: "random", height: 48, width: 64, frame: randomFrame(rng, 48*64)},
		{name: "random_low_entropy", height: 37, width: 53, frame: func() []uint8 {
			f := randomFrame(rng, 37*53)
			for i := range f {
				f[i] &= 0x03
			}
			return f
		}()},
		{name: "single_row", height: 1, width: 300, frame: randomFrame(rng, 300)},
		{name: "single_column", height: 300, width: 1, frame: randomFrame(rng, 300)},
		{name: "long_runs_across_rows", height: 400, width: 400, frame: func() []uint8 {
			f := make([]uint8, 400*400)
			for i := range f {
				f[i] = uint8(i / 70000)
			}
			return f
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeStream(t, tt.height, tt.width, tt.frame)
			frames := decodeAll(t, data)
			require.Len(t, frames, 1)
			assert.Equal(t, tt.frame, frames[0])
		})
	}
}

func TestHeaderExactness(t *testing.T) {
	sizes := [][2]int{{1, 1}, {1, 4}, {480, 640}, {limits.MaxDimension, 3}}

	for _, size := range sizes {
		data := encodeStream(t, size[0], size[1])

		h, err := ReadHeader(bitstream.NewBytesReader(data))
		require.NoError(t, err)
		assert.Equal(t, uint16(size[0]), h.Height)
		assert.Equal(t, uint16(size[1]), h.Width)
	}
}

func TestDecodeFinalPixelInclusion(t *testing.T) {
	data := []byte{0x00, 0x01, 0x00, 0x04, 0x80, 0x04, 0x05}

	frames := decodeAll(t, data)
	require.Len(t, frames, 1)
	assert.Equal(t, []uint8{5, 5, 5, 5}, frames[0])
}

func TestDecodeGrayscalePixels(t *testing.T) {
	data := encodeStream(t, 2, 2, []uint8{10, 20, 30, 40})

	dec, err := NewBytesDecoder(data)
	require.NoError(t, err)
	fb, err := dec.Next()
	require.NoError(t, err)

	assert.Equal(t, [frame.Channels]uint8{20, 20, 20}, fb.Pixel(1, 0))
	assert.Equal(t, [frame.Channels]uint8{30, 30, 30}, fb.Pixel(0, 1))
}

func TestDecodeTruncatedStream(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "count_without_literal_payload", data: []byte{0x00, 0x01, 0x00, 0x04, 0x00, 0x04}},
		{name: "count_without_repeat_pixel", data: []byte{0x00, 0x01, 0x00, 0x04, 0x80, 0x04}},
		{name: "half_count_field", data: []byte{0x00, 0x01, 0x00, 0x04, 0x80}},
		{name: "literal_payload_cut_short", data: []byte{0x00, 0x01, 0x00, 0x04, 0x00, 0x04, 1, 2}},
		{name: "frame_missing_tokens", data: []byte{0x00, 0x01, 0x00, 0x04, 0x80, 0x02, 0x07}},
		{name: "largest_frame_cut_after_count", data: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x80, 0x01}},
		{name: "largest_frame_one_run", data: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x09}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := NewBytesDecoder(tt.data)
			require.NoError(t, err)

			fb, err := dec.Next()
			assert.Nil(t, fb)
			assert.ErrorIs(t, err, ErrTruncatedStream)

			var codecErr *Error
			require.True(t, errors.As(err, &codecErr))
			assert.Equal(t, "decode", codecErr.Op)
			assert.Equal(t, 0, codecErr.Frame)

			// The failure is final.
			fb, again := dec.Next()
			assert.Nil(t, fb)
			assert.Equal(t, err, again)
		})
	}
}

func TestDecodeTrailingGarbage(t *testing.T) {
	data := append(encodeStream(t, 1, 2, []uint8{1, 1}), 0x80)

	dec, err := NewBytesDecoder(data)
	require.NoError(t, err)

	_, err = dec.Next()
	require.NoError(t, err)

	_, err = dec.Next()
	assert.ErrorIs(t, err, ErrTruncatedStream)

	var codecErr *Error
	require.True(t, errors.As(err, &codecErr))
	assert.Equal(t, 1, codecErr.Frame)
}

func TestDecodeInvalidTokens(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "zero_literal", data: []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x00}, wantErr: ErrInvalidToken},
		{name: "zero_repeat", data: []byte{0x00, 0x01, 0x00, 0x02, 0x80, 0x00, 0x01}, wantErr: ErrInvalidToken},
		{name: "repeat_past_frame_end", data: []byte{0x00, 0x01, 0x00, 0x02, 0x80, 0x03, 0x01}, wantErr: ErrBufferOverflow},
		{name: "literal_past_frame_end", data: []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 1, 2, 3}, wantErr: ErrBufferOverflow},
		{name: "second_token_past_frame_end", data: []byte{0x00, 0x01, 0x00, 0x03, 0x80, 0x02, 0x01, 0x80, 0x02, 0x02}, wantErr: ErrBufferOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := NewBytesDecoder(tt.data)
			require.NoError(t, err)

			fb, err := dec.Next()
			assert.Nil(t, fb)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecodeInvalidHeader(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "empty", data: nil, wantErr: ErrTruncatedStream},
		{name: "height_only", data: []byte{0x00, 0x10}, wantErr: ErrTruncatedStream},
		{name: "zero_height", data: []byte{0x00, 0x00, 0x00, 0x04}, wantErr: ErrInvalidHeader},
		{name: "zero_width", data: []byte{0x00, 0x04, 0x00, 0x00}, wantErr: ErrInvalidHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := NewBytesDecoder(tt.data)
			assert.Nil(t, dec)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecodeHeaderOnlyStream(t *testing.T) {
	dec, err := NewBytesDecoder([]byte{0x00, 0x02, 0x00, 0x02})
	require.NoError(t, err)

	fb, err := dec.Next()
	assert.Nil(t, fb)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, dec.Stats().Frames)
}

func TestMultiFrameSequencing(t *testing.T) {
	first := []uint8{3, 7, 7, 7}
	second := []uint8{7, 7, 7, 1}

	data := encodeStream(t, 1, 4, first, second)

	// The trailing run of frame one and the leading run of frame two stay
	// separate tokens.
	assert.Equal(t, []byte{
		0x00, 0x01, 0x00, 0x04,
		0x00, 0x02, 3, 7, 0x80, 0x02, 7,
		0x80, 0x03, 7, 0x00, 0x01, 1,
	}, data)

	frames := decodeAll(t, data)
	require.Len(t, frames, 2)
	assert.Equal(t, first, frames[0])
	assert.Equal(t, second, frames[1])
}

func TestConcatenatedSingleFrameStreams(t *testing.T) {
	a := encodeStream(t, 1, 3, []uint8{9, 9, 9})
	b := encodeStream(t, 1, 3, []uint8{9, 9, 9})
	data := append(append([]byte(nil), a...), b[limits.HeaderSize:]...)

	dec, err := NewBytesDecoder(data)
	require.NoError(t, err)

	var frames [][]uint8
	for fb, err := range dec.All() {
		require.NoError(t, err)
		frames = append(frames, fb.Luma())
	}
	assert.Equal(t, [][]uint8{{9, 9, 9}, {9, 9, 9}}, frames)
	assert.Equal(t, 2, dec.Stats().Frames)
	assert.Equal(t, 2, dec.Stats().RepeatTokens)
}

func TestDecoderStats(t *testing.T) {
	data := encodeStream(t, 1, 5, []uint8{1, 2, 3, 3, 3})

	dec, err := NewBytesDecoder(data)
	require.NoError(t, err)
	for _, err := range dec.All() {
		require.NoError(t, err)
	}

	stats := dec.Stats()
	assert.Equal(t, 1, stats.Frames)
	assert.Equal(t, 1, stats.LiteralTokens)
	assert.Equal(t, 3, stats.LiteralSamples)
	assert.Equal(t, 1, stats.RepeatTokens)
	assert.Equal(t, 2, stats.RepeatSamples)
	assert.Equal(t, int64(len(data)), stats.Bytes)
	assert.InDelta(t, 5.0/float64(len(data)), stats.CompressionRatio(), 1e-9)
}

func TestAllStopsAtFirstError(t *testing.T) {
	good := encodeStream(t, 1, 2, []uint8{1, 2}, []uint8{3, 3})
	data := append(good, 0x00, 0x02, 0x05)

	dec, err := NewBytesDecoder(data)
	require.NoError(t, err)

	var frames, failures int
	for fb, err := range dec.All() {
		if err != nil {
			failures++
			assert.Nil(t, fb)
			continue
		}
		frames++
	}
	assert.Equal(t, 2, frames)
	assert.Equal(t, 1, failures)
}

func TestDecodeFrameStandalone(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeFrame(bitstream.NewWriter(&buf), []uint8{8, 8, 9}))

	fb, err := DecodeFrame(bitstream.NewBytesReader(buf.Bytes()), Header{Height: 3, Width: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint8{8, 8, 9}, fb.Luma())
}

func BenchmarkEncodeFrame(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	samples := randomFrame(rng, 640*480)
	for i := range samples {
		samples[i] &= 0xF0
	}

	var buf bytes.Buffer
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		_ = EncodeFrame(bitstream.NewWriter(&buf), samples)
	}
}

func BenchmarkDecodeFrame(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	samples := randomFrame(rng, 640*480)
	for i := range samples {
		samples[i] &= 0xF0
	}
	data := encodeStream(b, 480, 640, samples)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec, _ := NewBytesDecoder(data)
		_, _ = dec.Next()
	}
}
