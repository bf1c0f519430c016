package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func TestDigestIdenticalSequences(t *testing.T) {
	a, b := NewDigest(), NewDigest()
	for _, luma := range [][]uint8{{1, 2, 3}, {4, 5, 6}} {
		a.Add(luma)
		b.Add(luma)
	}

	assert.Equal(t, 2, a.Frames())
	assert.Equal(t, -1, a.FirstMismatch(b))
	assert.Equal(t, a.Sum(), b.Sum())
	assert.Equal(t, a.String(), b.String())
	assert.Len(t, a.String(), 2*blake2b.Size256)
	assert.Equal(t, blake2b.Sum256([]uint8{4, 5, 6}), a.FrameSum(1))
}

func TestDigestFirstMismatch(t *testing.T) {
	tests := []struct {
		name  string
		left  [][]uint8
		right [][]uint8
		want  int
	}{
		{name: "both_empty", want: -1},
		{name: "second_differs", left: [][]uint8{{1}, {2}, {3}}, right: [][]uint8{{1}, {9}, {3}}, want: 1},
		{name: "right_shorter", left: [][]uint8{{1}, {2}}, right: [][]uint8{{1}}, want: 1},
		{name: "left_empty", right: [][]uint8{{1}}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := NewDigest(), NewDigest()
			for _, l := range tt.left {
				left.Add(l)
			}
			for _, r := range tt.right {
				right.Add(r)
			}
			assert.Equal(t, tt.want, left.FirstMismatch(right))
		})
	}
}

func TestDigestOrderSensitive(t *testing.T) {
	a, b := NewDigest(), NewDigest()
	a.Add([]uint8{1})
	a.Add([]uint8{2})
	b.Add([]uint8{2})
	b.Add([]uint8{1})

	assert.NotEqual(t, a.Sum(), b.Sum())
}

func TestDigestSink(t *testing.T) {
	sink := NewDigestSink()
	require.NoError(t, sink.WriteFrame(fullBuffer(t, 1, 3, 7, 8, 9)))
	require.NoError(t, sink.Close())

	want := NewDigest()
	want.Add([]uint8{7, 8, 9})
	assert.Equal(t, -1, sink.FirstMismatch(want))
	assert.Equal(t, want.String(), sink.String())
}
