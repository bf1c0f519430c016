// Package video provides content digests of frame sequences.
package video

import (
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/blake2b"

	"github.com/opd-ai/gtvf/frame"
)

// Digest accumulates BLAKE2b-256 hashes of luma planes. The stream sum chains
// every frame hash in order, so it changes if frames are reordered.
type Digest struct {
	stream hash.Hash
	frames [][blake2b.Size256]byte
}

// NewDigest creates an empty digest.
func NewDigest() *Digest {
	h, err := blake2b.New256(nil)
	if err != nil {
		// Only reachable with an oversized key.
		panic(err)
	}
	return &Digest{stream: h}
}

// Add hashes one frame's samples.
func (d *Digest) Add(luma []uint8) {
	sum := blake2b.Sum256(luma)
	d.frames = append(d.frames, sum)
	d.stream.Write(sum[:])
}

// Frames returns the number of frames hashed.
func (d *Digest) Frames() int {
	return len(d.frames)
}

// FrameSum returns the hash of frame i.
func (d *Digest) FrameSum(i int) [blake2b.Size256]byte {
	return d.frames[i]
}

// Sum returns the hash over every frame hash added so far.
func (d *Digest) Sum() [blake2b.Size256]byte {
	var out [blake2b.Size256]byte
	copy(out[:], d.stream.Sum(nil))
	return out
}

// String returns the stream sum in hex.
func (d *Digest) String() string {
	sum := d.Sum()
	return hex.EncodeToString(sum[:])
}

// FirstMismatch returns the index of the first frame whose hash differs from
// other's, or -1 when both hold identical frame sequences.
func (d *Digest) FirstMismatch(other *Digest) int {
	n := min(len(d.frames), len(other.frames))
	for i := 0; i < n; i++ {
		if d.frames[i] != other.frames[i] {
			return i
		}
	}
	if len(d.frames) != len(other.frames) {
		return n
	}
	return -1
}

// DigestSink hashes decoded frames instead of storing them.
type DigestSink struct {
	*Digest
}

// NewDigestSink creates a sink with an empty digest.
func NewDigestSink() *DigestSink {
	return &DigestSink{Digest: NewDigest()}
}

// Start is a no-op; digests cover frame contents only.
func (s *DigestSink) Start(width, height int) error {
	return nil
}

// WriteFrame hashes the frame's first channel.
func (s *DigestSink) WriteFrame(fb *frame.Buffer) error {
	s.Add(fb.Luma())
	return nil
}

// Close is a no-op.
func (s *DigestSink) Close() error {
	return nil
}
