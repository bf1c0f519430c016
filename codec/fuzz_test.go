package codec

import (
	"bytes"
	"testing"
)

// FuzzDecode checks that arbitrary input never panics and never yields a
// partially filled frame.
func FuzzDecode(f *testing.F) {
	f.Add([]byte{0x00, 0x01, 0x00, 0x04, 0x80, 0x04, 0x05})
	f.Add([]byte{0x00, 0x01, 0x00, 0x04, 0x00, 0x02, 1, 2, 0x00, 0x02, 2, 3})
	f.Add([]byte{0x00, 0x02, 0x00, 0x02, 0x00, 0x00})
	f.Add([]byte{0xFF, 0xFF})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x80, 0x01})

	f.Fuzz(func(t *testing.T, data []byte) {
		dec, err := NewBytesDecoder(data)
		if err != nil {
			return
		}
		for fb, err := range dec.All() {
			if err != nil {
				if fb != nil {
					t.Fatalf("frame returned alongside error %v", err)
				}
				return
			}
			if !fb.IsFull() {
				t.Fatalf("partial frame: %d of %d pixels", fb.Len(), fb.Len()+fb.Remaining())
			}
		}
	})
}

// FuzzRoundTrip checks that every sample sequence survives encode and decode.
func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte{5, 5, 5, 5})
	f.Add([]byte{1, 2, 2, 3})
	f.Add([]byte{7})

	f.Fuzz(func(t *testing.T, samples []byte) {
		if len(samples) == 0 {
			return
		}

		var buf bytes.Buffer
		enc, err := NewEncoder(&buf, Header{Height: 1, Width: uint16(min(len(samples), 0xFFFF))})
		if err != nil {
			t.Fatal(err)
		}
		samples = samples[:min(len(samples), 0xFFFF)]
		if err := enc.EncodeFrame(samples); err != nil {
			t.Fatal(err)
		}

		dec, err := NewBytesDecoder(buf.Bytes())
		if err != nil {
			t.Fatal(err)
		}
		fb, err := dec.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(samples, fb.Luma()) {
			t.Fatalf("round trip mismatch: %v != %v", samples, fb.Luma())
		}
	})
}
