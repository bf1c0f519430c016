// Package codec implements the GTVF token codec.
//
// A GTVF stream is a four-byte header followed by the concatenated token
// streams of every frame:
//
//	offset 0:      u16 height
//	offset 2:      u16 width
//	offset 4..EOF: per-frame token streams, no prefix or separator
//
// All integers are big-endian. Each token starts with a u16 count field.
// Fields below 0x8000 introduce a literal token followed by that many u8
// samples; fields at or above 0x8000 introduce a repeat token followed by one
// u8 sample repeated (field - 0x8000) times.
//
// # Encoding
//
// The encoder is a per-frame state machine with three modes: choose, repeat
// and literal. It picks a mode once per token by comparing each sample with
// its predecessor, closes the token when the run ends, when it reaches
// 0x7FFF samples, or at the end of the frame, and starts the next frame from
// a fresh state:
//
//	enc, err := codec.NewEncoder(w, codec.Header{Height: 480, Width: 640})
//	if err != nil {
//	    return err
//	}
//	for _, luma := range frames {
//	    if err := enc.EncodeFrame(luma); err != nil {
//	        return fmt.Errorf("encoding failed: %w", err)
//	    }
//	}
//
// # Decoding
//
// The decoder mirrors the encoder with a read-count, literal and repeat state
// machine that fills a frame.Buffer one pixel at a time:
//
//	dec, err := codec.NewDecoder(r)
//	if err != nil {
//	    return err
//	}
//	for fb, err := range dec.All() {
//	    if err != nil {
//	        return err
//	    }
//	    // hand fb to a sink
//	}
//
// Decoded frames are grayscale: every pixel stores the decoded sample in all
// three channels.
//
// # Errors
//
// Failures are reported as *Error values carrying the frame index and stream
// offset, wrapping one of ErrTruncatedStream, ErrBufferOverflow,
// ErrInvalidHeader, ErrInvalidToken or ErrFrameSize. The package never logs
// and never retries; a corrupt stream is not repaired. Reaching the end of
// the stream exactly at a frame boundary is reported as io.EOF.
//
// # Thread Safety
//
// Encoder and Decoder are not safe for concurrent use. Frames are processed
// strictly in stream order.
package codec
