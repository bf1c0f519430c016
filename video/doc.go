// Package video provides the frame sources and sinks that surround the GTVF codec.
//
// The codec itself only turns luma samples into tokens and tokens back into
// frame buffers. This package supplies the collaborators on either side:
//
//	Encoding: Y4M / image files → Source → (optional ScaledSource) → codec.Encoder
//	Decoding: codec.Decoder → frame.Buffer → Sink → Y4M / PNG files / digest
//
// # Sources
//
// A Source yields Frame values holding one 8-bit sample per pixel:
//
//	src, err := video.NewY4MSource(r)
//	if err != nil {
//	    return err
//	}
//	for {
//	    f, err := src.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    // f.Luma holds f.Width*f.Height samples
//	}
//
// Y4MSource keeps the Y plane of a YUV4MPEG2 stream. ImageSequenceSource
// decodes PNG, JPEG or GIF files and keeps the channel chosen with Channel:
// ChannelRed (the first channel of the RGB triple) or ChannelLuma.
// ScaledSource resizes frames from any source with bilinear interpolation.
//
// # Sinks
//
// A Sink consumes full frame.Buffer values in order. Y4MSink writes a
// monochrome YUV4MPEG2 stream at a fixed frame rate, PNGSequenceSink writes one
// grayscale PNG per frame, and DigestSink records BLAKE2b-256 hashes so two
// frame sequences can be compared without keeping them in memory.
//
// # Files
//
// OpenInput and CreateOutput validate paths and add Zstandard compression for
// names ending in .zst:
//
//	out, err := video.CreateOutput("clip.gtvf.zst")
//
// # Thread Safety
//
// Sources and sinks are NOT thread-safe. Use each from a single goroutine.
package video
