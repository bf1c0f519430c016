// Package gtvf implements the GTVF grayscale run-length video format.
//
// A GTVF stream is a four byte header (big-endian height and width) followed
// by one token stream per frame. Each frame is a raster-ordered sequence of
// 8-bit samples split into literal tokens (a count below 0x8000 followed by
// that many samples) and repeat tokens (0x8000 plus the run length, followed
// by one sample). Frames carry no separators; a decoder knows a frame is done
// when height x width samples have been produced.
//
// This package provides the file-level facade used by the gtvf command. The
// format itself lives in the subpackages:
//
//   - [github.com/opd-ai/gtvf/limits]: format constants and dimension checks
//   - [github.com/opd-ai/gtvf/bitstream]: big-endian field reader and writer
//   - [github.com/opd-ai/gtvf/frame]: the frame buffer a decoder fills
//   - [github.com/opd-ai/gtvf/codec]: the token encoder and decoder
//   - [github.com/opd-ai/gtvf/video]: YUV4MPEG2 and image sources and sinks
//
// # Getting Started
//
// Encode a YUV4MPEG2 clip, then decode it back to images:
//
//	t := gtvf.NewTranscoder()
//	t.OnProgress(func(p gtvf.Progress) {
//	    fmt.Printf("%s: %d frames\n", p.Op, p.Frames)
//	})
//
//	result, err := t.EncodeFile(ctx, "clip.y4m", "clip.gtvf", gtvf.DefaultEncodeOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("ratio %.2f\n", result.Stats.CompressionRatio())
//
//	_, err = t.DecodeFile(ctx, "clip.gtvf", "frames/", gtvf.DefaultDecodeOptions())
//
// Any file name ending in .zst is compressed or decompressed with Zstandard on
// the fly, so clip.gtvf.zst works wherever clip.gtvf does.
//
// # Core Types
//
//   - [Transcoder]: runs encode, decode and verify passes with progress reporting
//   - [EncodeOptions]: sample channel and scaling applied before encoding
//   - [DecodeOptions]: frame rate and image naming for decoded output
//   - [Result]: header, token statistics and elapsed time of a pass
//   - [TimeProvider]: interface for injectable time (testing support)
//
// # Verification
//
// [Transcoder.Verify] encodes a source in memory, decodes it again and
// compares BLAKE2b-256 digests of every frame. The codec is lossless, so any
// mismatch is a bug and is reported as [ErrVerifyMismatch].
//
// # Cancellation
//
// Every pass takes a context.Context that is checked between frames. A
// cancelled encode leaves a valid stream holding every frame written so far.
//
// # Logging
//
// The transcoder and the video package log through logrus with a "function"
// field on every entry. The codec packages do not log; they report failures
// through wrapped errors usable with errors.Is and errors.As.
package gtvf
