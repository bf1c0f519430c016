// Package main provides the gtvf command-line tool.
//
// # Overview
//
// gtvf converts between raw video and the GTVF grayscale run-length format.
// Every command accepts several inputs and processes them in order; a failing
// input is reported and the remaining inputs still run.
//
// # Usage
//
// Encode a YUV4MPEG2 clip into ./clip.gtvf:
//
//	gtvf encode clip.y4m
//
// Encode a quoted image glob, compressed, into out/shots.gtvf.zst:
//
//	gtvf encode -zstd -out-dir out 'shots/*.png'
//
// Decode to YUV4MPEG2 at 25 frames per second, or to PNG images:
//
//	gtvf decode -fps 25 clip.gtvf
//	gtvf decode -png -prefix clip -out-dir frames clip.gtvf
//
// Print stream statistics, or check that a clip survives a round trip:
//
//	gtvf info clip.gtvf
//	gtvf verify clip.y4m
//
// # Configuration Options
//
// Encode and verify:
//   - -channel: sample taken from color images, red or luma (default: red)
//   - -scale: resize frames to WIDTHxHEIGHT before encoding
//
// Decode:
//   - -fps: frame rate written to YUV4MPEG2 output, N or N:D (default: 30:1)
//   - -png: write PNG images instead of YUV4MPEG2
//   - -prefix: PNG file name prefix (default: frame)
//
// Encode and decode:
//   - -o: output path, single input only
//   - -out-dir: directory for outputs named after their inputs (default: .)
//   - -zstd: add a .zst suffix and compress outputs with Zstandard
//   - -progress: print a line per processed frame
//
// Logging, all commands:
//   - -log-level: DEBUG, INFO, WARN or ERROR (default: WARN)
//   - -log-file: append logs to a file instead of stderr
//   - -log-format: text or json (default: text)
//
// # Exit Codes
//
//   - 0: every input succeeded
//   - 1: at least one input failed
//   - 2: invalid command line
//
// # Signal Handling
//
// An interrupt stops the current command after the frame in progress. Files
// written so far hold every completed frame.
package main
