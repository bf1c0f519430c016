// Package video provides file handling for GTVF tools.
//
// Inputs and outputs whose names end in .zst are transparently compressed
// with Zstandard, so both raw video and GTVF streams can be stored compressed.
package video

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
)

// CompressedExt is the file suffix that enables Zstandard compression.
const CompressedExt = ".zst"

// IsCompressed reports whether path names a Zstandard-compressed file.
func IsCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), CompressedExt)
}

// OutputPath derives <outDir>/<input base name><ext>, dropping the input's
// own extension and any .zst suffix.
func OutputPath(input, outDir, ext string) string {
	base := filepath.Base(input)
	if IsCompressed(base) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, base+ext)
}

type zstdReadCloser struct {
	dec  *zstd.Decoder
	file *os.File
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.file.Close()
}

type zstdWriteCloser struct {
	enc  *zstd.Encoder
	file *os.File
}

func (z *zstdWriteCloser) Write(p []byte) (int, error) {
	return z.enc.Write(p)
}

func (z *zstdWriteCloser) Close() error {
	encErr := z.enc.Close()
	fileErr := z.file.Close()
	if encErr != nil {
		return encErr
	}
	return fileErr
}

// OpenInput opens path for reading, decompressing .zst files on the fly.
func OpenInput(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	cleaned := filepath.Clean(path)
	f, err := os.Open(cleaned)
	if err != nil {
		return nil, err
	}
	if !IsCompressed(cleaned) {
		return f, nil
	}

	dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1), zstd.WithDecoderLowmem(true))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening zstd stream %s: %w", cleaned, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "OpenInput",
		"path":     cleaned,
	}).Debug("Decompressing zstd input")

	return &zstdReadCloser{dec: dec, file: f}, nil
}

// CreateOutput creates or truncates path, compressing .zst files on the fly.
// The parent directory is created if needed.
func CreateOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	cleaned := filepath.Clean(path)
	if dir := filepath.Dir(cleaned); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(cleaned)
	if err != nil {
		return nil, err
	}
	if !IsCompressed(cleaned) {
		return f, nil
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderConcurrency(1), zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating zstd stream %s: %w", cleaned, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "CreateOutput",
		"path":     cleaned,
	}).Debug("Compressing output with zstd")

	return &zstdWriteCloser{enc: enc, file: f}, nil
}
