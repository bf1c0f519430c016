package gtvf

import (
	"fmt"
	"io"

	"github.com/opd-ai/gtvf/codec"
)

// Info describes a GTVF stream without keeping its frames.
type Info struct {
	Header codec.Header
	Stats  codec.Stats
}

// String renders the summary printed by the info command.
func (i *Info) String() string {
	return fmt.Sprintf("%s, %d frames, %d bytes, %d literal tokens (%d samples), %d repeat tokens (%d samples), ratio %.2f",
		i.Header, i.Stats.Frames, i.Stats.Bytes,
		i.Stats.LiteralTokens, i.Stats.LiteralSamples,
		i.Stats.RepeatTokens, i.Stats.RepeatSamples,
		i.Stats.CompressionRatio())
}

// Inspect decodes every frame of the stream in r and returns its header and
// token statistics. When decoding fails the statistics gathered up to the
// failing frame are returned with the error.
func Inspect(r io.Reader) (*Info, error) {
	dec, err := codec.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	for _, err := range dec.All() {
		if err != nil {
			return &Info{Header: dec.Header(), Stats: dec.Stats()}, err
		}
	}
	return &Info{Header: dec.Header(), Stats: dec.Stats()}, nil
}
