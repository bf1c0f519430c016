package codec

import (
	"fmt"

	"github.com/opd-ai/gtvf/bitstream"
	"github.com/opd-ai/gtvf/limits"
)

// TokenKind distinguishes literal tokens from repeat tokens.
type TokenKind uint8

const (
	// TokenLiteral carries its samples one by one.
	TokenLiteral TokenKind = iota
	// TokenRepeat carries one sample and a repetition count.
	TokenRepeat
)

// String returns a string representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenLiteral:
		return "literal"
	case TokenRepeat:
		return "repeat"
	default:
		return "unknown"
	}
}

// Token is one encoded unit of a frame's token stream.
type Token struct {
	Kind     TokenKind
	Length   int     // samples covered, 1..limits.MaxRunLength
	Value    uint8   // repeated sample, repeat tokens only
	Literals []uint8 // samples in order, literal tokens only
}

// CountField returns the 16-bit count field that introduces the token.
func (t Token) CountField() uint16 {
	if t.Kind == TokenRepeat {
		return uint16(limits.RepeatFlag + t.Length)
	}
	return uint16(t.Length)
}

// EncodedSize returns the number of bytes the token occupies in a stream.
func (t Token) EncodedSize() int {
	if t.Kind == TokenRepeat {
		return limits.TokenCountSize + 1
	}
	return limits.TokenCountSize + t.Length
}

// String returns a compact description such as "repeat(4x5)" or "literal(2)".
func (t Token) String() string {
	if t.Kind == TokenRepeat {
		return fmt.Sprintf("repeat(%dx%d)", t.Length, t.Value)
	}
	return fmt.Sprintf("literal(%d)", t.Length)
}

// ParseCountField splits a count field into its token kind and run length.
func ParseCountField(field uint16) (TokenKind, int) {
	if field < limits.RepeatFlag {
		return TokenLiteral, int(field)
	}
	return TokenRepeat, int(field) - limits.RepeatFlag
}

// writeToken emits a token's count field and payload.
func writeToken(w *bitstream.Writer, t Token) error {
	if t.Length < 1 || t.Length > limits.MaxRunLength {
		return fmt.Errorf("%w: %s length %d", ErrInvalidToken, t.Kind, t.Length)
	}
	if err := w.WriteU16(t.CountField()); err != nil {
		return err
	}
	if t.Kind == TokenRepeat {
		return w.WriteU8(t.Value)
	}
	_, err := w.Write(t.Literals)
	return err
}

// Stats summarizes the tokens that passed through an encoder or decoder.
type Stats struct {
	Frames         int
	LiteralTokens  int
	RepeatTokens   int
	LiteralSamples int
	RepeatSamples  int
	Bytes          int64 // stream bytes including the header
}

// Tokens returns the total number of tokens.
func (s Stats) Tokens() int {
	return s.LiteralTokens + s.RepeatTokens
}

// Samples returns the total number of luma samples covered by tokens.
func (s Stats) Samples() int {
	return s.LiteralSamples + s.RepeatSamples
}

// CompressionRatio returns luma samples per stream byte, or 0 for an empty stream.
func (s Stats) CompressionRatio() float64 {
	if s.Bytes == 0 {
		return 0
	}
	return float64(s.Samples()) / float64(s.Bytes)
}

// addToken records one token.
func (s *Stats) addToken(kind TokenKind, length int) {
	if kind == TokenRepeat {
		s.RepeatTokens++
		s.RepeatSamples += length
		return
	}
	s.LiteralTokens++
	s.LiteralSamples += length
}

// merge adds the counters of another frame's stats.
func (s *Stats) merge(o Stats) {
	s.Frames += o.Frames
	s.LiteralTokens += o.LiteralTokens
	s.RepeatTokens += o.RepeatTokens
	s.LiteralSamples += o.LiteralSamples
	s.RepeatSamples += o.RepeatSamples
	s.Bytes += o.Bytes
}
