package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/opd-ai/gtvf/bitstream"
	"github.com/opd-ai/gtvf/limits"
)

// encodeMode is the token encoder's state.
type encodeMode uint8

const (
	chooseMode encodeMode = iota
	repeatMode
	literalMode
)

// encoderState is the per-frame run/literal state machine. A fresh value is
// built for every frame.
type encoderState struct {
	mode    encodeMode
	count   int // samples in the open token, excluding the current one
	pending []uint8
	last    uint8
	seeded  bool
	single  [1]uint8
	emit    func(Token) error
}

func newEncoderState(emit func(Token) error) *encoderState {
	return &encoderState{
		mode:  chooseMode,
		count: -1,
		emit:  emit,
	}
}

// step consumes one sample. final marks the last sample of the frame.
func (s *encoderState) step(sample uint8, final bool) error {
	s.count++

	if !s.seeded {
		s.last = sample
		s.seeded = true
		if final {
			return s.emitSingle(sample)
		}
		return nil
	}

	if s.mode == chooseMode {
		if sample == s.last {
			s.mode = repeatMode
		} else {
			s.mode = literalMode
		}
	}

	var err error
	switch s.mode {
	case repeatMode:
		err = s.stepRepeat(sample, final)
	case literalMode:
		err = s.stepLiteral(sample, final)
	}

	s.last = sample
	return err
}

// stepRepeat extends or closes a run of s.last.
func (s *encoderState) stepRepeat(sample uint8, final bool) error {
	if sample == s.last && s.count < limits.MaxRunLength && !final {
		return nil
	}

	if final && sample == s.last && s.count < limits.MaxRunLength {
		return s.closeRepeat(s.count + 1)
	}

	if err := s.closeRepeat(s.count); err != nil {
		return err
	}
	if final {
		return s.emitSingle(sample)
	}
	return nil
}

// stepLiteral queues s.last and closes the literal run when needed.
func (s *encoderState) stepLiteral(sample uint8, final bool) error {
	s.pending = append(s.pending, s.last)

	if sample != s.last && s.count < limits.MaxRunLength && !final {
		return nil
	}

	if final && s.count < limits.MaxRunLength {
		s.pending = append(s.pending, sample)
		return s.closeLiteral()
	}

	if err := s.closeLiteral(); err != nil {
		return err
	}
	if final {
		return s.emitSingle(sample)
	}
	return nil
}

func (s *encoderState) closeRepeat(length int) error {
	s.count = 0
	s.mode = chooseMode
	return s.emit(Token{Kind: TokenRepeat, Length: length, Value: s.last})
}

func (s *encoderState) closeLiteral() error {
	t := Token{Kind: TokenLiteral, Length: len(s.pending), Literals: s.pending}
	s.count = 0
	s.mode = chooseMode
	s.pending = s.pending[:0]
	return s.emit(t)
}

// emitSingle writes a one-sample literal for a sample that no open token can absorb.
func (s *encoderState) emitSingle(sample uint8) error {
	s.single[0] = sample
	s.count = 0
	s.mode = chooseMode
	return s.emit(Token{Kind: TokenLiteral, Length: 1, Literals: s.single[:]})
}

// encodeTokens runs the state machine over one frame. The Literals slice of a
// token passed to emit is only valid until emit returns.
func encodeTokens(samples []uint8, emit func(Token) error) error {
	s := newEncoderState(emit)
	final := len(samples) - 1
	for i, v := range samples {
		if err := s.step(v, i == final); err != nil {
			return err
		}
	}
	return nil
}

// Tokenize returns the tokens the encoder produces for one frame of samples.
func Tokenize(samples []uint8) []Token {
	var tokens []Token
	_ = encodeTokens(samples, func(t Token) error {
		if t.Kind == TokenLiteral {
			t.Literals = append([]uint8(nil), t.Literals...)
		}
		tokens = append(tokens, t)
		return nil
	})
	return tokens
}

// EncodeFrame writes the token stream for one frame of samples to w.
func EncodeFrame(w *bitstream.Writer, samples []uint8) error {
	return encodeTokens(samples, func(t Token) error {
		return writeToken(w, t)
	})
}

// Encoder writes a GTVF stream: the header once, then one token stream per frame.
type Encoder struct {
	w       io.Writer
	header  Header
	scratch bytes.Buffer
	tokens  *bitstream.Writer
	stats   Stats
}

// NewEncoder validates the header and writes it to w.
func NewEncoder(w io.Writer, h Header) (*Encoder, error) {
	hw := bitstream.NewWriter(w)
	if err := WriteHeader(hw, h); err != nil {
		return nil, err
	}

	e := &Encoder{
		w:      w,
		header: h,
		stats:  Stats{Bytes: hw.Written()},
	}
	e.tokens = bitstream.NewWriter(&e.scratch)
	return e, nil
}

// EncodeFrame encodes one raster-ordered frame of luma samples. The frame's
// tokens are assembled in memory and handed to the output in a single write.
func (e *Encoder) EncodeFrame(samples []uint8) error {
	index := e.stats.Frames
	if err := limits.ValidateFrameSamples(samples, int(e.header.Height), int(e.header.Width)); err != nil {
		return newError("encode", index, e.stats.Bytes, fmt.Errorf("%w: %w", ErrFrameSize, err))
	}

	e.scratch.Reset()
	frameStats := Stats{Frames: 1}
	err := encodeTokens(samples, func(t Token) error {
		frameStats.addToken(t.Kind, t.Length)
		return writeToken(e.tokens, t)
	})
	if err != nil {
		return newError("encode", index, e.stats.Bytes, err)
	}

	n, err := e.w.Write(e.scratch.Bytes())
	if err != nil {
		return newError("encode", index, e.stats.Bytes, err)
	}
	frameStats.Bytes = int64(n)
	e.stats.merge(frameStats)
	return nil
}

// Header returns the stream header.
func (e *Encoder) Header() Header {
	return e.header
}

// Stats returns counters for everything written so far.
func (e *Encoder) Stats() Stats {
	return e.stats
}
