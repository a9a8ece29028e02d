package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync/atomic"
)

// ToneStream is an endless sine tone read as s16le PCM. Reads return
// io.EOF once Close has been called.
type ToneStream struct {
	format Format
	amp    float64
	step   float64
	frame  uint64
	closed atomic.Bool
}

// NewToneStream starts a tone in the given format.
func NewToneStream(f Format, toneHz int, volume float64) (*ToneStream, error) {
	if toneHz <= 0 {
		return nil, fmt.Errorf("%w: tone must be positive, got %d Hz", ErrInvalidArgument, toneHz)
	}
	if !f.valid() {
		f = DefaultFormat
	}
	return &ToneStream{
		format: f,
		amp:    clampVolume(volume) * maxAmp,
		step:   2 * math.Pi * float64(toneHz) / float64(f.SampleRate),
	}, nil
}

// Read fills p with whole frames.
func (s *ToneStream) Read(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, io.EOF
	}
	frameBytes := 2 * s.format.Channels
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}
	n := 0
	for i := 0; i < frames; i++ {
		v := int16(s.amp * math.Sin(s.step*float64(s.frame)))
		s.frame++
		if s.frame == uint64(s.format.SampleRate) {
			// integer tones complete whole cycles every second
			s.frame = 0
		}
		for c := 0; c < s.format.Channels; c++ {
			binary.LittleEndian.PutUint16(p[n:], uint16(v))
			n += 2
		}
	}
	return n, nil
}

// Close ends the stream.
func (s *ToneStream) Close() error {
	s.closed.Store(true)
	return nil
}
