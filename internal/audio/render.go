package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Renderer turns scripts into interleaved int16 samples.
type Renderer struct {
	Format Format
	// Volume scales the amplitude, 0.0 to 1.0 of full scale.
	Volume float64
}

// NewRenderer returns a full-volume renderer for the default format.
func NewRenderer() Renderer {
	return Renderer{Format: DefaultFormat, Volume: 1}
}

// Render renders text at full volume in the default format.
func Render(text string, wpm, toneHz, extraSpacingMs int) ([]int16, error) {
	return NewRenderer().Render(text, wpm, toneHz, extraSpacingMs)
}

// Render renders text with the given speed, pitch and extra spacing.
func (r Renderer) Render(text string, wpm, toneHz, extraSpacingMs int) ([]int16, error) {
	if toneHz <= 0 {
		return nil, fmt.Errorf("%w: tone must be positive, got %d Hz", ErrInvalidArgument, toneHz)
	}
	script, err := BuildScript(text, wpm, extraSpacingMs)
	if err != nil {
		return nil, err
	}
	return r.RenderScript(script, toneHz), nil
}

// RenderScript renders each segment as round(rate*d) frames. Tone phase
// restarts at every segment.
func (r Renderer) RenderScript(script Script, toneHz int) []int16 {
	f := r.format()
	total := 0
	for _, seg := range script {
		total += FrameCount(seg.Seconds, f.SampleRate)
	}
	out := make([]int16, 0, total*f.Channels)
	for _, seg := range script {
		n := FrameCount(seg.Seconds, f.SampleRate)
		if seg.Kind == Silence {
			out = append(out, make([]int16, n*f.Channels)...)
			continue
		}
		out = r.appendTone(out, n, toneHz)
	}
	return out
}

// ContinuousTone pre-renders a bounded tone. Playback of it ends in
// silence if nobody stops it before the bound.
func (r Renderer) ContinuousTone(toneHz int, bound time.Duration) ([]int16, error) {
	if toneHz <= 0 {
		return nil, fmt.Errorf("%w: tone must be positive, got %d Hz", ErrInvalidArgument, toneHz)
	}
	if bound <= 0 {
		return nil, fmt.Errorf("%w: tone bound must be positive, got %s", ErrInvalidArgument, bound)
	}
	n := FrameCount(bound.Seconds(), r.format().SampleRate)
	return r.appendTone(make([]int16, 0, n*r.format().Channels), n, toneHz), nil
}

// RenderContinuousTone renders a bounded full-volume tone in the default
// format.
func RenderContinuousTone(toneHz int, bound time.Duration) ([]int16, error) {
	return NewRenderer().ContinuousTone(toneHz, bound)
}

func (r Renderer) appendTone(out []int16, frames, toneHz int) []int16 {
	f := r.format()
	amp := clampVolume(r.Volume) * maxAmp
	step := 2 * math.Pi * float64(toneHz) / float64(f.SampleRate)
	for i := 0; i < frames; i++ {
		v := int16(amp * math.Sin(step*float64(i)))
		for c := 0; c < f.Channels; c++ {
			out = append(out, v)
		}
	}
	return out
}

func (r Renderer) format() Format {
	if !r.Format.valid() {
		return DefaultFormat
	}
	return r.Format
}

// FrameCount converts seconds to a rounded frame count.
func FrameCount(seconds float64, sampleRate int) int {
	return int(math.Round(float64(sampleRate) * seconds))
}

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
