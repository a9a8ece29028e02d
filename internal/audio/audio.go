// Package audio renders Morse code to 16-bit PCM and plays it.
package audio

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/verte-zerg/cwtrain/internal/morse"
)

// Fixed output format of the renderer.
const (
	SampleRate = 44100
	Channels   = 1
	BitDepth   = 16
	maxAmp     = 32767.0
)

// ErrInvalidArgument is returned for non-positive speed or tone and for
// negative spacing.
var ErrInvalidArgument = errors.New("invalid argument")

// Format describes signed 16-bit little-endian PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// DefaultFormat is mono 44.1 kHz.
var DefaultFormat = Format{SampleRate: SampleRate, Channels: Channels}

func (f Format) String() string {
	return fmt.Sprintf("%d Hz/%dch/s16le", f.SampleRate, f.Channels)
}

func (f Format) valid() bool {
	return f.SampleRate > 0 && f.Channels > 0
}

// SegmentKind is tone or silence.
type SegmentKind uint8

const (
	Silence SegmentKind = iota
	Tone
)

// Segment is one span of the rendered script.
type Segment struct {
	Kind    SegmentKind
	Seconds float64
}

// Script is the ordered tone/silence plan for a text.
type Script []Segment

// Seconds returns the total length of the script.
func (s Script) Seconds() float64 {
	total := 0.0
	for _, seg := range s {
		total += seg.Seconds
	}
	return total
}

// UnitDuration returns one dot length in seconds (PARIS, 50 units per word).
func UnitDuration(wpm int) float64 {
	return 1.2 / float64(wpm)
}

// BuildScript plans the segments for text. Unknown characters are
// skipped; a space is a seven unit word gap. extraSpacingMs is added after
// every character and every word gap.
func BuildScript(text string, wpm, extraSpacingMs int) (Script, error) {
	if wpm <= 0 {
		return nil, fmt.Errorf("%w: speed must be positive, got %d wpm", ErrInvalidArgument, wpm)
	}
	if extraSpacingMs < 0 {
		return nil, fmt.Errorf("%w: extra spacing must not be negative, got %d ms", ErrInvalidArgument, extraSpacingMs)
	}
	unit := UnitDuration(wpm)
	extra := float64(extraSpacingMs) / 1000.0

	var script Script
	for _, r := range text {
		c := unicode.ToUpper(r)
		if c == ' ' {
			script = append(script, Segment{Kind: Silence, Seconds: unit * morse.WordGapUnits})
			if extra > 0 {
				script = append(script, Segment{Kind: Silence, Seconds: extra})
			}
			continue
		}
		entry, ok := morse.Lookup(c)
		if !ok {
			continue
		}
		for _, sym := range entry.Symbols {
			script = append(script,
				Segment{Kind: Tone, Seconds: unit * float64(sym.Units())},
				Segment{Kind: Silence, Seconds: unit * morse.SymbolGapUnits},
			)
		}
		script = append(script, Segment{Kind: Silence, Seconds: unit * (morse.CharGapUnits - morse.SymbolGapUnits)})
		if extra > 0 {
			script = append(script, Segment{Kind: Silence, Seconds: extra})
		}
	}
	return script, nil
}
