package audio

import (
	"bytes"
	"fmt"
	"io"
	"time"
)

// Sink accepts s16le PCM and plays it.
type Sink interface {
	Supports(f Format) bool
	Preferred() Format
	Start(f Format, pcm io.Reader) (Playback, error)
}

// Playback is one running sink stream.
type Playback interface {
	Stop() error
	Done() <-chan struct{}
}

// SidetoneMode selects how the local sidetone is produced.
type SidetoneMode string

const (
	// SidetoneStream plays until stopped.
	SidetoneStream SidetoneMode = "stream"
	// SidetoneBounded plays a pre-rendered tone that ends on its own.
	SidetoneBounded SidetoneMode = "bounded"
)

// DefaultToneBound limits bounded sidetones.
const DefaultToneBound = 5 * time.Second

// Engine owns the sink and keeps at most one playback running.
type Engine struct {
	sink      Sink
	volume    float64
	sidetone  SidetoneMode
	toneBound time.Duration

	current Playback
	pcm     io.Closer
	tone    bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithVolume sets the initial volume.
func WithVolume(v float64) EngineOption {
	return func(e *Engine) { e.volume = clampVolume(v) }
}

// WithSidetone selects the sidetone mode and the bound for bounded tones.
func WithSidetone(mode SidetoneMode, bound time.Duration) EngineOption {
	return func(e *Engine) {
		if mode == SidetoneBounded {
			e.sidetone = SidetoneBounded
		}
		if bound > 0 {
			e.toneBound = bound
		}
	}
}

// NewEngine builds an engine around sink.
func NewEngine(sink Sink, opts ...EngineOption) *Engine {
	e := &Engine{
		sink:      sink,
		volume:    1,
		sidetone:  SidetoneStream,
		toneBound: DefaultToneBound,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Format returns the format the sink will be fed.
func (e *Engine) Format() Format {
	if e.sink.Supports(DefaultFormat) {
		return DefaultFormat
	}
	pref := e.sink.Preferred()
	if !pref.valid() {
		return DefaultFormat
	}
	return pref
}

// Volume returns the current volume.
func (e *Engine) Volume() float64 {
	return e.volume
}

// SetVolume applies to the next playback.
func (e *Engine) SetVolume(v float64) {
	e.volume = clampVolume(v)
}

func (e *Engine) renderer() Renderer {
	return Renderer{Format: e.Format(), Volume: e.volume}
}

// PlayText renders text and plays it, stopping whatever was playing.
func (e *Engine) PlayText(text string, wpm, toneHz, extraSpacingMs int) error {
	samples, err := e.renderer().Render(text, wpm, toneHz, extraSpacingMs)
	if err != nil {
		return err
	}
	e.Stop()
	if len(samples) == 0 {
		return nil
	}
	return e.start(bytes.NewReader(SamplesToBytes(samples)), false)
}

// StartTone starts the sidetone. It does nothing while a tone is already
// playing.
func (e *Engine) StartTone(toneHz int) error {
	if e.tone && e.active() {
		return nil
	}
	var pcm io.Reader
	switch e.sidetone {
	case SidetoneBounded:
		samples, err := e.renderer().ContinuousTone(toneHz, e.toneBound)
		if err != nil {
			return err
		}
		pcm = bytes.NewReader(SamplesToBytes(samples))
	default:
		stream, err := NewToneStream(e.Format(), toneHz, e.volume)
		if err != nil {
			return err
		}
		pcm = stream
	}
	e.Stop()
	return e.start(pcm, true)
}

// StopTone stops the sidetone. Text playback is left alone.
func (e *Engine) StopTone() {
	if e.tone {
		e.Stop()
	}
}

// Stop ends the current playback, if any.
func (e *Engine) Stop() {
	if e.current != nil {
		_ = e.current.Stop()
	}
	if e.pcm != nil {
		_ = e.pcm.Close()
	}
	e.current = nil
	e.pcm = nil
	e.tone = false
}

// Playing reports whether a playback is still running.
func (e *Engine) Playing() bool {
	return e.active()
}

// ToneActive reports whether the sidetone is running.
func (e *Engine) ToneActive() bool {
	return e.tone && e.active()
}

func (e *Engine) active() bool {
	if e.current == nil {
		return false
	}
	select {
	case <-e.current.Done():
		return false
	default:
		return true
	}
}

func (e *Engine) start(pcm io.Reader, tone bool) error {
	pb, err := e.sink.Start(e.Format(), pcm)
	if err != nil {
		if c, ok := pcm.(io.Closer); ok {
			_ = c.Close()
		}
		return fmt.Errorf("failed to start playback: %w", err)
	}
	e.current = pb
	e.pcm, _ = pcm.(io.Closer)
	e.tone = tone
	return nil
}
