// Package drill sends drill text to a live device one character at a time.
package drill

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/verte-zerg/cwtrain/internal/link"
	"github.com/verte-zerg/cwtrain/internal/morse"
)

// FallbackWPM is the reference speed when the device speed is unknown.
const FallbackWPM = 20

// ErrEmptyText is returned when a drill has nothing to send.
var ErrEmptyText = errors.New("drill text is empty")

// Timer arms one expiry at a time. Expiry must be delivered back to the
// event loop, which calls Pacer.Expire with the armed generation.
type Timer interface {
	Arm(d time.Duration, gen uint64)
	Cancel()
}

// SpeedSource reports the live device speed, or 0 when unknown.
type SpeedSource interface {
	CurrentWPM() int
}

// State of the pacer.
type State int

const (
	Idle State = iota
	Sending
)

func (s State) String() string {
	if s == Sending {
		return "sending"
	}
	return "idle"
}

// Pacer is a one-shot scheduler: send a character, wait for the device to
// key it plus the extra spacing, send the next.
type Pacer struct {
	sender  link.Sender
	timer   Timer
	speed   SpeedSource
	extraMs int

	text  []rune
	index int
	gen   uint64
	state State
}

// NewPacer builds a pacer. speed may be nil.
func NewPacer(sender link.Sender, timer Timer, speed SpeedSource) *Pacer {
	return &Pacer{sender: sender, timer: timer, speed: speed}
}

// SetExtraSpacing sets the delay added after every character.
func (p *Pacer) SetExtraSpacing(ms int) {
	if ms < 0 {
		ms = 0
	}
	p.extraMs = ms
}

// Start cancels any running drill and sends the first character of text.
func (p *Pacer) Start(text string) error {
	p.Stop()
	runes := []rune(text)
	if len(runes) == 0 {
		return ErrEmptyText
	}
	p.text = runes
	p.index = 0
	p.state = Sending
	return p.sendCurrent()
}

// Expire handles a timer expiry. Stale generations are ignored.
func (p *Pacer) Expire(gen uint64) error {
	if p.state != Sending || gen != p.gen {
		return nil
	}
	if p.index >= len(p.text)-1 {
		p.state = Idle
		return nil
	}
	p.index++
	return p.sendCurrent()
}

// Stop cancels the pending delay and returns to Idle.
func (p *Pacer) Stop() {
	if p.state == Sending {
		p.timer.Cancel()
	}
	p.gen++
	p.state = Idle
}

// State returns the current state.
func (p *Pacer) State() State {
	return p.state
}

// Index returns the position of the last character sent.
func (p *Pacer) Index() int {
	return p.index
}

// Generation returns the generation of the armed delay.
func (p *Pacer) Generation() uint64 {
	return p.gen
}

func (p *Pacer) sendCurrent() error {
	c := p.text[p.index]
	if err := p.sender.SendCommand(string(c)); err != nil {
		p.state = Idle
		return fmt.Errorf("failed to send drill character: %w", err)
	}
	p.gen++
	p.timer.Arm(Hold(c, p.referenceWPM(), p.extraMs), p.gen)
	return nil
}

func (p *Pacer) referenceWPM() int {
	if p.speed != nil {
		if wpm := p.speed.CurrentWPM(); wpm > 0 {
			return wpm
		}
	}
	return FallbackWPM
}

// Hold is how long the device needs for c at wpm, plus extraMs. The unit
// count matches the audio engine; characters without a code only get the
// three unit trailing gap. Milliseconds are truncated before the extra
// spacing is added.
func Hold(c rune, wpm, extraMs int) time.Duration {
	if wpm <= 0 {
		wpm = FallbackWPM
	}
	units := morse.CharUnits(c)
	if units == 0 {
		units = morse.CharGapUnits
	}
	ms := int(float64(units) * 1200.0 / float64(wpm))
	return time.Duration(ms+extraMs) * time.Millisecond
}

// AfterFuncTimer is a Timer on time.AfterFunc. fire runs on the timer
// goroutine and should only post the generation to the event loop.
type AfterFuncTimer struct {
	mu   sync.Mutex
	t    *time.Timer
	fire func(gen uint64)
}

// NewAfterFuncTimer returns a timer calling fire on expiry.
func NewAfterFuncTimer(fire func(gen uint64)) *AfterFuncTimer {
	return &AfterFuncTimer{fire: fire}
}

// Arm replaces any pending expiry.
func (a *AfterFuncTimer) Arm(d time.Duration, gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.t != nil {
		a.t.Stop()
	}
	a.t = time.AfterFunc(d, func() { a.fire(gen) })
}

// Cancel drops the pending expiry.
func (a *AfterFuncTimer) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.t != nil {
		a.t.Stop()
		a.t = nil
	}
}
