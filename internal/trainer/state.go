package trainer

import (
	"github.com/verte-zerg/cwtrain/internal/drill"
	"github.com/verte-zerg/cwtrain/internal/model"
	"github.com/verte-zerg/cwtrain/internal/tracker"
)

// Config returns the current practice settings.
func (t *Trainer) Config() model.Config { return t.cfg }

// Tracker returns the session tracker.
func (t *Trainer) Tracker() *tracker.Tracker { return t.tracker }

// RxLog returns the receive log.
func (t *Trainer) RxLog() string { return t.rx }

// ClearRx empties the receive log.
func (t *Trainer) ClearRx() { t.rx = "" }

// Answer returns the answer box contents.
func (t *Trainer) Answer() string { return t.answer }

// SetAnswer replaces the answer box contents.
func (t *Trainer) SetAnswer(s string) { t.answer = s }

// Target returns the current drill target.
func (t *Trainer) Target() string { return t.target }

// Feedback returns the last drill message.
func (t *Trainer) Feedback() Feedback { return t.feedback }

// Dashboard returns the device-reported settings.
func (t *Trainer) Dashboard() Dashboard { return t.dash }

// Connected reports whether a link is attached.
func (t *Trainer) Connected() bool { return t.connected }

// Port returns the attached port name.
func (t *Trainer) Port() string { return t.port }

// LastError returns the last link or playback error.
func (t *Trainer) LastError() error { return t.lastErr }

// PacerState returns the drill pacer state.
func (t *Trainer) PacerState() drill.State { return t.pacer.State() }

// WeakChars returns the characters drills are biased toward.
func (t *Trainer) WeakChars() map[rune]struct{} { return t.weak }

// SetDirection switches between RX and TX drills.
func (t *Trainer) SetDirection(dir string) {
	if dir != model.DirectionTX {
		dir = model.DirectionRX
	}
	t.cfg.Direction = dir
}

// SetMode switches between word and group drills.
func (t *Trainer) SetMode(mode string) {
	if mode != model.ModeGroups {
		mode = model.ModeWords
	}
	t.cfg.Mode = mode
}

// SetLocalAudio toggles playback through the local player.
func (t *Trainer) SetLocalAudio(on bool) {
	t.cfg.LocalAudio = on
	if !on && t.player != nil {
		t.player.Stop()
	}
}

// SetShowSystem toggles device messages in the receive log.
func (t *Trainer) SetShowSystem(on bool) { t.cfg.ShowSystem = on }

// SetClientSpacing toggles pacer-driven extra spacing.
func (t *Trainer) SetClientSpacing(on bool) {
	t.cfg.ClientSpacing = on
	if !on {
		t.pacer.Stop()
	}
}

// SetIgnoreSpacing toggles space-insensitive answer feedback.
func (t *Trainer) SetIgnoreSpacing(on bool) { t.cfg.IgnoreSpacing = on }

// SetWPM sets the local playback speed.
func (t *Trainer) SetWPM(wpm int) {
	if wpm > 0 {
		t.cfg.WPM = wpm
	}
}

// SetTone sets the local tone frequency.
func (t *Trainer) SetTone(hz int) {
	if hz > 0 {
		t.cfg.Tone = hz
	}
}

// SetExtraSpacing sets the extra spacing in milliseconds.
func (t *Trainer) SetExtraSpacing(ms int) {
	if ms < 0 {
		ms = 0
	}
	t.cfg.ExtraSpacingMs = ms
	t.pacer.SetExtraSpacing(ms)
}

// SetVolume sets the local playback volume.
func (t *Trainer) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	t.cfg.Volume = v
	if t.player != nil {
		t.player.SetVolume(v)
	}
}
