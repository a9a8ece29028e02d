package drill

import (
	"errors"
	"testing"
	"time"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendCommand(cmd string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, cmd)
	return nil
}

type armed struct {
	d   time.Duration
	gen uint64
}

type fakeTimer struct {
	armed    []armed
	canceled int
}

func (f *fakeTimer) Arm(d time.Duration, gen uint64) {
	f.armed = append(f.armed, armed{d: d, gen: gen})
}

func (f *fakeTimer) Cancel() { f.canceled++ }

func (f *fakeTimer) last() armed { return f.armed[len(f.armed)-1] }

type fixedSpeed int

func (s fixedSpeed) CurrentWPM() int { return int(s) }

func TestPacerSendsOneCharPerExpiry(t *testing.T) {
	sender := &fakeSender{}
	timer := &fakeTimer{}
	p := NewPacer(sender, timer, fixedSpeed(20))
	p.SetExtraSpacing(100)

	if err := p.Start("SO S"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "S" {
		t.Fatalf("unexpected sends %v", sender.sent)
	}
	// S: 1+1+1+1+1 + 3 = 8 units * 60ms + 100ms
	if got := timer.last().d; got != 580*time.Millisecond {
		t.Fatalf("unexpected hold %s", got)
	}
	for i := 0; i < 3; i++ {
		if err := p.Expire(timer.last().gen); err != nil {
			t.Fatalf("Expire: %v", err)
		}
	}
	want := []string{"S", "O", " ", "S"}
	if len(sender.sent) != len(want) {
		t.Fatalf("unexpected sends %v", sender.sent)
	}
	for i, w := range want {
		if sender.sent[i] != w {
			t.Fatalf("send %d: expected %q, got %q", i, w, sender.sent[i])
		}
	}
	if timer.armed[2].d != 520*time.Millisecond {
		t.Fatalf("unexpected word gap hold %s", timer.armed[2].d)
	}
	if p.State() != Sending {
		t.Fatalf("expected sending before final expiry")
	}
	if err := p.Expire(timer.last().gen); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if p.State() != Idle || len(sender.sent) != 4 {
		t.Fatalf("expected idle after last char, sends %v", sender.sent)
	}
}

func TestPacerIgnoresStaleExpiry(t *testing.T) {
	sender := &fakeSender{}
	timer := &fakeTimer{}
	p := NewPacer(sender, timer, nil)
	if err := p.Start("AB"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	stale := timer.last().gen
	if err := p.Start("CD"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if timer.canceled != 1 {
		t.Fatalf("expected pending delay canceled, got %d", timer.canceled)
	}
	if err := p.Expire(stale); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if len(sender.sent) != 2 || sender.sent[1] != "C" {
		t.Fatalf("stale expiry sent text: %v", sender.sent)
	}
	if err := p.Expire(timer.last().gen); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if sender.sent[2] != "D" {
		t.Fatalf("unexpected sends %v", sender.sent)
	}
}

func TestPacerFallbackSpeed(t *testing.T) {
	timer := &fakeTimer{}
	p := NewPacer(&fakeSender{}, timer, fixedSpeed(0))
	if err := p.Start("E"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// E = 1 + 3 units at 20 wpm
	if got := timer.last().d; got != 240*time.Millisecond {
		t.Fatalf("unexpected hold %s", got)
	}
}

func TestPacerStop(t *testing.T) {
	sender := &fakeSender{}
	timer := &fakeTimer{}
	p := NewPacer(sender, timer, nil)
	if err := p.Start("ABC"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	gen := timer.last().gen
	p.Stop()
	if err := p.Expire(gen); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if p.State() != Idle || len(sender.sent) != 1 {
		t.Fatalf("stopped pacer kept sending: %v", sender.sent)
	}
}

func TestPacerErrors(t *testing.T) {
	p := NewPacer(&fakeSender{}, &fakeTimer{}, nil)
	if err := p.Start(""); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	failing := &fakeSender{err: errors.New("port closed")}
	p = NewPacer(failing, &fakeTimer{}, nil)
	if err := p.Start("A"); err == nil {
		t.Fatalf("expected send error")
	}
	if p.State() != Idle {
		t.Fatalf("expected idle after send failure")
	}
}

func TestHold(t *testing.T) {
	cases := []struct {
		c     rune
		wpm   int
		extra int
		want  time.Duration
	}{
		{'T', 20, 0, 360 * time.Millisecond},
		{'0', 12, 0, 2200 * time.Millisecond},
		{'#', 20, 50, 230 * time.Millisecond},
		{'E', 7, 0, 685 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := Hold(tc.c, tc.wpm, tc.extra); got != tc.want {
			t.Fatalf("%q at %d: expected %s, got %s", tc.c, tc.wpm, tc.want, got)
		}
	}
}

func TestAfterFuncTimer(t *testing.T) {
	fired := make(chan uint64, 1)
	timer := NewAfterFuncTimer(func(gen uint64) { fired <- gen })
	timer.Arm(time.Hour, 1)
	timer.Arm(time.Millisecond, 2)
	select {
	case gen := <-fired:
		if gen != 2 {
			t.Fatalf("unexpected generation %d", gen)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timer did not fire")
	}
	timer.Arm(50*time.Millisecond, 3)
	timer.Cancel()
	select {
	case gen := <-fired:
		t.Fatalf("canceled timer fired %d", gen)
	case <-time.After(150 * time.Millisecond):
	}
}
