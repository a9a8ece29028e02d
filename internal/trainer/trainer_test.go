package trainer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/cwtrain/internal/drill"
	"github.com/verte-zerg/cwtrain/internal/generator"
	"github.com/verte-zerg/cwtrain/internal/link"
	"github.com/verte-zerg/cwtrain/internal/model"
	"github.com/verte-zerg/cwtrain/internal/tracker"
)

type playCall struct {
	text  string
	wpm   int
	tone  int
	extra int
}

type fakePlayer struct {
	plays      []playCall
	toneStarts int
	toneStops  int
	stops      int
	volume     float64
}

func (p *fakePlayer) PlayText(text string, wpm, toneHz, extra int) error {
	p.plays = append(p.plays, playCall{text, wpm, toneHz, extra})
	return nil
}
func (p *fakePlayer) StartTone(int) error { p.toneStarts++; return nil }
func (p *fakePlayer) StopTone()           { p.toneStops++ }
func (p *fakePlayer) Stop()               { p.stops++ }
func (p *fakePlayer) SetVolume(v float64) { p.volume = v }

type fakeLink struct{ sent []string }

func (l *fakeLink) SendCommand(cmd string) error {
	l.sent = append(l.sent, cmd)
	return nil
}

type fakeTimer struct {
	gens []uint64
}

func (f *fakeTimer) Arm(_ time.Duration, gen uint64) { f.gens = append(f.gens, gen) }
func (f *fakeTimer) Cancel()                         {}

type fakeAppender struct{ records []model.SessionRecord }

func (a *fakeAppender) Append(rec model.SessionRecord) error {
	a.records = append(a.records, rec)
	return nil
}

type fakeJournal struct {
	sessions []model.JournalSession
	weak     []model.CharAggregate
	err      error
}

func (j *fakeJournal) InsertSession(_ context.Context, s model.JournalSession, _ map[rune]model.CharStat, _ []model.Attempt) (string, error) {
	if j.err != nil {
		return "", j.err
	}
	j.sessions = append(j.sessions, s)
	return "id", nil
}

func (j *fakeJournal) GetWeakChars(context.Context, int) ([]model.CharAggregate, error) {
	return j.weak, nil
}

func baseConfig() model.Config {
	return model.Config{
		Mode:         model.ModeGroups,
		Direction:    model.DirectionRX,
		WPM:          18,
		Tone:         650,
		GroupSize:    3,
		AllowedChars: "K",
		Volume:       0.5,
	}
}

func TestFeedSplitsTextAndLines(t *testing.T) {
	player := &fakePlayer{}
	tr := New(Options{Config: baseConfig(), Player: player})
	if err := tr.Feed([]byte("CQ [DE")); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if err := tr.Feed([]byte(" K1ABC]\n")); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if got := tr.RxLog(); got != "CQ DE K1ABC\n" {
		t.Fatalf("unexpected rx log %q", got)
	}
	// local audio is off: tone stop is honoured, start is not
	if player.toneStarts != 0 || player.toneStops != 1 {
		t.Fatalf("unexpected tone calls %d/%d", player.toneStarts, player.toneStops)
	}
	if player.volume != 0.5 {
		t.Fatalf("volume not applied")
	}
}

func TestStatusLinesUpdateDashboardAndHide(t *testing.T) {
	tr := New(Options{Config: baseConfig()})
	if err := tr.Feed([]byte("AB\nWPM set to 25\nTone set to 700\n")); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if tr.Tracker().CurrentWPM() != 25 {
		t.Fatalf("expected live wpm 25, got %d", tr.Tracker().CurrentWPM())
	}
	d := tr.Dashboard()
	if d.WPM != "25" || d.Tone != "700" {
		t.Fatalf("unexpected dashboard %+v", d)
	}
	if strings.Contains(tr.RxLog(), "set to") {
		t.Fatalf("system messages not hidden: %q", tr.RxLog())
	}

	tr.SetShowSystem(true)
	if err := tr.Feed([]byte("Mode set to Iambic B\n")); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if !strings.Contains(tr.RxLog(), "Mode set to Iambic B") {
		t.Fatalf("system message hidden while shown: %q", tr.RxLog())
	}
	if tr.Dashboard().Mode != "Iambic B" {
		t.Fatalf("unexpected mode %q", tr.Dashboard().Mode)
	}
}

func TestTxModeRoutesPaddleText(t *testing.T) {
	cfg := baseConfig()
	cfg.Direction = model.DirectionTX
	tr := New(Options{Config: cfg, Generator: generator.NewSeeded(1)})
	if err := tr.PlayDrill(); err != nil {
		t.Fatalf("PlayDrill: %v", err)
	}
	if tr.Target() != "KKK" || tr.Feedback().Kind != FeedbackKeyIt {
		t.Fatalf("unexpected drill %q %+v", tr.Target(), tr.Feedback())
	}
	for _, chunk := range []string{"Enc", "oded: K", "KK"} {
		if err := tr.Feed([]byte(chunk)); err != nil {
			t.Fatalf("Feed: %v", err)
		}
	}
	if tr.Answer() != " KKK" {
		t.Fatalf("unexpected answer %q", tr.Answer())
	}
	fb := tr.CheckAnswer()
	if fb.Kind != FeedbackCorrect || !fb.Result.Exact {
		t.Fatalf("unexpected feedback %+v", fb)
	}
	if tr.Answer() != "" {
		t.Fatalf("answer not cleared")
	}
}

func TestOfflineDrillAndEcho(t *testing.T) {
	cfg := baseConfig()
	cfg.LocalAudio = true
	cfg.ClientSpacing = true
	cfg.ExtraSpacingMs = 150
	player := &fakePlayer{}
	tr := New(Options{Config: cfg, Player: player, Generator: generator.NewSeeded(2)})

	if err := tr.PlayDrill(); err != nil {
		t.Fatalf("PlayDrill: %v", err)
	}
	if len(player.plays) != 1 || player.plays[0] != (playCall{"KKK", 18, 650, 150}) {
		t.Fatalf("unexpected plays %+v", player.plays)
	}
	if tr.Tracker().CurrentWPM() != 18 {
		t.Fatalf("offline speed not tracked")
	}

	if err := tr.Feed([]byte("TEST")); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if err := tr.Feed([]byte("Action: Buffer cleared")); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(player.plays) != 2 || player.plays[1] != (playCall{"TEST", 18, 650, 0}) {
		t.Fatalf("unexpected echo %+v", player.plays)
	}
	if err := tr.Feed([]byte("[")); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if player.toneStarts != 1 {
		t.Fatalf("sidetone not started")
	}
}

func TestDeviceDrillSendsTarget(t *testing.T) {
	tr := New(Options{Config: baseConfig(), Generator: generator.NewSeeded(3)})
	if err := tr.PlayDrill(); !errors.Is(err, link.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if tr.Feedback().Kind != FeedbackError {
		t.Fatalf("expected error feedback")
	}
	l := &fakeLink{}
	if err := tr.Connect(l, "ttyUSB0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := tr.PlayDrill(); err != nil {
		t.Fatalf("PlayDrill: %v", err)
	}
	if len(l.sent) != 1 || l.sent[0] != "KKK" {
		t.Fatalf("unexpected sends %v", l.sent)
	}
}

func TestClientSpacingUsesPacer(t *testing.T) {
	cfg := baseConfig()
	cfg.ClientSpacing = true
	timer := &fakeTimer{}
	tr := New(Options{Config: cfg, Generator: generator.NewSeeded(4), Timer: timer})
	l := &fakeLink{}
	if err := tr.Connect(l, "ttyACM0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := tr.PlayDrill(); err != nil {
		t.Fatalf("PlayDrill: %v", err)
	}
	for len(timer.gens) < 3 {
		if err := tr.Dispatch(PacerExpired{Gen: timer.gens[len(timer.gens)-1]}); err != nil {
			t.Fatalf("Dispatch: %v", err)
		}
	}
	if err := tr.Dispatch(PacerExpired{Gen: timer.gens[len(timer.gens)-1]}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if strings.Join(l.sent, "") != "KKK" || len(l.sent) != 3 {
		t.Fatalf("unexpected sends %v", l.sent)
	}
	if tr.PacerState() != drill.Idle {
		t.Fatalf("pacer should be idle")
	}

	if err := tr.PlayDrill(); err != nil {
		t.Fatalf("PlayDrill: %v", err)
	}
	if err := tr.Dispatch(LinkClosed{Port: "ttyACM0"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if tr.PacerState() != drill.Idle || tr.Connected() {
		t.Fatalf("link close must stop the pacer")
	}
}

func TestCheckAnswerIgnoreSpacing(t *testing.T) {
	cfg := baseConfig()
	cfg.Mode = model.ModeWords
	cfg.IgnoreSpacing = true
	tr := New(Options{Config: cfg, Words: []string{"cq de"}, Generator: generator.NewSeeded(5), Player: &fakePlayer{}})
	tr.SetLocalAudio(true)
	if err := tr.PlayDrill(); err != nil {
		t.Fatalf("PlayDrill: %v", err)
	}
	tr.SetAnswer("cqde")
	fb := tr.CheckAnswer()
	if fb.Kind != FeedbackCorrect {
		t.Fatalf("expected spacing to be ignored, got %+v", fb)
	}
	if fb.Result.Exact {
		t.Fatalf("aggregate must still see a miss")
	}
	if _, _, wrong := tr.Tracker().Totals(); wrong != 1 {
		t.Fatalf("expected one wrong attempt, got %d", wrong)
	}
}

func TestCheckAnswerWithoutTarget(t *testing.T) {
	tr := New(Options{Config: baseConfig()})
	if fb := tr.CheckAnswer(); fb.Kind != FeedbackNone {
		t.Fatalf("unexpected feedback %+v", fb)
	}
	if attempts, _, _ := tr.Tracker().Totals(); attempts != 0 {
		t.Fatalf("attempt recorded without target")
	}
}

func TestCloseSavesSession(t *testing.T) {
	app := &fakeAppender{}
	journal := &fakeJournal{}
	player := &fakePlayer{}
	cfg := baseConfig()
	cfg.LocalAudio = true
	tr := New(Options{Config: cfg, Player: player, Log: app, Journal: journal, Generator: generator.NewSeeded(6)})

	if err := tr.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(app.records) != 0 || len(journal.sessions) != 0 {
		t.Fatalf("empty session saved")
	}

	if err := tr.PlayDrill(); err != nil {
		t.Fatalf("PlayDrill: %v", err)
	}
	tr.SetAnswer("KKX")
	tr.CheckAnswer()
	if err := tr.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(app.records) != 1 || app.records[0].Mode != model.SessionOffline || app.records[0].WPM != 18 {
		t.Fatalf("unexpected records %+v", app.records)
	}
	if len(journal.sessions) != 1 || journal.sessions[0].Attempts != 1 {
		t.Fatalf("unexpected journal %+v", journal.sessions)
	}
	if player.stops == 0 {
		t.Fatalf("audio not stopped on close")
	}
}

func TestCloseReportsJournalError(t *testing.T) {
	app := &fakeAppender{}
	journal := &fakeJournal{err: errors.New("locked")}
	tr := New(Options{Config: baseConfig(), Log: app, Journal: journal, Tracker: tracker.New()})
	tr.Tracker().RecordAttempt(model.Attempt{Target: "K", Input: "K"})
	if err := tr.Close(context.Background()); err == nil {
		t.Fatalf("expected journal error")
	}
	if len(app.records) != 1 {
		t.Fatalf("log must still be written")
	}
}

func TestLoadWeakChars(t *testing.T) {
	cfg := baseConfig()
	cfg.FocusWeak = true
	cfg.WeakTop = 1
	cfg.WeakFactor = 50
	cfg.AllowedChars = "AB"
	journal := &fakeJournal{weak: []model.CharAggregate{
		{Char: "A", Correct: 9, Incorrect: 1},
		{Char: "B", Correct: 1, Incorrect: 9},
	}}
	tr := New(Options{Config: cfg, Journal: journal, Generator: generator.NewSeeded(7)})
	if err := tr.LoadWeakChars(context.Background()); err != nil {
		t.Fatalf("LoadWeakChars: %v", err)
	}
	if _, ok := tr.WeakChars()['B']; !ok || len(tr.WeakChars()) != 1 {
		t.Fatalf("unexpected weak set %v", tr.WeakChars())
	}
	tr.SetDirection(model.DirectionTX)
	bs := 0
	for i := 0; i < 20; i++ {
		if err := tr.PlayDrill(); err != nil {
			t.Fatalf("PlayDrill: %v", err)
		}
		bs += strings.Count(tr.Target(), "B")
	}
	if bs < 40 {
		t.Fatalf("expected drills biased to B, got %d/60", bs)
	}
}

func TestUnknownEvent(t *testing.T) {
	tr := New(Options{Config: baseConfig()})
	if err := tr.Dispatch(nil); err == nil {
		t.Fatalf("expected error for nil event")
	}
}
