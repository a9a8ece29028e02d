// Package trainer runs a practice session: it routes link events to the
// audio engine, the drill pacer and the score tracker.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/verte-zerg/cwtrain/internal/drill"
	"github.com/verte-zerg/cwtrain/internal/generator"
	"github.com/verte-zerg/cwtrain/internal/link"
	"github.com/verte-zerg/cwtrain/internal/model"
	"github.com/verte-zerg/cwtrain/internal/morse"
	"github.com/verte-zerg/cwtrain/internal/stats"
	"github.com/verte-zerg/cwtrain/internal/tracker"
)

// Player is the audio side of a session.
type Player interface {
	PlayText(text string, wpm, toneHz, extraSpacingMs int) error
	StartTone(toneHz int) error
	StopTone()
	Stop()
	SetVolume(v float64)
}

// Journal stores finished sessions and reports weak characters.
type Journal interface {
	InsertSession(ctx context.Context, s model.JournalSession, chars map[rune]model.CharStat, attempts []model.Attempt) (string, error)
	GetWeakChars(ctx context.Context, window int) ([]model.CharAggregate, error)
}

// Logger receives diagnostics.
type Logger interface {
	Printf(format string, args ...any)
}

// FeedbackKind classifies the last drill message.
type FeedbackKind int

const (
	FeedbackNone FeedbackKind = iota
	FeedbackPlaying
	FeedbackKeyIt
	FeedbackCorrect
	FeedbackWrong
	FeedbackError
)

// Feedback is the message shown under the answer box.
type Feedback struct {
	Kind   FeedbackKind
	Text   string
	Result tracker.Result
}

// Dashboard holds the settings last reported by the device.
type Dashboard struct {
	WPM  string
	Tone string
	Mode string
}

// Options configures a Trainer. Player, Journal, Log and Logger may be nil.
type Options struct {
	Config    model.Config
	Words     []string
	Player    Player
	Tracker   *tracker.Tracker
	Log       tracker.Appender
	Journal   Journal
	Generator *generator.Generator
	Timer     drill.Timer
	Logger    Logger
	Now       func() time.Time
}

// Trainer owns all session state. Every method must be called from the
// single event loop.
type Trainer struct {
	cfg     model.Config
	words   []string
	player  Player
	tracker *tracker.Tracker
	log     tracker.Appender
	journal Journal
	gen     *generator.Generator
	pacer   *drill.Pacer
	decoder *link.Decoder
	logger  Logger
	now     func() time.Time

	link      link.Sender
	port      string
	connected bool
	weak      map[rune]struct{}

	rx       string
	answer   string
	target   string
	feedback Feedback
	dash     Dashboard
	lastErr  error
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

type nopTimer struct{}

func (nopTimer) Arm(time.Duration, uint64) {}
func (nopTimer) Cancel()                   {}

// New builds a trainer.
func New(opts Options) *Trainer {
	t := &Trainer{
		cfg:     opts.Config,
		words:   opts.Words,
		player:  opts.Player,
		tracker: opts.Tracker,
		log:     opts.Log,
		journal: opts.Journal,
		gen:     opts.Generator,
		decoder: &link.Decoder{},
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if t.tracker == nil {
		t.tracker = tracker.New()
	}
	if t.gen == nil {
		t.gen = generator.New()
	}
	if t.logger == nil {
		t.logger = nopLogger{}
	}
	if t.now == nil {
		t.now = time.Now
	}
	if len(t.words) == 0 {
		t.words = morse.TrainingWords()
	}
	timer := opts.Timer
	if timer == nil {
		timer = nopTimer{}
	}
	t.pacer = drill.NewPacer(t, timer, t.tracker)
	t.pacer.SetExtraSpacing(t.cfg.ExtraSpacingMs)
	if t.player != nil {
		t.player.SetVolume(t.cfg.Volume)
	}
	return t
}

// Feed decodes a raw link chunk and dispatches the resulting events.
func (t *Trainer) Feed(b []byte) error {
	var errs []error
	for _, ev := range ChunkEvents(t.decoder.Feed(b)) {
		if err := t.Dispatch(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispatch applies one event.
func (t *Trainer) Dispatch(ev Event) error {
	switch e := ev.(type) {
	case TextReceived:
		return t.onText(e.Text)
	case LineReceived:
		if st := link.ParseStatus(e.Line); st.System() {
			return t.Dispatch(StatusChanged{Status: st})
		}
	case StatusChanged:
		t.onStatus(e.Status)
	case ToneStarted:
		if t.cfg.LocalAudio && t.player != nil {
			return t.player.StartTone(t.cfg.Tone)
		}
	case ToneStopped:
		if t.player != nil {
			t.player.StopTone()
		}
	case LinkConnected:
		t.connected = true
		t.port = e.Port
		t.lastErr = nil
		t.decoder.Reset()
		t.logger.Printf("connected to %s", e.Port)
	case LinkClosed:
		t.connected = false
		t.link = nil
		t.pacer.Stop()
		t.decoder.Reset()
		if e.Err != nil {
			t.lastErr = e.Err
			t.logger.Printf("link %s closed: %v", e.Port, e.Err)
		}
	case LinkFailed:
		t.connected = false
		t.link = nil
		t.lastErr = e.Err
		t.logger.Printf("connect %s failed: %v", e.Port, e.Err)
	case PacerExpired:
		if err := t.pacer.Expire(e.Gen); err != nil {
			t.setError(err)
			return err
		}
	default:
		return fmt.Errorf("unknown event %T", ev)
	}
	return nil
}

func (t *Trainer) onText(text string) error {
	t.rx += text
	if t.cfg.Direction == model.DirectionTX {
		t.answer = stripEncoded(t.answer + text)
	}
	if !t.cfg.LocalAudio || t.player == nil || hasLower(text) {
		return nil
	}
	if err := t.player.PlayText(text, t.cfg.WPM, t.cfg.Tone, 0); err != nil {
		t.logger.Printf("echo playback failed: %v", err)
		return err
	}
	return nil
}

func (t *Trainer) onStatus(st link.Status) {
	switch st.Kind {
	case link.StatusWPM:
		t.dash.WPM = st.Value
		if n, ok := st.Int(); ok {
			t.tracker.SetCurrentWPM(n)
		}
	case link.StatusTone:
		t.dash.Tone = st.Value
	case link.StatusMode:
		t.dash.Mode = st.Value
	}
	if !t.cfg.ShowSystem && st.Match != "" {
		if i := strings.LastIndex(t.rx, st.Match); i >= 0 {
			t.rx = t.rx[:i] + t.rx[i+len(st.Match):]
		}
	}
}

// PlayDrill generates a new target and presents it.
func (t *Trainer) PlayDrill() error {
	t.target = t.nextTarget()
	t.answer = ""

	if t.cfg.Direction == model.DirectionTX {
		t.feedback = Feedback{Kind: FeedbackKeyIt, Text: "Go ahead! Key it."}
		return nil
	}
	t.feedback = Feedback{Kind: FeedbackPlaying, Text: "Playing..."}

	var err error
	switch {
	case t.cfg.LocalAudio:
		extra := 0
		if t.cfg.ClientSpacing {
			extra = t.cfg.ExtraSpacingMs
		}
		if t.player == nil {
			err = errors.New("local audio is not available")
			break
		}
		err = t.player.PlayText(t.target, t.cfg.WPM, t.cfg.Tone, extra)
		if err == nil {
			t.tracker.SetCurrentWPM(t.cfg.WPM)
		}
	case t.cfg.ClientSpacing:
		err = t.pacer.Start(t.target)
	default:
		err = t.SendCommand(t.target)
	}
	if err != nil {
		t.setError(err)
	}
	return err
}

func (t *Trainer) nextTarget() string {
	focus := t.cfg.FocusWeak && len(t.weak) > 0
	if t.cfg.Mode == model.ModeGroups {
		if focus {
			return t.gen.GroupWeighted(t.cfg.GroupSize, t.cfg.AllowedChars, t.weak, t.cfg.WeakFactor)
		}
		return t.gen.Group(t.cfg.GroupSize, t.cfg.AllowedChars)
	}
	if focus {
		return t.gen.WordWeighted(t.words, t.weak, t.cfg.WeakFactor)
	}
	return t.gen.Word(t.words)
}

// CheckAnswer scores the current answer against the target and clears
// the answer box.
func (t *Trainer) CheckAnswer() Feedback {
	if t.target == "" {
		t.feedback = Feedback{Kind: FeedbackNone, Text: "Press play first."}
		return t.feedback
	}
	ans := tracker.Normalize(stripEncoded(t.answer))
	res := t.tracker.RecordAttempt(model.Attempt{Target: t.target, Input: ans, At: t.now()})

	finalAns, finalTarget := ans, tracker.Normalize(t.target)
	if t.cfg.IgnoreSpacing {
		finalAns = strings.ReplaceAll(finalAns, " ", "")
		finalTarget = strings.ReplaceAll(finalTarget, " ", "")
	}
	if finalAns == finalTarget {
		t.feedback = Feedback{Kind: FeedbackCorrect, Text: "CORRECT!", Result: res}
	} else {
		t.feedback = Feedback{
			Kind:   FeedbackWrong,
			Text:   fmt.Sprintf("WRONG (You: '%s' -> Wanted: '%s')", ans, t.target),
			Result: res,
		}
	}
	t.answer = ""
	return t.feedback
}

// SendCommand writes a line to the connected device.
func (t *Trainer) SendCommand(cmd string) error {
	if t.link == nil || !t.connected {
		return link.ErrNotConnected
	}
	return t.link.SendCommand(cmd)
}

// Connect attaches an opened link.
func (t *Trainer) Connect(l link.Sender, port string) error {
	t.link = l
	return t.Dispatch(LinkConnected{Port: port})
}

// LoadWeakChars refreshes the weak character set from the journal.
func (t *Trainer) LoadWeakChars(ctx context.Context) error {
	if t.journal == nil || !t.cfg.FocusWeak {
		return nil
	}
	aggs, err := t.journal.GetWeakChars(ctx, t.cfg.WeakWindow)
	if err != nil {
		return fmt.Errorf("failed to load weak chars: %w", err)
	}
	t.weak = stats.SelectWeakChars(aggs, t.cfg.WeakTop)
	return nil
}

// Close stops audio and the pacer and saves the session. Sessions without
// attempts are not saved.
func (t *Trainer) Close(ctx context.Context) error {
	t.pacer.Stop()
	if t.player != nil {
		t.player.Stop()
	}
	attempts, correct, _ := t.tracker.Totals()
	if attempts == 0 {
		return nil
	}
	var errs []error
	if t.log != nil {
		if _, err := t.tracker.Persist(t.log, t.cfg.WPM, t.cfg.Tone, t.SessionMode()); err != nil {
			errs = append(errs, fmt.Errorf("failed to save session log: %w", err))
		}
	}
	if t.journal != nil {
		js := model.JournalSession{
			StartedAt: t.tracker.StartedAt(),
			EndedAt:   t.now(),
			Mode:      t.SessionMode(),
			WPM:       t.cfg.WPM,
			Tone:      t.cfg.Tone,
			Attempts:  attempts,
			Correct:   correct,
		}
		if _, err := t.journal.InsertSession(ctx, js, t.tracker.CharStats(), t.tracker.Attempts()); err != nil {
			errs = append(errs, fmt.Errorf("failed to save session journal: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SessionMode is the mode label written to the log.
func (t *Trainer) SessionMode() string {
	if t.cfg.LocalAudio {
		return model.SessionOffline
	}
	return model.SessionDevice
}

// LiveRecord is the unsaved session at the live speed.
func (t *Trainer) LiveRecord() model.SessionRecord {
	return t.tracker.Snapshot(t.tracker.CurrentWPM(), t.cfg.Tone, t.SessionMode())
}

func (t *Trainer) setError(err error) {
	t.lastErr = err
	t.feedback = Feedback{Kind: FeedbackError, Text: err.Error()}
	t.logger.Printf("%v", err)
}

var encodedPattern = regexp.MustCompile(`(?i)encoded:`)

func stripEncoded(s string) string {
	return encodedPattern.ReplaceAllString(s, "")
}

func hasLower(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}
