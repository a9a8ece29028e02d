// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/cwtrain/internal/drill"
	"github.com/verte-zerg/cwtrain/internal/link"
	"github.com/verte-zerg/cwtrain/internal/model"
	"github.com/verte-zerg/cwtrain/internal/tracker"
	"github.com/verte-zerg/cwtrain/internal/trainer"
)

// Link is an opened keyer connection.
type Link interface {
	link.Sender
	Name() string
	Pump(ctx context.Context, onChunk func([]byte)) error
}

type chunkMsg struct{ data []byte }

type linkClosedMsg struct{ err error }

type pacerMsg struct{ gen uint64 }

// Bus carries messages from background goroutines into the update loop.
type Bus chan tea.Msg

// NewBus returns a buffered bus.
func NewBus() Bus {
	return make(Bus, 64)
}

// PacerTimer returns a drill timer whose expiries arrive on the bus.
func (b Bus) PacerTimer() *drill.AfterFuncTimer {
	return drill.NewAfterFuncTimer(func(gen uint64) {
		b <- pacerMsg{gen: gen}
	})
}

// post queues msg behind everything already sent. It gives up once ctx
// is done.
func (b Bus) post(ctx context.Context, msg tea.Msg) {
	select {
	case b <- msg:
	case <-ctx.Done():
	}
}

func (b Bus) listen() tea.Cmd {
	return func() tea.Msg {
		return <-b
	}
}

const rxLogLines = 8

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	rxStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	sectionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea practice UI.
type Model struct {
	tr     *trainer.Trainer
	bus    Bus
	link   Link
	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time

	answer textinput.Model
	help   help.Model
	keys   keyMap

	width  int
	height int

	closed   bool
	closeErr error
}

// NewModel builds the practice UI. link may be nil for offline practice.
func NewModel(tr *trainer.Trainer, bus Bus, l Link) *Model {
	ti := textinput.New()
	ti.Prompt = "Answer: "
	ti.Placeholder = "type what you heard"
	ti.CharLimit = 256
	ti.Focus()

	ctx, cancel := context.WithCancel(context.Background())
	return &Model{
		tr:     tr,
		bus:    bus,
		link:   l,
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
		answer: ti,
		help:   help.New(),
		keys:   defaultKeyMap(),
	}
}

// Err returns the error of saving the session on exit.
func (m *Model) Err() error {
	return m.closeErr
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.bus.listen()}
	if m.link != nil {
		if err := m.tr.Connect(m.link, m.link.Name()); err != nil {
			return tea.Batch(cmds...)
		}
		cmds = append(cmds, m.pump())
	}
	return tea.Batch(cmds...)
}

func (m *Model) pump() tea.Cmd {
	l, bus, ctx := m.link, m.bus, m.ctx
	return func() tea.Msg {
		err := l.Pump(ctx, func(b []byte) {
			bus.post(ctx, chunkMsg{data: b})
		})
		bus.post(ctx, linkClosedMsg{err: err})
		return nil
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.answer.Width = max(msg.Width-len(m.answer.Prompt)-2, 10)
		m.help.Width = msg.Width
		return m, nil
	case chunkMsg:
		_ = m.tr.Feed(msg.data)
		m.syncAnswer()
		return m, m.bus.listen()
	case pacerMsg:
		_ = m.tr.Dispatch(trainer.PacerExpired{Gen: msg.gen})
		return m, m.bus.listen()
	case linkClosedMsg:
		port := ""
		if m.link != nil {
			port = m.link.Name()
		}
		_ = m.tr.Dispatch(trainer.LinkClosed{Port: port, Err: msg.err})
		return m, m.bus.listen()
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.answer, cmd = m.answer.Update(msg)
	m.tr.SetAnswer(m.answer.Value())
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	cfg := m.tr.Config()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.close()
		return tea.Quit, true
	case key.Matches(msg, m.keys.Check):
		m.tr.SetAnswer(m.answer.Value())
		m.tr.CheckAnswer()
	case key.Matches(msg, m.keys.Play):
		_ = m.tr.PlayDrill()
	case key.Matches(msg, m.keys.Direction):
		if cfg.Direction == model.DirectionTX {
			m.tr.SetDirection(model.DirectionRX)
		} else {
			m.tr.SetDirection(model.DirectionTX)
		}
	case key.Matches(msg, m.keys.Mode):
		if cfg.Mode == model.ModeGroups {
			m.tr.SetMode(model.ModeWords)
		} else {
			m.tr.SetMode(model.ModeGroups)
		}
	case key.Matches(msg, m.keys.LocalAudio):
		m.tr.SetLocalAudio(!cfg.LocalAudio)
	case key.Matches(msg, m.keys.ShowSystem):
		m.tr.SetShowSystem(!cfg.ShowSystem)
	case key.Matches(msg, m.keys.ClientSpacing):
		m.tr.SetClientSpacing(!cfg.ClientSpacing)
	case key.Matches(msg, m.keys.IgnoreSpacing):
		m.tr.SetIgnoreSpacing(!cfg.IgnoreSpacing)
	case key.Matches(msg, m.keys.ClearRx):
		m.tr.ClearRx()
	case key.Matches(msg, m.keys.Slower):
		m.tr.SetWPM(cfg.WPM - 1)
	case key.Matches(msg, m.keys.Faster):
		m.tr.SetWPM(cfg.WPM + 1)
	case key.Matches(msg, m.keys.ToneDown):
		m.tr.SetTone(cfg.Tone - 50)
	case key.Matches(msg, m.keys.ToneUp):
		m.tr.SetTone(cfg.Tone + 50)
	case key.Matches(msg, m.keys.SpacingDown):
		m.tr.SetExtraSpacing(cfg.ExtraSpacingMs - 50)
	case key.Matches(msg, m.keys.SpacingUp):
		m.tr.SetExtraSpacing(cfg.ExtraSpacingMs + 50)
	case key.Matches(msg, m.keys.VolumeDown):
		m.tr.SetVolume(cfg.Volume - 0.1)
	case key.Matches(msg, m.keys.VolumeUp):
		m.tr.SetVolume(cfg.Volume + 0.1)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		return nil, false
	}
	m.syncAnswer()
	return nil, true
}

func (m *Model) syncAnswer() {
	if m.answer.Value() != m.tr.Answer() {
		m.answer.SetValue(m.tr.Answer())
		m.answer.CursorEnd()
	}
}

func (m *Model) close() {
	if m.closed {
		return
	}
	m.closed = true
	m.cancel()
	m.closeErr = m.tr.Close(context.Background())
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.closed {
		return ""
	}
	width := m.width
	sections := []string{
		m.renderHeader(),
		sectionStyle.Render("Receive"),
		tailLines(wrapStyledRunes(plainRunes(m.tr.RxLog(), rxStyle), width), rxLogLines),
		sectionStyle.Render("Drill"),
		m.renderTarget(width),
		m.answer.View(),
		m.renderFeedback(),
		m.renderFooter(),
		m.help.View(m.keys),
	}
	return strings.Join(sections, "\n")
}

func (m *Model) renderHeader() string {
	cfg := m.tr.Config()
	conn := "offline"
	if m.tr.Connected() {
		conn = "connected to " + m.tr.Port()
	}
	parts := []string{
		titleStyle.Render("cwtrain"),
		cfg.Direction,
		cfg.Mode,
		conn,
		"session " + m.tr.SessionMode(),
	}
	line := strings.Join(parts, "  ")
	dash := m.tr.Dashboard()
	if dash.WPM != "" || dash.Tone != "" || dash.Mode != "" {
		line += fmt.Sprintf("\nDevice: WPM %s  Tone %s  Mode %s", orDash(dash.WPM), orDash(dash.Tone), orDash(dash.Mode))
	}
	if err := m.tr.LastError(); err != nil {
		line += "\n" + errorStyle.Render(err.Error())
	}
	return line
}

func (m *Model) renderTarget(width int) string {
	target := m.tr.Target()
	if target == "" {
		return pendingStyle.Render("Press ctrl+p to play a drill.")
	}
	fb := m.tr.Feedback()
	switch fb.Kind {
	case trainer.FeedbackCorrect, trainer.FeedbackWrong:
		runes := markedRunes([]rune(tracker.Normalize(target)), fb.Result.Marks)
		return "Target: " + wrapStyledRunes(runes, width)
	}
	if m.tr.Config().Direction == model.DirectionTX {
		return "Key: " + wrapStyledRunes(plainRunes(target, rxStyle), width)
	}
	return "Target: " + pendingStyle.Render(strings.Repeat("·", len([]rune(target))))
}

func (m *Model) renderFeedback() string {
	fb := m.tr.Feedback()
	switch fb.Kind {
	case trainer.FeedbackCorrect:
		return correctStyle.Render(fb.Text)
	case trainer.FeedbackWrong:
		text := fmt.Sprintf("%s  %d/%d matched, edit distance %d", fb.Text, fb.Result.Matched, fb.Result.Length, fb.Result.Distance)
		return incorrectStyle.Render(text)
	case trainer.FeedbackError:
		return errorStyle.Render(fb.Text)
	default:
		return pendingStyle.Render(fb.Text)
	}
}

func (m *Model) renderFooter() string {
	cfg := m.tr.Config()
	attempts, correct, _ := m.tr.Tracker().Totals()
	acc := 0.0
	if attempts > 0 {
		acc = float64(correct) / float64(attempts) * 100
	}
	segments := []string{
		fmt.Sprintf("%d WPM", cfg.WPM),
		fmt.Sprintf("%d Hz", cfg.Tone),
		fmt.Sprintf("+%d ms", cfg.ExtraSpacingMs),
		fmt.Sprintf("vol %d%%", int(cfg.Volume*100+0.5)),
		fmt.Sprintf("Session %s/%s · %.1f%%", humanize.Comma(int64(correct)), humanize.Comma(int64(attempts)), acc),
		"started " + humanize.RelTime(m.tr.Tracker().StartedAt(), m.now(), "ago", "from now"),
	}
	var flags []string
	if cfg.LocalAudio {
		flags = append(flags, "local audio")
	}
	if cfg.ClientSpacing {
		flags = append(flags, "client spacing")
	}
	if cfg.IgnoreSpacing {
		flags = append(flags, "ignore spacing")
	}
	if cfg.ShowSystem {
		flags = append(flags, "system")
	}
	if m.tr.PacerState() == drill.Sending {
		flags = append(flags, "sending")
	}
	if len(flags) > 0 {
		segments = append(segments, strings.Join(flags, ", "))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
