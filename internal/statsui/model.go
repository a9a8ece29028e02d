// Package statsui provides the Bubble Tea stats browser.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/cwtrain/internal/model"
	"github.com/verte-zerg/cwtrain/internal/morse"
	"github.com/verte-zerg/cwtrain/internal/stats"
)

const (
	tabOverview = iota
	tabCharTable
	tabCharCurves
)

const plotHeight = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Loader builds a report for the given filters.
type Loader func(ctx context.Context, cfg model.StatsConfig) (stats.Report, error)

// Model implements the Bubble Tea stats UI.
type Model struct {
	load Loader
	cfg  model.StatsConfig
	now  func() time.Time

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	charTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string

	charInputMode bool
	charInput     textinput.Model
}

// NewModel constructs a stats UI model and loads the first report.
func NewModel(load Loader, cfg model.StatsConfig) *Model {
	m := &Model{
		load: load,
		cfg:  cfg,
		now:  time.Now,
		tabs: []string{"Overview", "Char Table", "Char Curves"},
	}
	m.initInputs()
	m.charInput = newFilterInput("Chars: ")
	m.charInput.Placeholder = "KMRS"
	m.charTable = table.New(table.WithColumns(charColumns()), table.WithHeight(1))
	m.charTable.SetStyles(charTableStyles())
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (msg.String() == "q" && !m.filterMode && !m.charInputMode) {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.charInputMode {
			return m.updateCharInput(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabCharCurves {
				return m.startCharInput()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabCharTable {
				m.charTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabCharTable {
				m.charTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabCharTable {
			m.charTable, cmd = m.charTable.Update(msg)
			return m, cmd
		}
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.charInputMode {
		return fitLines(m.renderCharModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	m.filterInputs[0].SetValue("")
	if m.cfg.Since != nil {
		m.filterInputs[0].SetValue(m.cfg.Since.Format("2006-01-02"))
	}
	m.filterInputs[1].SetValue("")
	if m.cfg.Last > 0 {
		m.filterInputs[1].SetValue(strconv.Itoa(m.cfg.Last))
	}
	m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.charTable.SetWidth(m.width)
	m.charTable.SetHeight(max(1, bodyHeight-1))
	for i := range m.filterInputs {
		m.filterInputs[i].Width = max(10, m.width-lipgloss.Width(m.filterInputs[i].Prompt)-2)
	}
	m.charInput.Width = max(10, modalInnerWidth(m.width)-lipgloss.Width(m.charInput.Prompt))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabCharTable {
		m.charTable.Focus()
	} else {
		m.charTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return padLines(m.renderTabs(), m.width) + "\n" + padLines(m.renderFilterSummary(), m.width)
}

func (m *Model) renderFilterSummary() string {
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	chars := "top"
	if m.cfg.Chars != "" {
		chars = m.cfg.Chars
	}
	summary := fmt.Sprintf("Settings: since=%s  last=%s  window=%d  chars=%s", since, last, m.cfg.CurveWindow, chars)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q"
	if m.activeTab == tabCharCurves {
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Edit chars: enter  Window: -/=  Settings: /  Quit: q"
	}
	out := headerStyle.Render(help)
	if m.errMsg != "" {
		out += "\n" + errorStyle.Render(m.errMsg)
	}
	return out
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabCharTable {
		if len(m.charTable.Rows()) == 0 {
			return fitLines("No character stats found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.charTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := m.load(context.Background(), m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	m.charTable.SetRows(buildCharRows(report.History.Chars))
	m.updateLayout()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.cfg.CurveWindow, width, m.now()))
	m.viewports[tabCharCurves].SetContent(renderCharCurves(m.report, m.cfg.CurveWindow, width))
}

func renderOverview(r stats.Report, window, width int, now time.Time) string {
	sessions := r.History.Sessions
	if len(sessions) == 0 {
		return "No sessions found."
	}
	var buf bytes.Buffer
	if err := stats.RenderTrend(&buf, sessions, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render trend: %v", err)
	}
	if err := stats.RenderProblemChars(&buf, r.Problems, width); err != nil {
		return fmt.Sprintf("Failed to render problem chars: %v", err)
	}
	cards := renderSummaryCards(sessions, width, now)
	return strings.TrimRight(cards+"\n\n"+buf.String(), "\n")
}

func renderSummaryCards(sessions []model.SessionSummary, width int, now time.Time) string {
	var attempts, correct int
	var totalWPM float64
	bestAcc := 0.0
	for _, s := range sessions {
		attempts += s.Attempts
		correct += s.Correct
		totalWPM += float64(s.WPM)
		bestAcc = max(bestAcc, s.Accuracy)
	}
	acc := 0.0
	if attempts > 0 {
		acc = float64(correct) / float64(attempts) * 100
	}
	last := sessions[len(sessions)-1]
	lastSeen := "now"
	if !last.Live {
		lastSeen = humanize.RelTime(last.StartedAt, now, "ago", "from now")
	}
	cards := []string{
		metricCard("Sessions", humanize.Comma(int64(len(sessions)))),
		metricCard("Attempts", humanize.Comma(int64(attempts))),
		metricCard("Accuracy", fmt.Sprintf("%.1f%%", acc)),
		metricCard("Best Acc", fmt.Sprintf("%.1f%%", bestAcc)),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", totalWPM/float64(len(sessions)))),
		metricCard("Last", lastSeen),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderCharCurves(r stats.Report, window, width int) string {
	if len(r.Journal) == 0 {
		return "No journal sessions found."
	}
	if len(r.Chars) == 0 {
		return "No characters selected. Press Enter to set chars."
	}
	header := headerStyle.Render(fmt.Sprintf("Chars: %s", strings.Join(r.Chars, ", ")))
	var buf bytes.Buffer
	if err := stats.RenderCharCurves(&buf, r.Journal, r.CharCurves, r.Chars, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render character curves: %v", err)
	}
	return strings.TrimRight(header+"\n"+buf.String(), "\n")
}

func charColumns() []table.Column {
	return []table.Column{
		{Title: "Char", Width: 6},
		{Title: "Code", Width: 8},
		{Title: "Error", Width: 8},
		{Title: "Correct", Width: 7},
		{Title: "Wrong", Width: 7},
		{Title: "Given", Width: 7},
	}
}

// buildCharRows lists characters by error rate, worst first.
func buildCharRows(chars map[rune]model.CharStat) []table.Row {
	keys := make([]rune, 0, len(chars))
	for c, st := range chars {
		if st.Given > 0 {
			keys = append(keys, c)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := chars[keys[i]].ErrorRate(), chars[keys[j]].ErrorRate()
		if ri == rj {
			return keys[i] < keys[j]
		}
		return ri > rj
	})
	rows := make([]table.Row, 0, len(keys))
	for _, c := range keys {
		st := chars[c]
		entry, _ := morse.Lookup(c)
		rows = append(rows, table.Row{
			string(c),
			entry.Pattern(),
			fmt.Sprintf("%.1f%%", st.ErrorRate()),
			strconv.Itoa(st.Correct),
			strconv.Itoa(st.Wrong),
			strconv.Itoa(st.Given),
		})
	}
	return rows
}

func charTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) startCharInput() (tea.Model, tea.Cmd) {
	m.charInputMode = true
	m.charInput.SetValue(strings.Join(m.report.Chars, ""))
	return m, m.charInput.Focus()
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) updateCharInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.charInputMode = false
		return m, nil
	case tea.KeyEnter:
		m.cfg.Chars = normalizeCharInput(m.charInput.Value())
		m.charInputMode = false
		m.refreshReport()
		return m, nil
	}
	var cmd tea.Cmd
	m.charInput, cmd = m.charInput.Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	var since *time.Time
	if v := strings.TrimSpace(m.filterInputs[0].Value()); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	last := 0
	if v := strings.TrimSpace(m.filterInputs[1].Value()); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	window := m.cfg.CurveWindow
	if v := strings.TrimSpace(m.filterInputs[2].Value()); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		window = parsed
	}

	m.cfg.Since = since
	m.cfg.Last = last
	m.cfg.CurveWindow = window
	return nil
}

func (m *Model) renderCharModal() string {
	body := []string{
		cardValueStyle.Render("Select Characters"),
		m.charInput.View(),
		headerStyle.Render("Type characters, or leave empty for the most frequent."),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// normalizeCharInput turns typed characters into a comma separated list.
// A literal comma becomes COMMA.
func normalizeCharInput(input string) string {
	var parts []string
	for _, r := range strings.ToUpper(input) {
		switch {
		case unicode.IsSpace(r):
		case r == ',':
			parts = append(parts, "COMMA")
		default:
			parts = append(parts, string(r))
		}
	}
	return strings.Join(parts, ",")
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

func modalInnerWidth(width int) int {
	// 2 border + 4 padding
	return max(modalWidth(width)-6, 10)
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
