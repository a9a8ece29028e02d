package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/cwtrain/internal/csvlog"
	"github.com/verte-zerg/cwtrain/internal/model"
	"github.com/verte-zerg/cwtrain/internal/stats"
)

type fakeLoader struct {
	calls []model.StatsConfig
	err   error
}

func (f *fakeLoader) load(_ context.Context, cfg model.StatsConfig) (stats.Report, error) {
	f.calls = append(f.calls, cfg)
	if f.err != nil {
		return stats.Report{}, f.err
	}
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return stats.Report{
		History: csvlog.History{
			Sessions: []model.SessionSummary{
				{StartedAt: start, Attempts: 10, Correct: 8, Wrong: 2, Accuracy: 80, WPM: 18},
				{StartedAt: start.Add(24 * time.Hour), Attempts: 10, Correct: 9, Wrong: 1, Accuracy: 90, WPM: 20},
			},
			Chars: map[rune]model.CharStat{
				'K': {Given: 10, Correct: 9, Wrong: 1},
				'Q': {Given: 4, Correct: 2, Wrong: 2},
				'E': {},
			},
		},
	}, nil
}

func TestBuildCharRowsSortsByErrorRate(t *testing.T) {
	rows := buildCharRows(map[rune]model.CharStat{
		'K': {Given: 10, Correct: 9, Wrong: 1},
		'Q': {Given: 4, Correct: 2, Wrong: 2},
		'E': {},
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Q" || rows[0][1] != "--.-" || rows[0][2] != "50.0%" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][0] != "K" {
		t.Fatalf("unexpected second row: %v", rows[1])
	}
}

func TestNormalizeCharInput(t *testing.T) {
	if got := normalizeCharInput("k m,r"); got != "K,M,COMMA,R" {
		t.Fatalf("unexpected chars: %q", got)
	}
	if got := normalizeCharInput("  "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct{ in, next, prev int }{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
	}
	for _, tc := range cases {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("next(%d) = %d, want %d", tc.in, got, tc.next)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("prev(%d) = %d, want %d", tc.in, got, tc.prev)
		}
	}
}

func TestFilterReloadsReport(t *testing.T) {
	loader := &fakeLoader{}
	m := NewModel(loader.load, model.StatsConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[1].SetValue("3")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter mode to close")
	}
	last := loader.calls[len(loader.calls)-1]
	if last.Last != 3 || last.CurveWindow != 5 {
		t.Fatalf("unexpected filters: %+v", last)
	}
}

func TestFilterRejectsBadWindow(t *testing.T) {
	loader := &fakeLoader{}
	m := NewModel(loader.load, model.StatsConfig{CurveWindow: 5})
	m.startFilter()
	m.filterInputs[2].SetValue("0")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected filter error")
	}
	if len(loader.calls) != 1 {
		t.Fatalf("expected no reload, got %d calls", len(loader.calls))
	}
}

func TestViewShowsOverviewAndErrors(t *testing.T) {
	loader := &fakeLoader{}
	m := NewModel(loader.load, model.StatsConfig{CurveWindow: 5})
	m.now = func() time.Time { return time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC) }
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 60})
	view := m.View()
	if !strings.Contains(view, "Sessions") || !strings.Contains(view, "Progress Trend") {
		t.Fatalf("expected overview content, got:\n%s", view)
	}

	loader.err = errors.New("boom")
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	if m.cfg.CurveWindow != 10 {
		t.Fatalf("expected window 10, got %d", m.cfg.CurveWindow)
	}
	if !strings.Contains(m.View(), "boom") {
		t.Fatalf("expected error in footer")
	}
}
