package csvlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/cwtrain/internal/model"
)

func TestReadHistoryMissingFile(t *testing.T) {
	h, err := ReadHistory(filepath.Join(t.TempDir(), "none.csv"))
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if len(h.Sessions) != 0 || len(h.Chars) != 0 {
		t.Fatalf("expected empty history")
	}
}

func TestReadHistorySkipsShortRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultName)
	content := "Date,Time,Accuracy,WPM,E_Total,E_OK,E_Err\n" +
		"2026-01-01,08:00:00,50.0,18,4,2,2\n" +
		"2026-01-02,08:00:00,75.0\n" +
		"2026-01-03,08:00:00,100.0,22,2,2,0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	h, err := ReadHistory(path)
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if len(h.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(h.Sessions))
	}
	if h.Sessions[1].WPM != 22 || h.Sessions[0].Accuracy != 50 {
		t.Fatalf("unexpected sessions %+v", h.Sessions)
	}
	if got := h.Chars['E']; got != (model.CharStat{Given: 6, Correct: 4, Wrong: 2}) {
		t.Fatalf("unexpected E totals %+v", got)
	}
}

func TestMergeLiveAndProblemChars(t *testing.T) {
	h := History{Chars: map[rune]model.CharStat{
		'A': {Given: 10, Correct: 9, Wrong: 1},
		'B': {Given: 4, Correct: 2, Wrong: 2},
		'C': {Given: 5, Correct: 5},
	}}
	h.MergeLive(model.SessionRecord{
		StartedAt: time.Now(),
		Attempts:  2,
		Correct:   1,
		Wrong:     1,
		WPM:       25,
		Chars: map[rune]model.CharStat{
			'C': {Given: 6, Wrong: 6},
			'D': {Given: 1, Correct: 1},
		},
	})
	if len(h.Sessions) != 1 || !h.Sessions[0].Live || h.Sessions[0].Accuracy != 50 {
		t.Fatalf("unexpected live session %+v", h.Sessions)
	}
	top := h.ProblemChars(5)
	if len(top) != 3 {
		t.Fatalf("expected 3 problem chars, got %d", len(top))
	}
	if top[0].Char != 'C' || top[1].Char != 'B' || top[2].Char != 'A' {
		t.Fatalf("unexpected order %+v", top)
	}
	if got := h.ProblemChars(1); len(got) != 1 || got[0].Char != 'C' {
		t.Fatalf("unexpected limit %+v", got)
	}
}

func TestMergeLiveWithoutAttempts(t *testing.T) {
	var h History
	h.MergeLive(model.SessionRecord{StartedAt: time.Now()})
	if len(h.Sessions) != 0 {
		t.Fatalf("empty live session must not be added")
	}
}
