package stats

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/cwtrain/internal/csvlog"
	"github.com/verte-zerg/cwtrain/internal/model"
)

func sampleReport() Report {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return Report{
		History: csvlog.History{
			Sessions: []model.SessionSummary{{StartedAt: start, Duration: 95 * time.Second, Attempts: 4, Correct: 3, Wrong: 1, Accuracy: 75, WPM: 20, Tone: 700, Mode: "DEVICE"}},
			Chars: map[rune]model.CharStat{
				'K': {Given: 4, Correct: 3, Wrong: 1},
				'A': {Given: 2, Correct: 2},
				'Z': {},
			},
		},
		Problems: []model.CharError{{Char: 'K', Total: 4, Errors: 1, Rate: 25}},
	}
}

func TestNewExport(t *testing.T) {
	e := NewExport(sampleReport(), time.Unix(0, 0))
	if len(e.Sessions) != 1 || e.Sessions[0].DurationSeconds != 95 {
		t.Fatalf("unexpected sessions %+v", e.Sessions)
	}
	if len(e.Chars) != 2 || e.Chars[0].Char != "A" || e.Chars[1].Char != "K" {
		t.Fatalf("unexpected chars %+v", e.Chars)
	}
	if e.ProblemChars[0].Correct != 3 || e.ProblemChars[0].ErrorRate != 25 {
		t.Fatalf("unexpected problems %+v", e.ProblemChars)
	}
}

func TestWriteExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteExport(&buf, NewExport(sampleReport(), time.Unix(0, 0).UTC()), FormatJSON); err != nil {
		t.Fatalf("WriteExport: %v", err)
	}
	var back Export
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Sessions[0].Mode != "DEVICE" || back.Sessions[0].WPM != 20 {
		t.Fatalf("unexpected decoded session %+v", back.Sessions[0])
	}
	if strings.Contains(buf.String(), `"live"`) {
		t.Fatalf("live must be omitted for logged sessions")
	}
}

func TestWriteExportYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteExport(&buf, NewExport(sampleReport(), time.Unix(0, 0).UTC()), FormatYAML); err != nil {
		t.Fatalf("WriteExport: %v", err)
	}
	if !strings.Contains(buf.String(), "problem_chars:") || !strings.Contains(buf.String(), "- char: K") {
		t.Fatalf("unexpected yaml:\n%s", buf.String())
	}
	var back Export
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back.Chars) != 2 {
		t.Fatalf("unexpected decoded chars %+v", back.Chars)
	}
}

func TestWriteExportUnknownFormat(t *testing.T) {
	err := WriteExport(&bytes.Buffer{}, Export{}, "xml")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
