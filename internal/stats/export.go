package stats

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Export is the machine-readable form of a report.
type Export struct {
	GeneratedAt  time.Time       `json:"generated_at" yaml:"generated_at"`
	Sessions     []ExportSession `json:"sessions" yaml:"sessions"`
	Chars        []ExportChar    `json:"chars" yaml:"chars"`
	ProblemChars []ExportChar    `json:"problem_chars" yaml:"problem_chars"`
}

// ExportSession is one logged session.
type ExportSession struct {
	StartedAt       time.Time `json:"started_at" yaml:"started_at"`
	DurationSeconds int64     `json:"duration_seconds" yaml:"duration_seconds"`
	Attempts        int       `json:"attempts" yaml:"attempts"`
	Correct         int       `json:"correct" yaml:"correct"`
	Wrong           int       `json:"wrong" yaml:"wrong"`
	Accuracy        float64   `json:"accuracy" yaml:"accuracy"`
	WPM             int       `json:"wpm" yaml:"wpm"`
	Tone            int       `json:"tone" yaml:"tone"`
	Mode            string    `json:"mode" yaml:"mode"`
	Live            bool      `json:"live,omitempty" yaml:"live,omitempty"`
}

// ExportChar is one character's totals.
type ExportChar struct {
	Char      string  `json:"char" yaml:"char"`
	Given     int     `json:"given" yaml:"given"`
	Correct   int     `json:"correct" yaml:"correct"`
	Wrong     int     `json:"wrong" yaml:"wrong"`
	ErrorRate float64 `json:"error_rate" yaml:"error_rate"`
}

// NewExport flattens a report. Characters are sorted by character.
func NewExport(r Report, now time.Time) Export {
	e := Export{
		GeneratedAt:  now,
		Sessions:     make([]ExportSession, 0, len(r.History.Sessions)),
		Chars:        make([]ExportChar, 0, len(r.History.Chars)),
		ProblemChars: make([]ExportChar, 0, len(r.Problems)),
	}
	for _, s := range r.History.Sessions {
		e.Sessions = append(e.Sessions, ExportSession{
			StartedAt:       s.StartedAt,
			DurationSeconds: int64(s.Duration / time.Second),
			Attempts:        s.Attempts,
			Correct:         s.Correct,
			Wrong:           s.Wrong,
			Accuracy:        s.Accuracy,
			WPM:             s.WPM,
			Tone:            s.Tone,
			Mode:            s.Mode,
			Live:            s.Live,
		})
	}
	keys := make([]rune, 0, len(r.History.Chars))
	for c := range r.History.Chars {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, c := range keys {
		st := r.History.Chars[c]
		if st.Given == 0 {
			continue
		}
		e.Chars = append(e.Chars, ExportChar{
			Char:      string(c),
			Given:     st.Given,
			Correct:   st.Correct,
			Wrong:     st.Wrong,
			ErrorRate: st.ErrorRate(),
		})
	}
	for _, p := range r.Problems {
		e.ProblemChars = append(e.ProblemChars, ExportChar{
			Char:      string(p.Char),
			Given:     p.Total,
			Correct:   p.Total - p.Errors,
			Wrong:     p.Errors,
			ErrorRate: p.Rate,
		})
	}
	return e
}

// WriteExport encodes e in the given format.
func WriteExport(w io.Writer, e Export, format string) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(e, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
