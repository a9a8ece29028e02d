package csvlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/cwtrain/internal/model"
)

// History is every session of a log plus character totals across them.
type History struct {
	Sessions []model.SessionSummary
	Chars    map[rune]model.CharStat
}

type charColumns struct {
	total, ok, err int
}

// ReadHistory parses the log at path. A missing file yields an empty
// history. Columns are located by header name, so older layouts still
// load; rows shorter than the header are skipped.
func ReadHistory(path string) (History, error) {
	h := History{Chars: map[rune]model.CharStat{}}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return h, fmt.Errorf("failed to open log: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return h, nil
	}
	if err != nil {
		return h, fmt.Errorf("failed to read log header: %w", err)
	}

	idx := map[string]int{}
	chars := map[rune]*charColumns{}
	for i, name := range header {
		idx[name] = i
		label, kind, ok := splitCharColumn(name)
		if !ok {
			continue
		}
		c := labelChar(label)
		if c == 0 {
			continue
		}
		cols := chars[c]
		if cols == nil {
			cols = &charColumns{total: -1, ok: -1, err: -1}
			chars[c] = cols
		}
		switch kind {
		case "Total":
			cols.total = i
		case "OK":
			cols.ok = i
		case "Err":
			cols.err = i
		}
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return h, fmt.Errorf("failed to read log: %w", err)
		}
		if len(rec) < len(header) {
			continue
		}
		h.Sessions = append(h.Sessions, parseSession(rec, idx))
		for c, cols := range chars {
			if cols.total < 0 || cols.err < 0 {
				continue
			}
			st := h.Chars[c]
			st.Given += atoi(rec[cols.total])
			st.Wrong += atoi(rec[cols.err])
			if cols.ok >= 0 {
				st.Correct += atoi(rec[cols.ok])
			}
			h.Chars[c] = st
		}
	}
	return h, nil
}

func parseSession(rec []string, idx map[string]int) model.SessionSummary {
	field := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	s := model.SessionSummary{
		Attempts: atoi(field("Attempts")),
		Correct:  atoi(field("Correct")),
		Wrong:    atoi(field("Wrong")),
		WPM:      atoi(field("WPM")),
		Tone:     atoi(field("Tone")),
		Mode:     field("Mode"),
		Duration: time.Duration(atoi(field("Duration"))) * time.Second,
	}
	s.Accuracy, _ = strconv.ParseFloat(field("Accuracy"), 64)
	if t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, field("Date")+" "+field("Time"), time.Local); err == nil {
		s.StartedAt = t
	}
	return s
}

func splitCharColumn(name string) (label, kind string, ok bool) {
	for _, k := range []string{"Total", "OK", "Err"} {
		if strings.HasSuffix(name, "_"+k) {
			return strings.TrimSuffix(name, "_"+k), k, true
		}
	}
	return "", "", false
}

func labelChar(label string) rune {
	if label == "COMMA" {
		return ','
	}
	r := []rune(label)
	if len(r) != 1 {
		return 0
	}
	return r[0]
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// MergeLive adds the unsaved session on top of the history. A record
// without attempts adds no session.
func (h *History) MergeLive(rec model.SessionRecord) {
	if h.Chars == nil {
		h.Chars = map[rune]model.CharStat{}
	}
	if rec.Attempts > 0 {
		h.Sessions = append(h.Sessions, model.SessionSummary{
			StartedAt: rec.StartedAt,
			Duration:  rec.Duration,
			Attempts:  rec.Attempts,
			Correct:   rec.Correct,
			Wrong:     rec.Wrong,
			Accuracy:  rec.Accuracy(),
			WPM:       rec.WPM,
			Tone:      rec.Tone,
			Mode:      rec.Mode,
			Live:      true,
		})
	}
	for c, st := range rec.Chars {
		agg := h.Chars[c]
		agg.Given += st.Given
		agg.Correct += st.Correct
		agg.Wrong += st.Wrong
		h.Chars[c] = agg
	}
}

// ProblemChars returns up to n characters with errors, highest error rate
// first.
func (h History) ProblemChars(n int) []model.CharError {
	var out []model.CharError
	for c, st := range h.Chars {
		if st.Given == 0 || st.Wrong == 0 {
			continue
		}
		out = append(out, model.CharError{Char: c, Total: st.Given, Errors: st.Wrong, Rate: st.ErrorRate()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rate == out[j].Rate {
			return out[i].Char < out[j].Char
		}
		return out[i].Rate > out[j].Rate
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
