// Package stats builds practice reports from the session log and journal.
package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/cwtrain/internal/model"
)

// ProblemCharCount is how many characters the problem chart shows.
const ProblemCharCount = 5

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// RenderSummary prints session totals. now anchors the relative time of
// the last session.
func RenderSummary(w io.Writer, sessions []model.SessionSummary, now time.Time) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var attempts, correct, bestWPM int
	var accSum float64
	var practice time.Duration
	for _, s := range sessions {
		attempts += s.Attempts
		correct += s.Correct
		accSum += s.Accuracy
		practice += s.Duration
		if s.WPM > bestWPM {
			bestWPM = s.WPM
		}
	}
	last := sessions[len(sessions)-1]
	overall := 0.0
	if attempts > 0 {
		overall = float64(correct) / float64(attempts) * 100
	}

	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %s", humanize.Comma(int64(len(sessions)))),
		fmt.Sprintf("Attempts: %s (%s correct, %.2f%%)", humanize.Comma(int64(attempts)), humanize.Comma(int64(correct)), overall),
		fmt.Sprintf("Avg Accuracy: %.2f%%", accSum/float64(len(sessions))),
		fmt.Sprintf("Best WPM: %d", bestWPM),
		fmt.Sprintf("Practice time: %s", practice.Round(time.Second)),
	}
	if last.Live {
		lines = append(lines, fmt.Sprintf("Current session: %d attempts, %.2f%%", last.Attempts, last.Accuracy))
	} else if !last.StartedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("Last session: %s", humanize.RelTime(last.StartedAt, now, "ago", "from now")))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrend plots accuracy on a 0-100 axis and speed on an axis sized
// to the fastest session.
func RenderTrend(w io.Writer, sessions []model.SessionSummary, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	wpms := make([]float64, len(sessions))
	for i, s := range sessions {
		accs[i] = s.Accuracy
		wpms[i] = float64(s.WPM)
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeries(w, "Progress Trend", []Series{
		{Name: "Accuracy %", Values: MovingAverage(accs, window), Min: 0, Max: 100},
		{Name: "WPM", Values: MovingAverage(wpms, window), Min: 0, Max: WPMAxisMax(wpms)},
	}, width, height, useColor)
}

// RenderProblemChars prints a horizontal bar per character, scaled so a
// 100% error rate fills the bar.
func RenderProblemChars(w io.Writer, problems []model.CharError, totalWidth int) error {
	if _, err := fmt.Fprintln(w, "Problem Characters"); err != nil {
		return err
	}
	if len(problems) == 0 {
		_, err := fmt.Fprintln(w, "No errors recorded.")
		return err
	}
	barWidth := totalWidth - 24
	if totalWidth <= 0 {
		barWidth = terminalWidthBackup - 24
	}
	barWidth = max(barWidth, 10)
	for _, p := range problems {
		n := int(p.Rate / 100 * float64(barWidth))
		bar := strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
		if _, err := fmt.Fprintf(w, "%5s %s %5.1f%% (%d/%d)\n", charLabel(p.Char), bar, p.Rate, p.Errors, p.Total); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCharTable prints per-character totals, highest error rate first.
func RenderCharTable(w io.Writer, chars map[rune]model.CharStat) error {
	if len(chars) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
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

	if _, err := fmt.Fprintln(w, "Per-Character"); err != nil {
		return err
	}
	headers := []string{"Char", "Given", "Correct", "Wrong", "Error Rate"}
	rows := make([][]string, 0, len(keys))
	for _, c := range keys {
		st := chars[c]
		rows = append(rows, []string{
			charLabel(c),
			humanize.Comma(int64(st.Given)),
			humanize.Comma(int64(st.Correct)),
			humanize.Comma(int64(st.Wrong)),
			fmt.Sprintf("%.2f%%", st.ErrorRate()),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderJournalTable prints per-character accuracy from journal aggregates.
func RenderJournalTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		return nil
	}
	rows := make([]model.CharAggregate, len(aggs))
	copy(rows, aggs)
	sort.Slice(rows, func(i, j int) bool {
		ai, aj := accuracy(rows[i]), accuracy(rows[j])
		if ai == aj {
			return rows[i].Char < rows[j].Char
		}
		return ai < aj
	})
	if _, err := fmt.Fprintln(w, "Journal (Windowed)"); err != nil {
		return err
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{
			r.Char,
			fmt.Sprintf("%.2f%%", accuracy(r)*100),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
		})
	}
	for _, line := range formatTable([]string{"Char", "Accuracy", "Correct", "Incorrect"}, table, map[int]bool{1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCharCurves plots per-session accuracy for each selected character.
func RenderCharCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[string]map[string]model.CharAggregate, chars []string, window, totalWidth, height int, useColor bool) error {
	if len(chars) == 0 || len(sessions) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	for _, ch := range chars {
		values := make([]float64, len(sessions))
		for i, s := range sessions {
			if agg, ok := perSession[s.SessionID][ch]; ok {
				values[i] = accuracy(agg) * 100
			}
		}
		if err := PlotSeries(w, fmt.Sprintf("Char %s", ch), []Series{
			{Name: "Accuracy %", Values: MovingAverage(values, window), Min: 0, Max: 100},
		}, width, height, useColor); err != nil {
			return err
		}
	}
	return nil
}

func charLabel(c rune) string {
	if c == ' ' {
		return "<space>"
	}
	return string(c)
}
