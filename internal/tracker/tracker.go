// Package tracker scores answers against targets and keeps session aggregates.
package tracker

import (
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/verte-zerg/cwtrain/internal/model"
)

// DefaultWPM is the live speed assumed until the device reports one.
const DefaultWPM = 20

// Result is the feedback for one attempt.
type Result struct {
	Matched int
	Length  int
	Exact   bool
	// Distance is the edit distance between normalized target and input.
	Distance int
	// Marks flags the matched target runes.
	Marks []bool
}

// Appender persists a session record.
type Appender interface {
	Append(rec model.SessionRecord) error
}

// Tracker aggregates attempts for one session. It is not safe for
// concurrent use.
type Tracker struct {
	startedAt  time.Time
	attempts   int
	correct    int
	wrong      int
	currentWPM int
	chars      map[rune]model.CharStat
	items      map[string]model.ItemStat
	log        []model.Attempt
	now        func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New starts a session now.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		currentWPM: DefaultWPM,
		chars:      map[rune]model.CharStat{},
		items:      map[string]model.ItemStat{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.startedAt = t.now()
	return t
}

// Normalize trims surrounding whitespace and upper-cases s.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Score returns the LCS length of the normalized strings and the
// normalized target length.
func Score(target, input string) (int, int) {
	t := []rune(Normalize(target))
	u := []rune(Normalize(input))
	dp := lcsTable(t, u)
	return dp[len(t)][len(u)], len(t)
}

// Align marks which runes of the normalized target belong to the LCS.
func Align(target, input string) []bool {
	t := []rune(Normalize(target))
	u := []rune(Normalize(input))
	return backtrack(t, u, lcsTable(t, u))
}

func lcsTable(t, u []rune) [][]int {
	dp := make([][]int, len(t)+1)
	for i := range dp {
		dp[i] = make([]int, len(u)+1)
	}
	for i := 1; i <= len(t); i++ {
		for j := 1; j <= len(u); j++ {
			if t[i-1] == u[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}
	return dp
}

// backtrack walks from (n, m). The target index only moves alone when
// skipping it is strictly better; ties skip the input rune.
func backtrack(t, u []rune, dp [][]int) []bool {
	marks := make([]bool, len(t))
	i, j := len(t), len(u)
	for i > 0 && j > 0 {
		switch {
		case t[i-1] == u[j-1]:
			marks[i-1] = true
			i--
			j--
		case dp[i-1][j] > dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	return marks
}

// RecordAttempt scores a and folds it into the session aggregates.
func (t *Tracker) RecordAttempt(a model.Attempt) Result {
	target := Normalize(a.Target)
	input := Normalize(a.Input)
	exact := target == input

	t.attempts++
	item := t.items[target]
	item.Given++
	if exact {
		t.correct++
		item.Correct++
	} else {
		t.wrong++
		item.Wrong++
	}
	t.items[target] = item

	tr := []rune(target)
	ur := []rune(input)
	dp := lcsTable(tr, ur)
	marks := backtrack(tr, ur, dp)
	for k, c := range tr {
		if c == ' ' {
			continue
		}
		st := t.chars[c]
		st.Given++
		if marks[k] {
			st.Correct++
		} else {
			st.Wrong++
		}
		t.chars[c] = st
	}

	if a.At.IsZero() {
		a.At = t.now()
	}
	t.log = append(t.log, a)

	return Result{
		Matched:  dp[len(tr)][len(ur)],
		Length:   len(tr),
		Exact:    exact,
		Distance: levenshtein.ComputeDistance(target, input),
		Marks:    marks,
	}
}

// Totals returns attempts, exact matches and misses.
func (t *Tracker) Totals() (attempts, correct, wrong int) {
	return t.attempts, t.correct, t.wrong
}

// CharStats returns a copy of the per-character aggregates.
func (t *Tracker) CharStats() map[rune]model.CharStat {
	out := make(map[rune]model.CharStat, len(t.chars))
	for k, v := range t.chars {
		out[k] = v
	}
	return out
}

// ItemStats returns a copy of the per-target aggregates.
func (t *Tracker) ItemStats() map[string]model.ItemStat {
	out := make(map[string]model.ItemStat, len(t.items))
	for k, v := range t.items {
		out[k] = v
	}
	return out
}

// Attempts returns the attempts recorded so far.
func (t *Tracker) Attempts() []model.Attempt {
	return append([]model.Attempt(nil), t.log...)
}

// CurrentWPM returns the last speed reported by the device.
func (t *Tracker) CurrentWPM() int {
	return t.currentWPM
}

// SetCurrentWPM records the live speed.
func (t *Tracker) SetCurrentWPM(wpm int) {
	t.currentWPM = wpm
}

// StartedAt returns the session start time.
func (t *Tracker) StartedAt() time.Time {
	return t.startedAt
}

// Snapshot builds the log row for the session so far.
func (t *Tracker) Snapshot(wpm, tone int, mode string) model.SessionRecord {
	return model.SessionRecord{
		StartedAt: t.startedAt,
		Duration:  t.now().Sub(t.startedAt),
		Attempts:  t.attempts,
		Correct:   t.correct,
		Wrong:     t.wrong,
		WPM:       wpm,
		Tone:      tone,
		Mode:      mode,
		Items:     t.ItemStats(),
		Chars:     t.CharStats(),
	}
}

// Persist appends the session to app. Sessions without attempts are not
// written. Aggregates are kept whether or not the append succeeds.
func (t *Tracker) Persist(app Appender, wpm, tone int, mode string) (bool, error) {
	if t.attempts == 0 {
		return false, nil
	}
	if err := app.Append(t.Snapshot(wpm, tone, mode)); err != nil {
		return false, err
	}
	return true, nil
}
