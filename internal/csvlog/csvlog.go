// Package csvlog appends practice sessions to a CSV file and reads them back.
package csvlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/cwtrain/internal/model"
	"github.com/verte-zerg/cwtrain/internal/morse"
)

// DefaultName is the log file name.
const DefaultName = "statistics.csv"

// Layouts of the Date and Time columns.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

var baseColumns = []string{
	"Date", "Time", "Duration", "Attempts", "Correct", "Wrong",
	"Accuracy", "WPM", "Tone", "Mode", "Item_Stats",
}

// Header returns the column names of a current-format log.
func Header() []string {
	tracked := morse.TrackedChars()
	cols := make([]string, 0, len(baseColumns)+3*len(tracked))
	cols = append(cols, baseColumns...)
	for _, c := range tracked {
		label := morse.Label(c)
		cols = append(cols, label+"_Total", label+"_OK", label+"_Err")
	}
	return cols
}

// Log is a session log at a fixed path. The file is opened and closed on
// every call.
type Log struct {
	path string
	now  func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithClock replaces time.Now for backup names.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// New returns a log writing to path.
func New(path string, opts ...Option) *Log {
	l := &Log{path: path, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the log path.
func (l *Log) Path() string {
	return l.path
}

// Append migrates the file if needed and appends rec. Records without
// attempts are ignored.
func (l *Log) Append(rec model.SessionRecord) error {
	if rec.Attempts == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}
	mig, err := l.Migrate()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	w := csv.NewWriter(f)
	if mig.Action == ActionFresh || mig.Action == ActionBackup {
		if err := w.Write(Header()); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write log header: %w", err)
		}
	}
	if err := w.Write(Row(rec)); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write log row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close log: %w", err)
	}
	return nil
}

// Row formats rec as log fields.
func Row(rec model.SessionRecord) []string {
	start := rec.StartedAt
	row := make([]string, 0, len(Header()))
	row = append(row,
		start.Format(DateLayout),
		start.Format(TimeLayout),
		strconv.FormatInt(int64(rec.Duration/time.Second), 10),
		strconv.Itoa(rec.Attempts),
		strconv.Itoa(rec.Correct),
		strconv.Itoa(rec.Wrong),
		strconv.FormatFloat(rec.Accuracy(), 'f', 1, 64),
		strconv.Itoa(rec.WPM),
		strconv.Itoa(rec.Tone),
		rec.Mode,
		FormatItems(rec.Items),
	)
	for _, c := range morse.TrackedChars() {
		st := rec.Chars[c]
		row = append(row, strconv.Itoa(st.Given), strconv.Itoa(st.Correct), strconv.Itoa(st.Wrong))
	}
	return row
}

// FormatItems renders item stats as KEY(G:n/OK:n/ERR:n); entries sorted
// by key.
func FormatItems(items map[string]model.ItemStat) string {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		st := items[k]
		fmt.Fprintf(&b, "%s(G:%d/OK:%d/ERR:%d);", k, st.Given, st.Correct, st.Wrong)
	}
	return b.String()
}
