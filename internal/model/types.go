// Package model defines shared data structures.
package model

import "time"

// Drill modes.
const (
	ModeWords  = "Words"
	ModeGroups = "Groups"
)

// Drill directions: RX plays the target, TX shows it for keying.
const (
	DirectionRX = "RX"
	DirectionTX = "TX"
)

// Session modes written to the log.
const (
	SessionOffline = "OFFLINE"
	SessionDevice  = "DEVICE"
)

// Config defines practice settings.
type Config struct {
	Mode           string
	Direction      string
	WPM            int
	Tone           int
	ExtraSpacingMs int
	GroupSize      int
	AllowedChars   string
	IgnoreSpacing  bool
	ClientSpacing  bool
	LocalAudio     bool
	ShowSystem     bool
	Volume         float64
	FocusWeak      bool
	WeakTop        int
	WeakFactor     float64
	WeakWindow     int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
	Chars       string
}

// Attempt is one answer to one target.
type Attempt struct {
	Target string
	Input  string
	At     time.Time
}

// CharStat counts how often a character was given and answered.
type CharStat struct {
	Given   int
	Correct int
	Wrong   int
}

// ErrorRate returns Wrong/Given as a percentage.
func (c CharStat) ErrorRate() float64 {
	if c.Given == 0 {
		return 0
	}
	return float64(c.Wrong) / float64(c.Given) * 100
}

// ItemStat counts whole-target results for one target string.
type ItemStat struct {
	Given   int
	Correct int
	Wrong   int
}

// SessionRecord is one persisted log row.
type SessionRecord struct {
	StartedAt time.Time
	Duration  time.Duration
	Attempts  int
	Correct   int
	Wrong     int
	WPM       int
	Tone      int
	Mode      string
	Items     map[string]ItemStat
	Chars     map[rune]CharStat
}

// Accuracy returns Correct/Attempts as a percentage.
func (r SessionRecord) Accuracy() float64 {
	if r.Attempts == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Attempts) * 100
}

// SessionSummary is a session as read back from the log.
type SessionSummary struct {
	StartedAt time.Time
	Duration  time.Duration
	Attempts  int
	Correct   int
	Wrong     int
	Accuracy  float64
	WPM       int
	Tone      int
	Mode      string
	Live      bool
}

// CharError is a character ranked by error rate.
type CharError struct {
	Char   rune
	Total  int
	Errors int
	Rate   float64
}

// JournalSession is a session row of the attempt journal.
type JournalSession struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Mode      string
	WPM       int
	Tone      int
	Attempts  int
	Correct   int
}

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char      string
	Correct   int
	Incorrect int
}

// SessionAggregate summarizes a journal session for reporting.
type SessionAggregate struct {
	SessionID string
	EndedAt   time.Time
	Attempts  int
	Correct   int
	WPM       int
}
