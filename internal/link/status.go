package link

import (
	"strconv"
	"strings"
)

// StatusKind classifies a line reported by the keyer.
type StatusKind int

const (
	// StatusNone is ordinary decoded text.
	StatusNone StatusKind = iota
	StatusWPM
	StatusTone
	StatusMode
	StatusAction
	StatusEncoded
	StatusDone
)

// Status describes a device status or system message line.
type Status struct {
	Kind  StatusKind
	Value string
	// Match is the text to hide from the receive log when system
	// messages are not shown.
	Match string
}

// System reports whether the line is a device message rather than
// decoded code.
func (s Status) System() bool {
	return s.Kind != StatusNone
}

// Int parses Value as an integer.
func (s Status) Int() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s.Value))
	if err != nil {
		return 0, false
	}
	return n, true
}

var settingPrefixes = []struct {
	kind   StatusKind
	prefix string
}{
	{StatusWPM, "WPM set to"},
	{StatusTone, "Tone set to"},
	{StatusMode, "Mode set to"},
}

// ParseStatus classifies a complete line from the device.
func ParseStatus(line string) Status {
	for _, p := range settingPrefixes {
		idx := strings.Index(line, p.prefix)
		if idx < 0 {
			continue
		}
		value := strings.TrimSpace(line[idx+len(p.prefix):])
		return Status{Kind: p.kind, Value: value, Match: p.prefix + " " + value}
	}
	switch {
	case strings.Contains(line, "Action:"):
		return Status{Kind: StatusAction, Value: line, Match: line}
	case strings.HasPrefix(line, "Encoded:"):
		return Status{Kind: StatusEncoded, Value: strings.TrimSpace(strings.TrimPrefix(line, "Encoded:")), Match: line}
	case strings.Contains(line, "[Done]") || line == "Done":
		// The brackets normally arrive as tone markers and are stripped.
		return Status{Kind: StatusDone, Match: line}
	}
	return Status{}
}
