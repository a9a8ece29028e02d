// Package morse holds the character code table and timing units.
package morse

import (
	"sort"
	"strings"
	"unicode"
)

// Symbol is a single Morse element.
type Symbol uint8

const (
	// Dot is one unit of tone.
	Dot Symbol = iota
	// Dash is three units of tone.
	Dash
)

// Unit counts used by both the audio renderer and the drill pacer.
const (
	DotUnits       = 1
	DashUnits      = 3
	SymbolGapUnits = 1
	CharGapUnits   = 3
	WordGapUnits   = 7
)

// Units returns the duration of the symbol in units.
func (s Symbol) Units() int {
	if s == Dash {
		return DashUnits
	}
	return DotUnits
}

func (s Symbol) String() string {
	if s == Dash {
		return "-"
	}
	return "."
}

// CodeEntry maps one character to its symbol sequence.
type CodeEntry struct {
	Char    rune
	Symbols []Symbol
}

// Pattern renders the symbols as dots and dashes.
func (e CodeEntry) Pattern() string {
	var b strings.Builder
	for _, s := range e.Symbols {
		b.WriteString(s.String())
	}
	return b.String()
}

var patterns = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".", 'F': "..-.",
	'G': "--.", 'H': "....", 'I': "..", 'J': ".---", 'K': "-.-", 'L': ".-..",
	'M': "--", 'N': "-.", 'O': "---", 'P': ".--.", 'Q': "--.-", 'R': ".-.",
	'S': "...", 'T': "-", 'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-",
	'Y': "-.--", 'Z': "--..",

	'1': ".----", '2': "..---", '3': "...--", '4': "....-", '5': ".....",
	'6': "-....", '7': "--...", '8': "---..", '9': "----.", '0': "-----",

	',': "--..--", '.': ".-.-.-", '?': "..--..", '/': "-..-.", '-': "-....-",
	'(': "-.--.", ')': "-.--.-",
	// Prosigns BT and AR.
	'=': "-...-", '+': ".-.-.",
}

var table = buildTable()

func buildTable() map[rune]CodeEntry {
	out := make(map[rune]CodeEntry, len(patterns))
	for ch, p := range patterns {
		symbols := make([]Symbol, 0, len(p))
		for _, r := range p {
			if r == '-' {
				symbols = append(symbols, Dash)
			} else {
				symbols = append(symbols, Dot)
			}
		}
		out[ch] = CodeEntry{Char: ch, Symbols: symbols}
	}
	return out
}

// Lookup returns the entry for a character, ignoring case.
func Lookup(ch rune) (CodeEntry, bool) {
	entry, ok := table[unicode.ToUpper(ch)]
	return entry, ok
}

// Encodable reports whether every rune in s is a space or has a code.
func Encodable(s string) bool {
	for _, r := range s {
		if r == ' ' {
			continue
		}
		if _, ok := Lookup(r); !ok {
			return false
		}
	}
	return true
}

// Entries returns the table sorted by character.
func Entries() []CodeEntry {
	out := make([]CodeEntry, 0, len(table))
	for _, e := range table {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Char < out[j].Char })
	return out
}

// CharUnits returns the units a character occupies including the
// trailing inter-character gap. A space is a word gap. Unknown
// characters take no time.
func CharUnits(ch rune) int {
	if ch == ' ' {
		return WordGapUnits
	}
	entry, ok := Lookup(ch)
	if !ok {
		return 0
	}
	units := 0
	for i, s := range entry.Symbols {
		units += s.Units()
		if i < len(entry.Symbols)-1 {
			units += SymbolGapUnits
		}
	}
	return units + CharGapUnits
}

// TrainingWords is the built-in practice vocabulary.
func TrainingWords() []string {
	return []string{
		"ARDUINO", "LINUX", "KEYER", "RADIO", "SIGNAL", "CQ", "SOS", "TEST",
		"PARIS", "HELLO", "WORLD", "PYTHON", "CODE", "HAM", "CW", "73",
	}
}

// TrackedChars lists the characters with dedicated columns in the
// session log, in column order.
func TrackedChars() []rune {
	out := make([]rune, 0, 42)
	for c := 'A'; c <= 'Z'; c++ {
		out = append(out, c)
	}
	for c := '0'; c <= '9'; c++ {
		out = append(out, c)
	}
	return append(out, '?', '.', ',', '/', '=', '+')
}

// Label returns the log column label for a tracked character.
func Label(ch rune) string {
	if ch == ',' {
		return "COMMA"
	}
	return string(ch)
}
