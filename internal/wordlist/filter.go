package wordlist

import "github.com/verte-zerg/cwtrain/internal/morse"

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// Encodable keeps words made only of characters with a code.
func Encodable() FilterFunc {
	return func(word string) bool {
		return word != "" && morse.Encodable(word)
	}
}

// Within keeps words made only of the given characters and spaces,
// compared case-insensitively.
func Within(allowed string) FilterFunc {
	set := map[rune]bool{' ': true}
	for _, r := range allowed {
		set[upper(r)] = true
	}
	return func(word string) bool {
		if word == "" {
			return false
		}
		for _, r := range word {
			if !set[upper(r)] {
				return false
			}
		}
		return true
	}
}

// Apply returns the words kept by every filter.
func Apply(words []string, filters ...FilterFunc) []string {
	var out []string
outer:
	for _, w := range words {
		for _, f := range filters {
			if !f(w) {
				continue outer
			}
		}
		out = append(out, w)
	}
	return out
}

func upper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}
