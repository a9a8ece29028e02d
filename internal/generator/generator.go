// Package generator builds drill targets.
package generator

import (
	"math/rand"
	"time"
	"unicode"
)

// FallbackChars is used when no group characters are allowed.
const FallbackChars = "PARIS"

// DefaultAllowed is the default character pool for groups.
const DefaultAllowed = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator produces randomized drill targets.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Word picks one word uniformly.
func (g *Generator) Word(words []string) string {
	if len(words) == 0 {
		return FallbackChars
	}
	return words[g.rnd.Intn(len(words))]
}

// WordWeighted picks one word with a bias toward weak characters.
func (g *Generator) WordWeighted(words []string, weakSet map[rune]struct{}, factor float64) string {
	if len(words) == 0 {
		return FallbackChars
	}
	if len(weakSet) == 0 || factor <= 0 {
		return g.Word(words)
	}
	weights := make([]float64, len(words))
	for i, word := range words {
		weights[i] = 1.0 + float64(countWeak(word, weakSet))*factor
	}
	return words[g.pick(weights)]
}

// Group builds size random characters from allowed (case-insensitive).
// An empty pool falls back to FallbackChars.
func (g *Generator) Group(size int, allowed string) string {
	pool := Pool(allowed)
	out := make([]rune, 0, size)
	for i := 0; i < size; i++ {
		out = append(out, pool[g.rnd.Intn(len(pool))])
	}
	return string(out)
}

// GroupWeighted is Group with weak characters drawn more often.
func (g *Generator) GroupWeighted(size int, allowed string, weakSet map[rune]struct{}, factor float64) string {
	if len(weakSet) == 0 || factor <= 0 {
		return g.Group(size, allowed)
	}
	pool := Pool(allowed)
	weights := make([]float64, len(pool))
	for i, r := range pool {
		weights[i] = 1.0
		if _, ok := weakSet[r]; ok {
			weights[i] += factor
		}
	}
	out := make([]rune, 0, size)
	for i := 0; i < size; i++ {
		out = append(out, pool[g.pick(weights)])
	}
	return string(out)
}

// Pool returns the upper-cased, de-duplicated group pool without
// whitespace.
func Pool(allowed string) []rune {
	seen := map[rune]struct{}{}
	var pool []rune
	for _, r := range allowed {
		if unicode.IsSpace(r) {
			continue
		}
		r = unicode.ToUpper(r)
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		pool = append(pool, r)
	}
	if len(pool) == 0 {
		return []rune(FallbackChars)
	}
	return pool
}

func (g *Generator) pick(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return i
		}
	}
	return len(weights) - 1
}

func countWeak(word string, weakSet map[rune]struct{}) int {
	n := 0
	for _, r := range word {
		if _, ok := weakSet[unicode.ToUpper(r)]; ok {
			n++
		}
	}
	return n
}
