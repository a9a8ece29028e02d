package generator

import (
	"strings"
	"testing"
)

func TestGroupUsesAllowedChars(t *testing.T) {
	g := NewSeeded(1)
	for i := 0; i < 50; i++ {
		group := g.Group(5, "ab c")
		if len([]rune(group)) != 5 {
			t.Fatalf("unexpected group length %q", group)
		}
		for _, r := range group {
			if !strings.ContainsRune("ABC", r) {
				t.Fatalf("unexpected rune %q in %q", r, group)
			}
		}
	}
}

func TestGroupFallback(t *testing.T) {
	g := NewSeeded(2)
	group := g.Group(8, "   ")
	for _, r := range group {
		if !strings.ContainsRune(FallbackChars, r) {
			t.Fatalf("unexpected rune %q", r)
		}
	}
}

func TestWordFromList(t *testing.T) {
	g := NewSeeded(3)
	words := []string{"CQ", "DE", "73"}
	for i := 0; i < 20; i++ {
		w := g.Word(words)
		if w != "CQ" && w != "DE" && w != "73" {
			t.Fatalf("unexpected word %q", w)
		}
	}
	if got := g.Word(nil); got != FallbackChars {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestWeightedPrefersWeakChars(t *testing.T) {
	g := NewSeeded(4)
	weak := map[rune]struct{}{'Q': {}}
	words := []string{"EE", "QQQ"}
	hits := 0
	for i := 0; i < 400; i++ {
		if g.WordWeighted(words, weak, 5) == "QQQ" {
			hits++
		}
	}
	// weights 1 and 16
	if hits < 300 {
		t.Fatalf("expected weak word to dominate, got %d/400", hits)
	}

	qs := 0
	for i := 0; i < 100; i++ {
		qs += strings.Count(g.GroupWeighted(5, "EQ", weak, 9), "Q")
	}
	if qs < 350 {
		t.Fatalf("expected weak char to dominate, got %d/500", qs)
	}
}

func TestPoolDeduplicates(t *testing.T) {
	if got := string(Pool("aAbB1")); got != "AB1" {
		t.Fatalf("unexpected pool %q", got)
	}
}
