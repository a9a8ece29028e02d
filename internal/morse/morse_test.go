package morse

import "testing"

func TestLookupIsCaseInsensitive(t *testing.T) {
	upper, ok := Lookup('A')
	if !ok {
		t.Fatalf("expected A in table")
	}
	lower, ok := Lookup('a')
	if !ok {
		t.Fatalf("expected a to resolve")
	}
	if upper.Pattern() != ".-" || lower.Pattern() != ".-" {
		t.Fatalf("unexpected patterns %q %q", upper.Pattern(), lower.Pattern())
	}
	if lower.Char != 'A' {
		t.Fatalf("expected canonical upper-case char, got %q", lower.Char)
	}
}

func TestTrackedCharsAreEncodable(t *testing.T) {
	tracked := TrackedChars()
	if len(tracked) != 42 {
		t.Fatalf("expected 42 tracked chars, got %d", len(tracked))
	}
	for _, ch := range tracked {
		if _, ok := Lookup(ch); !ok {
			t.Fatalf("tracked char %q has no code", ch)
		}
	}
}

func TestCharUnits(t *testing.T) {
	tests := []struct {
		ch   rune
		want int
	}{
		{'E', 1 + 3},
		{'T', 3 + 3},
		{'A', 1 + 1 + 3 + 3},
		{'S', 1 + 1 + 1 + 1 + 1 + 3},
		{' ', 7},
		{'#', 0},
	}
	for _, tt := range tests {
		if got := CharUnits(tt.ch); got != tt.want {
			t.Fatalf("CharUnits(%q) = %d, want %d", tt.ch, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if Label(',') != "COMMA" {
		t.Fatalf("expected COMMA label")
	}
	if Label('A') != "A" {
		t.Fatalf("expected plain label")
	}
}

func TestEncodable(t *testing.T) {
	if !Encodable("cq de 73") {
		t.Fatalf("expected encodable text")
	}
	if Encodable("hi!") {
		t.Fatalf("expected ! to be rejected")
	}
}
