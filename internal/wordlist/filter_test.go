package wordlist

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestEncodableFilter(t *testing.T) {
	filter := Encodable()
	for _, word := range []string{"hello", "CQ DE", "5NN", "QRL?"} {
		if !filter(word) {
			t.Fatalf("expected %q to pass", word)
		}
	}
	for _, word := range []string{"", "résumé", "don’t", "a_b"} {
		if filter(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestWithinAndApply(t *testing.T) {
	words := []string{"tea", "EAT", "ten", "a te"}
	got := Apply(words, Encodable(), Within("ETA"))
	if !reflect.DeepEqual(got, []string{"tea", "EAT", "a te"}) {
		t.Fatalf("unexpected words %v", got)
	}
}

func TestReadWords(t *testing.T) {
	in := "# calls\nCQ   DE\n\n  k1abc \nnaïve\n"
	got, err := ReadWords(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadWords: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"CQ DE", "k1abc"}) {
		t.Fatalf("unexpected words %v", got)
	}
	if _, err := ReadWords(strings.NewReader("# nothing\nnaïve\n")); err == nil {
		t.Fatalf("expected empty list error")
	}
}

func TestLoadWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("paris\nsos\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := LoadWords(path)
	if err != nil {
		t.Fatalf("LoadWords: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected words %v", got)
	}
	if _, err := LoadWords(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
