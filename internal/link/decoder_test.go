package link

import (
	"reflect"
	"testing"
)

func TestDecoderSplitAcrossChunks(t *testing.T) {
	var d Decoder

	first := d.Feed([]byte("AB[CD"))
	if first.RawText != "ABCD" {
		t.Fatalf("expected raw text ABCD, got %q", first.RawText)
	}
	if !first.ToneStart || first.ToneStop {
		t.Fatalf("expected tone start only, got %+v", first)
	}
	if len(first.Lines) != 0 {
		t.Fatalf("expected no lines, got %v", first.Lines)
	}
	if d.Pending() != "ABCD" {
		t.Fatalf("expected carry ABCD, got %q", d.Pending())
	}

	second := d.Feed([]byte("EF]GH\n"))
	if second.RawText != "EFGH" {
		t.Fatalf("expected raw text EFGH, got %q", second.RawText)
	}
	if second.ToneStart || !second.ToneStop {
		t.Fatalf("expected tone stop only, got %+v", second)
	}
	if !reflect.DeepEqual(second.Lines, []string{"ABCDEFGH"}) {
		t.Fatalf("unexpected lines %v", second.Lines)
	}
	if d.Pending() != "" {
		t.Fatalf("expected carry cleared, got %q", d.Pending())
	}
}

func TestDecoderMarkerOnlyChunk(t *testing.T) {
	var d Decoder
	chunk := d.Feed([]byte("[[]"))
	if !chunk.ToneStart || !chunk.ToneStop {
		t.Fatalf("expected both flags, got %+v", chunk)
	}
	if chunk.RawText != "" || len(chunk.Lines) != 0 {
		t.Fatalf("expected no text events, got %+v", chunk)
	}
}

func TestDecoderEmptyInput(t *testing.T) {
	var d Decoder
	if chunk := d.Feed(nil); !chunk.Empty() {
		t.Fatalf("expected empty chunk, got %+v", chunk)
	}
}

func TestDecoderSkipsBlankLines(t *testing.T) {
	var d Decoder
	chunk := d.Feed([]byte("  one \n\n\t\ntwo\nthr"))
	if !reflect.DeepEqual(chunk.Lines, []string{"one", "two"}) {
		t.Fatalf("unexpected lines %v", chunk.Lines)
	}
	if d.Pending() != "thr" {
		t.Fatalf("expected carry thr, got %q", d.Pending())
	}
	chunk = d.Feed([]byte("ee\r\n"))
	if !reflect.DeepEqual(chunk.Lines, []string{"three"}) {
		t.Fatalf("unexpected lines %v", chunk.Lines)
	}
}

func TestDecoderReplacesInvalidBytes(t *testing.T) {
	var d Decoder
	chunk := d.Feed([]byte{'A', 0xff, 'B', '\n'})
	if chunk.RawText != "A�B\n" {
		t.Fatalf("unexpected raw text %q", chunk.RawText)
	}
	if !reflect.DeepEqual(chunk.Lines, []string{"A�B"}) {
		t.Fatalf("unexpected lines %v", chunk.Lines)
	}
}

func TestDecoderFlagsOncePerFeed(t *testing.T) {
	var d Decoder
	chunk := d.Feed([]byte("[A[B[\n"))
	if !chunk.ToneStart {
		t.Fatalf("expected tone start")
	}
	if chunk.RawText != "AB\n" {
		t.Fatalf("expected all markers stripped, got %q", chunk.RawText)
	}
}

func TestDecoderKeepsRuneSplitAcrossChunks(t *testing.T) {
	var d Decoder
	first := d.Feed([]byte{'C', 'Q', ' ', 0xC3})
	if first.RawText != "CQ " {
		t.Fatalf("expected raw text without the partial rune, got %q", first.RawText)
	}
	second := d.Feed([]byte{0xA9, '\n'})
	if second.RawText != "é\n" {
		t.Fatalf("expected joined rune, got %q", second.RawText)
	}
	if !reflect.DeepEqual(second.Lines, []string{"CQ é"}) {
		t.Fatalf("unexpected lines %v", second.Lines)
	}
}

func TestDecoderResetDropsPartialRune(t *testing.T) {
	var d Decoder
	d.Feed([]byte{0xE2, 0x82})
	d.Reset()
	chunk := d.Feed([]byte("K\n"))
	if !reflect.DeepEqual(chunk.Lines, []string{"K"}) {
		t.Fatalf("unexpected lines %v", chunk.Lines)
	}
}
