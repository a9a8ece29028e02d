package link

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		line  string
		kind  StatusKind
		value string
		match string
	}{
		{"WPM set to 25", StatusWPM, "25", "WPM set to 25"},
		{"> Tone set to 700", StatusTone, "700", "Tone set to 700"},
		{"Mode set to IAMBIC B", StatusMode, "IAMBIC B", "Mode set to IAMBIC B"},
		{"Action: Buffer Cleared", StatusAction, "Action: Buffer Cleared", "Action: Buffer Cleared"},
		{"Encoded: SOS", StatusEncoded, "SOS", "Encoded: SOS"},
		{"Done", StatusDone, "", "Done"},
		{"CQ CQ DE", StatusNone, "", ""},
	}
	for _, tt := range tests {
		got := ParseStatus(tt.line)
		if got.Kind != tt.kind || got.Value != tt.value || got.Match != tt.match {
			t.Fatalf("ParseStatus(%q) = %+v", tt.line, got)
		}
		if got.System() != (tt.kind != StatusNone) {
			t.Fatalf("unexpected System() for %q", tt.line)
		}
	}
}

func TestStatusInt(t *testing.T) {
	n, ok := ParseStatus("WPM set to 18").Int()
	if !ok || n != 18 {
		t.Fatalf("expected 18, got %d %v", n, ok)
	}
	if _, ok := ParseStatus("Mode set to B").Int(); ok {
		t.Fatalf("expected non-numeric value to fail")
	}
}
