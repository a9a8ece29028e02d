// Package link talks to the keyer device over a serial byte stream.
package link

import (
	"errors"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// In-band control markers sent by the keyer around each keyed element.
const (
	ToneStartMarker = '['
	ToneStopMarker  = ']'
)

// DecodedChunk is the result of feeding one read to a Decoder.
type DecodedChunk struct {
	// RawText is the marker-free text for immediate display. Empty when
	// the chunk carried nothing but markers.
	RawText   string
	Lines     []string
	ToneStart bool
	ToneStop  bool
}

// Empty reports whether the chunk carries no events at all.
func (c DecodedChunk) Empty() bool {
	return c.RawText == "" && len(c.Lines) == 0 && !c.ToneStart && !c.ToneStop
}

// Decoder reassembles newline-terminated lines across arbitrary chunk
// boundaries. The carry buffer is the only line state kept between calls;
// partial holds the bytes of a rune split across reads.
type Decoder struct {
	carry   strings.Builder
	utf8    transform.Transformer
	partial []byte
}

// Feed decodes one chunk. It never fails; invalid UTF-8 is replaced.
func (d *Decoder) Feed(data []byte) DecodedChunk {
	var chunk DecodedChunk
	text := d.decodeText(data)
	if text == "" {
		return chunk
	}

	if strings.ContainsRune(text, ToneStartMarker) {
		chunk.ToneStart = true
		text = strings.ReplaceAll(text, string(ToneStartMarker), "")
	}
	if strings.ContainsRune(text, ToneStopMarker) {
		chunk.ToneStop = true
		text = strings.ReplaceAll(text, string(ToneStopMarker), "")
	}
	if text == "" {
		return chunk
	}

	chunk.RawText = text

	segments := strings.Split(text, "\n")
	terminated := strings.HasSuffix(text, "\n")
	for i, segment := range segments {
		if i == len(segments)-1 && !terminated {
			d.carry.WriteString(segment)
			break
		}
		line := d.carry.String() + segment
		d.carry.Reset()
		line = strings.TrimSpace(line)
		if line != "" {
			chunk.Lines = append(chunk.Lines, line)
		}
	}
	return chunk
}

// Pending returns the unterminated tail held for the next Feed.
func (d *Decoder) Pending() string {
	return d.carry.String()
}

// Reset drops any unterminated tail.
func (d *Decoder) Reset() {
	d.carry.Reset()
	d.partial = nil
	if d.utf8 != nil {
		d.utf8.Reset()
	}
}

func (d *Decoder) decodeText(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if d.utf8 == nil {
		d.utf8 = unicode.UTF8.NewDecoder()
	}
	src := append(d.partial, data...)
	d.partial = nil
	// Each invalid byte becomes a 3-byte replacement rune.
	dst := make([]byte, 3*len(src)+4)
	nDst, nSrc, err := d.utf8.Transform(dst, src, false)
	switch {
	case errors.Is(err, transform.ErrShortSrc):
		d.partial = append([]byte(nil), src[nSrc:]...)
	case err != nil:
		return strings.ToValidUTF8(string(src), "�")
	}
	return string(dst[:nDst])
}
