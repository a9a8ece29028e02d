package trainer

import "github.com/verte-zerg/cwtrain/internal/link"

// Event is a typed notification consumed by Trainer.Dispatch.
type Event interface {
	event()
}

// TextReceived carries decoded text for immediate display.
type TextReceived struct{ Text string }

// LineReceived carries one complete, trimmed line.
type LineReceived struct{ Line string }

// ToneStarted means the keyer closed.
type ToneStarted struct{}

// ToneStopped means the keyer opened.
type ToneStopped struct{}

// StatusChanged carries a parsed device status line.
type StatusChanged struct{ Status link.Status }

// LinkConnected reports an opened port.
type LinkConnected struct{ Port string }

// LinkClosed reports a closed port. Err is nil on a requested close.
type LinkClosed struct {
	Port string
	Err  error
}

// LinkFailed reports a failed connect.
type LinkFailed struct {
	Port string
	Err  error
}

// PacerExpired is a drill pacer delay expiry.
type PacerExpired struct{ Gen uint64 }

func (TextReceived) event()  {}
func (LineReceived) event()  {}
func (ToneStarted) event()   {}
func (ToneStopped) event()   {}
func (StatusChanged) event() {}
func (LinkConnected) event() {}
func (LinkClosed) event()    {}
func (LinkFailed) event()    {}
func (PacerExpired) event()  {}

// ChunkEvents converts a decoded chunk into events: tone flags first,
// then the raw text, then complete lines.
func ChunkEvents(chunk link.DecodedChunk) []Event {
	var events []Event
	if chunk.ToneStart {
		events = append(events, ToneStarted{})
	}
	if chunk.ToneStop {
		events = append(events, ToneStopped{})
	}
	if chunk.RawText != "" {
		events = append(events, TextReceived{Text: chunk.RawText})
	}
	for _, line := range chunk.Lines {
		events = append(events, LineReceived{Line: line})
	}
	return events
}
