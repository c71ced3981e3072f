package application

import "context"

type RecognitionEventKind int

const (
	// EventInterim carries a provisional, revisable transcript.
	EventInterim RecognitionEventKind = iota
	// EventFinal carries the engine's confirmed text for the utterance.
	EventFinal
	// EventEnd signals end-of-utterance; at most one final precedes it.
	EventEnd
	// EventError reports an engine runtime error. It ends the utterance.
	EventError
)

type RecognitionEvent struct {
	Kind RecognitionEventKind
	Text string
	Err  error
}

// Recognizer wraps a speech recognition engine for one utterance at a
// time. Start while a session is active is a no-op; Start on an
// unsupported platform returns domain.ErrUnsupported. Stop requests
// early termination; the engine still emits whatever final transcript
// it has accumulated before the EventEnd.
type Recognizer interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan RecognitionEvent
}
