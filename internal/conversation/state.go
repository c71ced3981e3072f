package conversation

import (
	"voicebot/internal/domain"
)

// State is the whole conversation session: the append-only message log
// plus the UI-facing flags. It is updated only through Reduce, so every
// transition is a plain function call that tests can drive directly.
//
// Invariant: QueryCount always equals the number of messages with
// Sender == user.
type State struct {
	Messages   []domain.Message
	QueryCount int
	Answered   int
	Listening  bool
	Transcript string
	Err        string

	// InFlight marks a backend query awaiting its reply. Utterances
	// finalized while one is in flight wait in Queue; they are sent one
	// at a time, in order.
	InFlight bool
	Queue    []string

	// pendingFinal holds a final transcript until the recognizer signals
	// end-of-utterance.
	pendingFinal string

	// Missing lists capabilities reported unavailable at startup.
	Missing []string
}

// Event is anything that may change the session state.
type Event interface{ isEvent() }

type MicPressed struct{}
type MicReleased struct{}
type InterimReceived struct{ Text string }
type FinalReceived struct{ Text string }
type UtteranceEnded struct{}
type RecognitionFailed struct{ Err error }
type CapabilityMissing struct{ What string }
type TextSubmitted struct{ Text string }
type ReplyReceived struct{ Reply domain.Reply }
type QueryFailed struct{ Err error }

func (MicPressed) isEvent()        {}
func (MicReleased) isEvent()       {}
func (InterimReceived) isEvent()   {}
func (FinalReceived) isEvent()     {}
func (UtteranceEnded) isEvent()    {}
func (RecognitionFailed) isEvent() {}
func (CapabilityMissing) isEvent() {}
func (TextSubmitted) isEvent()     {}
func (ReplyReceived) isEvent()     {}
func (QueryFailed) isEvent()       {}

// Effect is a side effect requested by the reducer. The caller (the
// assistant loop) executes them; the reducer itself never touches the
// network or the audio device.
type Effect interface{ isEffect() }

type StartListening struct{}
type StopListening struct{}
type SendQuery struct{ Text string }
type Speak struct{ Text string }

func (StartListening) isEffect() {}
func (StopListening) isEffect()  {}
func (SendQuery) isEffect()      {}
func (Speak) isEffect()          {}

// LastMessage returns the newest message, if any.
func (s State) LastMessage() (domain.Message, bool) {
	if len(s.Messages) == 0 {
		return domain.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}
