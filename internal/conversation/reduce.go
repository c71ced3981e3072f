package conversation

import (
	"fmt"
	"strings"

	"voicebot/internal/domain"
)

// Reduce applies one event to the state and returns the next state plus
// the side effects the transition requires. Pure apart from message ID
// and timestamp generation.
func Reduce(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case MicPressed:
		if s.Listening {
			// Pressing the control mid-utterance is a normal stop.
			return s, []Effect{StopListening{}}
		}
		s.Listening = true
		s.Transcript = ""
		s.pendingFinal = ""
		return s, []Effect{StartListening{}}

	case MicReleased:
		if !s.Listening {
			return s, nil
		}
		return s, []Effect{StopListening{}}

	case InterimReceived:
		if !s.Listening {
			return s, nil
		}
		s.Transcript = ev.Text
		return s, nil

	case FinalReceived:
		s.Transcript = ev.Text
		s.pendingFinal = ev.Text
		return s, nil

	case UtteranceEnded:
		s.Listening = false
		s.Transcript = ""
		text := strings.TrimSpace(s.pendingFinal)
		s.pendingFinal = ""
		if text == "" {
			return s, nil
		}
		return dispatch(s, text)

	case TextSubmitted:
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			return s, nil
		}
		return dispatch(s, text)

	case ReplyReceived:
		s.InFlight = false
		msg := domain.NewMessage(domain.SenderBot, ev.Reply.Text)
		msg.Intent = ev.Reply.Intent
		msg.ActionTaken = ev.Reply.ActionTaken
		s.Messages = append(s.Messages, msg)
		s.Answered++
		s.Err = ""
		effects := []Effect{Speak{Text: ev.Reply.Text}}
		s, effects = drainQueue(s, effects)
		return s, effects

	case QueryFailed:
		s.InFlight = false
		text := fmt.Sprintf("Sorry, I couldn't reach the server: %v", ev.Err)
		s.Messages = append(s.Messages, domain.NewMessage(domain.SenderBot, text))
		s.Err = ev.Err.Error()
		var effects []Effect
		s, effects = drainQueue(s, nil)
		return s, effects

	case RecognitionFailed:
		s.Listening = false
		s.Transcript = ""
		s.pendingFinal = ""
		s.Err = ev.Err.Error()
		return s, nil

	case CapabilityMissing:
		for _, m := range s.Missing {
			if m == ev.What {
				return s, nil
			}
		}
		s.Missing = append(s.Missing, ev.What)
		s.Err = ev.What + " is not available on this platform"
		return s, nil
	}

	return s, nil
}

// dispatch records a finalized user utterance and either sends it or,
// if a query is already in flight, queues it behind the current turn.
func dispatch(s State, text string) (State, []Effect) {
	s.Messages = append(s.Messages, domain.NewMessage(domain.SenderUser, text))
	s.QueryCount++
	if s.InFlight {
		s.Queue = append(s.Queue, text)
		return s, nil
	}
	s.InFlight = true
	return s, []Effect{SendQuery{Text: text}}
}

func drainQueue(s State, effects []Effect) (State, []Effect) {
	if len(s.Queue) == 0 {
		return s, effects
	}
	next := s.Queue[0]
	s.Queue = append([]string(nil), s.Queue[1:]...)
	s.InFlight = true
	return s, append(effects, SendQuery{Text: next})
}
