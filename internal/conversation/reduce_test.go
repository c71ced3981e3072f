package conversation_test

import (
	"errors"
	"testing"

	"voicebot/internal/conversation"
	"voicebot/internal/domain"
)

func apply(t *testing.T, s conversation.State, evs ...conversation.Event) (conversation.State, []conversation.Effect) {
	t.Helper()
	var effects []conversation.Effect
	for _, ev := range evs {
		var fx []conversation.Effect
		s, fx = conversation.Reduce(s, ev)
		effects = append(effects, fx...)
	}
	return s, effects
}

func countSender(s conversation.State, sender domain.Sender) int {
	n := 0
	for _, m := range s.Messages {
		if m.Sender == sender {
			n++
		}
	}
	return n
}

func TestMicToggle(t *testing.T) {
	var s conversation.State

	s, fx := apply(t, s, conversation.MicPressed{})
	if !s.Listening {
		t.Fatal("pressing while idle should start listening")
	}
	if len(fx) != 1 {
		t.Fatalf("effects: got %d, want 1", len(fx))
	}
	if _, ok := fx[0].(conversation.StartListening); !ok {
		t.Fatalf("effect: got %T, want StartListening", fx[0])
	}

	// Pressing again is a normal stop, not a second session.
	s, fx = apply(t, s, conversation.MicPressed{})
	if !s.Listening {
		t.Fatal("state should stay listening until the adapter reports end")
	}
	if len(fx) != 1 {
		t.Fatalf("effects: got %d, want 1", len(fx))
	}
	if _, ok := fx[0].(conversation.StopListening); !ok {
		t.Fatalf("effect: got %T, want StopListening", fx[0])
	}

	s, _ = apply(t, s, conversation.UtteranceEnded{})
	if s.Listening {
		t.Fatal("utterance end should return to idle")
	}
}

func TestReleaseWhileIdleIsNoop(t *testing.T) {
	var s conversation.State
	s, fx := apply(t, s, conversation.MicReleased{})
	if s.Listening || len(fx) != 0 {
		t.Fatalf("release while idle: listening=%v effects=%d", s.Listening, len(fx))
	}
}

func TestFinalTranscriptDispatchesOneQuery(t *testing.T) {
	var s conversation.State
	s, fx := apply(t, s,
		conversation.MicPressed{},
		conversation.InterimReceived{Text: "what are"},
		conversation.InterimReceived{Text: "what are your business"},
		conversation.FinalReceived{Text: "What are your business hours?"},
		conversation.UtteranceEnded{},
	)

	sends := 0
	for _, f := range fx {
		if sq, ok := f.(conversation.SendQuery); ok {
			sends++
			if sq.Text != "What are your business hours?" {
				t.Errorf("query text: got %q", sq.Text)
			}
		}
	}
	if sends != 1 {
		t.Fatalf("SendQuery effects: got %d, want 1", sends)
	}
	if s.QueryCount != 1 {
		t.Fatalf("QueryCount: got %d, want 1", s.QueryCount)
	}
	if got := countSender(s, domain.SenderUser); got != s.QueryCount {
		t.Fatalf("QueryCount %d != user messages %d", s.QueryCount, got)
	}
	if s.Transcript != "" {
		t.Errorf("transcript should clear after send, got %q", s.Transcript)
	}
}

func TestEmptyFinalTranscriptSendsNothing(t *testing.T) {
	var s conversation.State
	s, fx := apply(t, s,
		conversation.MicPressed{},
		conversation.FinalReceived{Text: "   "},
		conversation.UtteranceEnded{},
	)
	for _, f := range fx {
		if _, ok := f.(conversation.SendQuery); ok {
			t.Fatal("empty final transcript must not trigger a query")
		}
	}
	if s.QueryCount != 0 || len(s.Messages) != 0 {
		t.Fatalf("state changed: count=%d messages=%d", s.QueryCount, len(s.Messages))
	}
}

func TestReplyAppendsBotMessageAndSpeaks(t *testing.T) {
	var s conversation.State
	s, _ = apply(t, s, conversation.TextSubmitted{Text: "What are your business hours?"})

	reply := domain.Reply{
		Text:        "We are open 9 to 5.",
		Intent:      domain.IntentGetHours,
		ActionTaken: "lookup",
	}
	s, fx := apply(t, s, conversation.ReplyReceived{Reply: reply})

	if len(s.Messages) != 2 {
		t.Fatalf("messages: got %d, want user+bot pair", len(s.Messages))
	}
	last, _ := s.LastMessage()
	if last.Sender != domain.SenderBot || last.Text != reply.Text {
		t.Fatalf("bot message: %+v", last)
	}
	if last.Intent != domain.IntentGetHours || last.ActionTaken != "lookup" {
		t.Fatalf("annotation: intent=%q action=%q", last.Intent, last.ActionTaken)
	}
	if s.Answered != 1 {
		t.Fatalf("Answered: got %d, want 1", s.Answered)
	}
	if s.InFlight {
		t.Fatal("turn should complete")
	}

	spoke := false
	for _, f := range fx {
		if sp, ok := f.(conversation.Speak); ok {
			spoke = true
			if sp.Text != reply.Text {
				t.Errorf("spoken text: got %q", sp.Text)
			}
		}
	}
	if !spoke {
		t.Fatal("reply should be spoken")
	}
}

func TestQueryFailureAppendsSingleBotMessage(t *testing.T) {
	var s conversation.State
	s, _ = apply(t, s, conversation.TextSubmitted{Text: "hello"})
	s, fx := apply(t, s, conversation.QueryFailed{Err: errors.New("connection refused")})

	if got := countSender(s, domain.SenderBot); got != 1 {
		t.Fatalf("bot messages: got %d, want 1", got)
	}
	if s.Answered != 0 {
		t.Fatalf("Answered incremented on failure: %d", s.Answered)
	}
	if s.Err == "" {
		t.Fatal("error flag should be set")
	}
	for _, f := range fx {
		if _, ok := f.(conversation.Speak); ok {
			t.Fatal("failure replies are not spoken")
		}
	}

	// Next successful turn clears the error flag.
	s, _ = apply(t, s,
		conversation.TextSubmitted{Text: "hello again"},
		conversation.ReplyReceived{Reply: domain.Reply{Text: "hi"}},
	)
	if s.Err != "" {
		t.Fatalf("error flag should clear on success, got %q", s.Err)
	}
}

func TestUtterancesSerializeBehindInFlightQuery(t *testing.T) {
	var s conversation.State
	s, fx := apply(t, s, conversation.TextSubmitted{Text: "first"})
	if len(fx) != 1 {
		t.Fatalf("effects: got %d", len(fx))
	}

	// Second utterance finalizes while the first reply is pending.
	s, fx = apply(t, s, conversation.TextSubmitted{Text: "second"})
	for _, f := range fx {
		if _, ok := f.(conversation.SendQuery); ok {
			t.Fatal("second query must wait for the first reply")
		}
	}
	if s.QueryCount != 2 {
		t.Fatalf("QueryCount: got %d, want 2", s.QueryCount)
	}

	s, fx = apply(t, s, conversation.ReplyReceived{Reply: domain.Reply{Text: "ack first"}})
	var queued []string
	for _, f := range fx {
		if sq, ok := f.(conversation.SendQuery); ok {
			queued = append(queued, sq.Text)
		}
	}
	if len(queued) != 1 || queued[0] != "second" {
		t.Fatalf("queued dispatch: got %v, want [second]", queued)
	}
	if !s.InFlight {
		t.Fatal("second turn should now be in flight")
	}
}

func TestRecognitionFailureSetsBannerAndResets(t *testing.T) {
	var s conversation.State
	s, _ = apply(t, s,
		conversation.MicPressed{},
		conversation.InterimReceived{Text: "partial"},
	)
	s, fx := apply(t, s, conversation.RecognitionFailed{Err: errors.New("no speech detected")})
	if s.Listening || s.Transcript != "" {
		t.Fatalf("listening=%v transcript=%q after failure", s.Listening, s.Transcript)
	}
	if s.Err == "" {
		t.Fatal("error banner should be set")
	}
	if len(fx) != 0 {
		t.Fatalf("effects after recognition failure: %d", len(fx))
	}
}

func TestCapabilityMissingReportedOnce(t *testing.T) {
	var s conversation.State
	s, _ = apply(t, s,
		conversation.CapabilityMissing{What: "microphone"},
		conversation.CapabilityMissing{What: "microphone"},
		conversation.CapabilityMissing{What: "speaker"},
	)
	if len(s.Missing) != 2 {
		t.Fatalf("missing capabilities: got %v", s.Missing)
	}
}

func TestInterimIgnoredWhileIdle(t *testing.T) {
	var s conversation.State
	s, _ = apply(t, s, conversation.InterimReceived{Text: "stray"})
	if s.Transcript != "" {
		t.Fatalf("idle interim should be dropped, got %q", s.Transcript)
	}
}
