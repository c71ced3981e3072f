package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"voicebot/internal/conversation"
	"voicebot/internal/domain"
)

// Assistant drives one conversation session: recognizer events and
// out-of-band utterances go through the reducer, and the resulting
// effects (send query, speak reply, start/stop the engine) are executed
// here. The store is the single source of truth the view renders from.
type Assistant struct {
	store       *conversation.Store
	recognizer  Recognizer
	synth       Synthesizer
	backend     QueryService
	transcriber Transcriber
	sources     []InputSource
	logger      *slog.Logger
}

func NewAssistant(
	store *conversation.Store,
	recognizer Recognizer,
	synth Synthesizer,
	backend QueryService,
	transcriber Transcriber,
	sources []InputSource,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		store:       store,
		recognizer:  recognizer,
		synth:       synth,
		backend:     backend,
		transcriber: transcriber,
		sources:     sources,
		logger:      logger,
	}
}

func (a *Assistant) Store() *conversation.Store { return a.store }

// ToggleMic implements the press gesture: idle starts listening, an
// active session gets a normal stop.
func (a *Assistant) ToggleMic(ctx context.Context) {
	a.apply(ctx, conversation.MicPressed{})
}

// ReleaseMic implements the release gesture.
func (a *Assistant) ReleaseMic(ctx context.Context) {
	a.apply(ctx, conversation.MicReleased{})
}

// SubmitText dispatches typed input as if it were a final transcript.
func (a *Assistant) SubmitText(ctx context.Context, text string) {
	a.apply(ctx, conversation.TextSubmitted{Text: text})
}

// Run pumps recognizer events and input sources until ctx is done.
func (a *Assistant) Run(ctx context.Context) error {
	for _, src := range a.sources {
		if err := src.Start(ctx); err != nil {
			return fmt.Errorf("starting source %s: %w", src.Name(), err)
		}
		a.logger.Info("input source started", "source", src.Name())
		go a.pumpSource(ctx, src)
	}
	defer func() {
		for _, src := range a.sources {
			if err := src.Stop(); err != nil {
				a.logger.Error("stopping source", "source", src.Name(), "error", err)
			}
		}
	}()

	events := a.recognizer.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				<-ctx.Done()
				return ctx.Err()
			}
			a.handleRecognition(ctx, ev)
		}
	}
}

func (a *Assistant) handleRecognition(ctx context.Context, ev RecognitionEvent) {
	switch ev.Kind {
	case EventInterim:
		a.apply(ctx, conversation.InterimReceived{Text: ev.Text})
	case EventFinal:
		a.logger.Info("final transcript", "text", ev.Text)
		a.apply(ctx, conversation.FinalReceived{Text: ev.Text})
	case EventEnd:
		a.apply(ctx, conversation.UtteranceEnded{})
	case EventError:
		err := ev.Err
		if err == nil {
			err = errors.New("unknown recognition error")
		}
		a.logger.Error("recognition error", "error", err)
		a.apply(ctx, conversation.RecognitionFailed{Err: &domain.RecognitionError{Reason: "engine", Err: err}})
	}
}

func (a *Assistant) pumpSource(ctx context.Context, src InputSource) {
	for {
		utt, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				a.logger.Error("input source stopped", "source", src.Name(), "error", err)
			}
			return
		}

		text := utt.Text
		if text == "" && len(utt.Audio) > 0 {
			text, err = a.transcriber.Transcribe(ctx, utt.Audio)
			if err != nil {
				a.logger.Error("transcribing", "source", src.Name(), "error", err)
				a.apply(ctx, conversation.RecognitionFailed{Err: &domain.RecognitionError{Reason: "transcription", Err: err}})
				continue
			}
			a.logger.Info("transcribed", "source", src.Name(), "text", text)
		}

		if strings.TrimSpace(text) == "" {
			continue
		}
		a.apply(ctx, conversation.TextSubmitted{Text: text})
	}
}

func (a *Assistant) apply(ctx context.Context, ev conversation.Event) {
	effects := a.store.Apply(ev)
	for _, effect := range effects {
		a.execute(ctx, effect)
	}
}

func (a *Assistant) execute(ctx context.Context, effect conversation.Effect) {
	switch effect := effect.(type) {
	case conversation.StartListening:
		go func() {
			if err := a.recognizer.Start(ctx); err != nil {
				if errors.Is(err, domain.ErrUnsupported) {
					a.logger.Warn("speech recognition unavailable")
					a.apply(ctx, conversation.CapabilityMissing{What: "speech recognition"})
					a.apply(ctx, conversation.UtteranceEnded{})
					return
				}
				a.logger.Error("starting recognizer", "error", err)
				a.apply(ctx, conversation.RecognitionFailed{Err: &domain.RecognitionError{Reason: "start", Err: err}})
			}
		}()

	case conversation.StopListening:
		if err := a.recognizer.Stop(); err != nil {
			a.logger.Error("stopping recognizer", "error", err)
		}

	case conversation.SendQuery:
		go func() {
			reply, err := a.backend.Process(ctx, effect.Text)
			if err != nil {
				a.logger.Error("query failed", "error", err)
				a.apply(ctx, conversation.QueryFailed{Err: err})
				return
			}
			a.logger.Info("reply received",
				"intent", reply.Intent,
				"action", reply.ActionTaken,
			)
			a.apply(ctx, conversation.ReplyReceived{Reply: reply})
		}()

	case conversation.Speak:
		go func() {
			// Fire and forget: synthesis failures are never surfaced.
			if err := a.synth.Speak(ctx, effect.Text); err != nil {
				a.logger.Error("speaking reply", "error", err)
			}
		}()
	}
}
