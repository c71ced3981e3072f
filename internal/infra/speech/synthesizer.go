package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"voicebot/internal/infra/audio"
)

// PlaybackDevice is the output side of an audio device. Satisfied by
// audio.Speaker in both the portaudio and stub builds.
type PlaybackDevice interface {
	Play(ctx context.Context, samples []int16, sampleRate int) error
}

// Synthesizer speaks replies aloud. Speak cancels the utterance in
// progress before starting a new one.
type Synthesizer struct {
	tts    *TTSClient
	out    PlaybackDevice
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewSynthesizer(tts *TTSClient, out PlaybackDevice, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		tts:    tts,
		out:    out,
		logger: logger,
	}
}

func (s *Synthesizer) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	wav, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("synthesizing: %w", err)
	}

	samples, rate, err := audio.DecodeWAV(wav)
	if err != nil {
		return fmt.Errorf("decoding TTS audio: %w", err)
	}

	if err := s.out.Play(ctx, samples, rate); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("playing: %w", err)
	}
	return nil
}
