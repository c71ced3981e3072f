//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"log/slog"

	"voicebot/internal/domain"
)

type Speaker struct{}

func NewSpeaker(logger *slog.Logger) *Speaker {
	logger.Warn("built without portaudio, audio playback disabled")
	return &Speaker{}
}

func (s *Speaker) Play(_ context.Context, _ []int16, _ int) error {
	return domain.ErrUnsupported
}
