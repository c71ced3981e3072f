//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"log/slog"

	"voicebot/internal/domain"
)

// Microphone stub for builds without the portaudio tag. Start reports
// the missing capability; everything else degrades to no-ops.
type Microphone struct{}

func NewMicrophone(_ int, logger *slog.Logger) *Microphone {
	logger.Warn("built without portaudio, microphone capture disabled")
	return &Microphone{}
}

func (m *Microphone) Start(_ context.Context) error {
	return domain.ErrUnsupported
}

func (m *Microphone) Stop() error { return nil }

func (m *Microphone) ReadFrame(_ []int16) error {
	return domain.ErrUnsupported
}

func (m *Microphone) FrameSize() int { return 1024 }
