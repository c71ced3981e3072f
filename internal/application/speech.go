package application

import (
	"context"
	"fmt"
)

// Transcriber converts one captured WAV utterance to text. Used by
// input sources that deliver whole recordings rather than live streams.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// NoopTranscriber is a no-op transcriber for text-only sources. It
// returns an error if called with actual audio data.
type NoopTranscriber struct{}

func (n *NoopTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return "", fmt.Errorf("speech-to-text not configured: set whisper.api_key to enable audio transcription")
}
