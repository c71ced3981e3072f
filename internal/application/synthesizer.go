package application

import "context"

// Synthesizer speaks text aloud. Speak cancels any utterance already in
// progress, so at most one is audible at a time. Failures are logged by
// callers, never surfaced to the user.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// NoopSynthesizer is used when no playback device or TTS endpoint is
// configured.
type NoopSynthesizer struct{}

func (n *NoopSynthesizer) Speak(_ context.Context, _ string) error {
	return nil
}
