package application

import "context"

// Utterance is one finalized input item from an out-of-band source:
// either already-transcribed text or a recorded WAV clip.
type Utterance struct {
	Text  string
	Audio []byte
}

// InputSource feeds utterances that arrive outside the microphone
// press/release cycle, e.g. pushed over HTTP from a phone shortcut or
// read from a directory of recordings.
type InputSource interface {
	Start(ctx context.Context) error
	Stop() error
	Next(ctx context.Context) (Utterance, error)
	Name() string
}

type AudioFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func DefaultAudioFormat() AudioFormat {
	return AudioFormat{
		SampleRate: 16000,
		Channels:   1,
		BitDepth:   16,
	}
}
