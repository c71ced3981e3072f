package audio

import (
	"context"
	"log/slog"
	"sync"

	"voicebot/internal/application"
)

// FrameReader is the capture side of an audio device. Satisfied by
// Microphone in both the portaudio and stub builds.
type FrameReader interface {
	Start(ctx context.Context) error
	Stop() error
	ReadFrame(dst []int16) error
	FrameSize() int
}

const silenceThreshold = 500

// CaptureRecognizer is the push-to-talk recognizer: it records from the
// microphone until the control is released or a second of trailing
// silence, sends the clip to the transcriber, and emits a single final
// transcript. It never emits interims; the streaming recognizer covers
// that mode.
type CaptureRecognizer struct {
	mic         FrameReader
	transcriber application.Transcriber
	sampleRate  int
	logger      *slog.Logger

	mu     sync.Mutex
	active bool
	stop   chan struct{}
	events chan application.RecognitionEvent
}

func NewCaptureRecognizer(mic FrameReader, transcriber application.Transcriber, sampleRate int, logger *slog.Logger) *CaptureRecognizer {
	return &CaptureRecognizer{
		mic:         mic,
		transcriber: transcriber,
		sampleRate:  sampleRate,
		logger:      logger,
		events:      make(chan application.RecognitionEvent, 16),
	}
}

func (c *CaptureRecognizer) Events() <-chan application.RecognitionEvent {
	return c.events
}

func (c *CaptureRecognizer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return nil
	}
	if err := c.mic.Start(ctx); err != nil {
		c.mu.Unlock()
		return err
	}
	c.active = true
	c.stop = make(chan struct{})
	stop := c.stop
	c.mu.Unlock()

	go c.capture(ctx, stop)
	return nil
}

func (c *CaptureRecognizer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return nil
	}
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	return nil
}

func (c *CaptureRecognizer) capture(ctx context.Context, stop chan struct{}) {
	defer func() {
		c.mic.Stop()
		c.mu.Lock()
		c.active = false
		c.mu.Unlock()
	}()

	frameSize := c.mic.FrameSize()
	samples := make([]int16, 0, c.sampleRate*5)
	frame := make([]int16, frameSize)
	silentSamples := 0
	maxUtterance := c.sampleRate * 10

	for {
		select {
		case <-ctx.Done():
			c.emit(application.RecognitionEvent{Kind: application.EventEnd})
			return
		case <-stop:
			c.finalize(ctx, samples)
			return
		default:
		}

		if err := c.mic.ReadFrame(frame); err != nil {
			c.emit(application.RecognitionEvent{Kind: application.EventError, Err: err})
			return
		}
		samples = append(samples, frame...)

		if isSilent(frame) {
			silentSamples += frameSize
		} else {
			silentSamples = 0
		}

		// A second of trailing silence after at least a second of audio
		// ends the utterance, as does the hard length cap.
		if silentSamples > c.sampleRate && len(samples) > c.sampleRate {
			c.finalize(ctx, samples)
			return
		}
		if len(samples) > maxUtterance {
			c.finalize(ctx, samples)
			return
		}
	}
}

func (c *CaptureRecognizer) finalize(ctx context.Context, samples []int16) {
	// Anything shorter than a quarter second is never speech.
	if len(samples) < c.sampleRate/4 {
		c.emit(application.RecognitionEvent{Kind: application.EventEnd})
		return
	}

	text, err := c.transcriber.Transcribe(ctx, EncodeWAV(samples, c.sampleRate))
	if err != nil {
		c.emit(application.RecognitionEvent{Kind: application.EventError, Err: err})
		return
	}

	if text != "" {
		c.emit(application.RecognitionEvent{Kind: application.EventFinal, Text: text})
	}
	c.emit(application.RecognitionEvent{Kind: application.EventEnd})
}

func (c *CaptureRecognizer) emit(ev application.RecognitionEvent) {
	select {
	case c.events <- ev:
	default:
		c.logger.Warn("dropping recognition event, consumer too slow", "kind", ev.Kind)
	}
}

func isSilent(frame []int16) bool {
	for _, sample := range frame {
		if sample > silenceThreshold || sample < -silenceThreshold {
			return false
		}
	}
	return true
}
