package speech_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"voicebot/internal/infra/audio"
	"voicebot/internal/infra/speech"
)

func ttsServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tts" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("text") == "" {
			http.Error(w, "missing text", http.StatusBadRequest)
			return
		}
		samples := make([]int16, 1600)
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(audio.EncodeWAV(samples, 16000))
	}))
}

type recordingDevice struct {
	mu      sync.Mutex
	played  int
	blockCh chan struct{} // when set, Play blocks until ctx is cancelled
	lastErr error
}

func (d *recordingDevice) Play(ctx context.Context, samples []int16, sampleRate int) error {
	d.mu.Lock()
	block := d.blockCh
	d.mu.Unlock()

	if block != nil {
		select {
		case <-ctx.Done():
			d.mu.Lock()
			d.lastErr = ctx.Err()
			d.mu.Unlock()
			return ctx.Err()
		case <-block:
		}
	}

	d.mu.Lock()
	d.played++
	d.mu.Unlock()
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSynthesizer_Speak(t *testing.T) {
	server := ttsServer(t)
	defer server.Close()

	device := &recordingDevice{}
	synth := speech.NewSynthesizer(speech.NewTTSClient(server.URL, "p225", "en"), device, discardLogger())

	if err := synth.Speak(context.Background(), "We are open 9 to 5."); err != nil {
		t.Fatalf("Speak error: %v", err)
	}

	device.mu.Lock()
	defer device.mu.Unlock()
	if device.played != 1 {
		t.Errorf("played: got %d, want 1", device.played)
	}
}

func TestSynthesizer_SecondSpeakCancelsFirst(t *testing.T) {
	server := ttsServer(t)
	defer server.Close()

	device := &recordingDevice{blockCh: make(chan struct{})}
	synth := speech.NewSynthesizer(speech.NewTTSClient(server.URL, "", ""), device, discardLogger())

	done := make(chan error, 1)
	go func() {
		done <- synth.Speak(context.Background(), "first utterance")
	}()

	// Wait until the first utterance is mid-playback.
	time.Sleep(100 * time.Millisecond)
	device.mu.Lock()
	device.blockCh = nil
	device.mu.Unlock()

	if err := synth.Speak(context.Background(), "second utterance"); err != nil {
		t.Fatalf("second Speak error: %v", err)
	}

	select {
	case err := <-done:
		// A cancelled utterance is not an error.
		if err != nil {
			t.Errorf("first Speak: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first Speak never returned")
	}

	device.mu.Lock()
	defer device.mu.Unlock()
	if device.played != 1 {
		t.Errorf("audible utterances: got %d, want only the second", device.played)
	}
}

func TestSynthesizer_TTSFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	device := &recordingDevice{}
	synth := speech.NewSynthesizer(speech.NewTTSClient(server.URL, "", ""), device, discardLogger())

	if err := synth.Speak(context.Background(), "hello"); err == nil {
		t.Fatal("expected synthesis error")
	}
	device.mu.Lock()
	defer device.mu.Unlock()
	if device.played != 0 {
		t.Errorf("nothing should play on synthesis failure, played=%d", device.played)
	}
}
