package whisper_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"voicebot/internal/infra/whisper"
)

func TestClient_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language field: got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "what are your business hours"})
	}))
	defer server.Close()

	client := whisper.NewClientWithURL("test-key", "en", server.URL)

	text, err := client.Transcribe(context.Background(), []byte("fake wav bytes"))
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
	if text != "what are your business hours" {
		t.Errorf("text: got %q", text)
	}
}

func TestClient_TranscribeRetriesOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "hello"})
	}))
	defer server.Close()

	client := whisper.NewClientWithURL("test-key", "en", server.URL)

	text, err := client.Transcribe(context.Background(), []byte("audio"))
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
	if text != "hello" {
		t.Errorf("text: got %q", text)
	}
	if calls != 2 {
		t.Errorf("calls: got %d, want 2", calls)
	}
}
