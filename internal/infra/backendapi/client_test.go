package backendapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"voicebot/internal/domain"
	"voicebot/internal/infra/backendapi"
)

func TestClient_Process(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/process-query" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"response_text": "We are open 9 to 5.",
			"intent":        "get_hours",
			"action_taken":  "Retrieved business hours",
		})
	}))
	defer server.Close()

	client := backendapi.NewClient(server.URL)

	reply, err := client.Process(context.Background(), "What are your business hours?")
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}

	if gotBody["text"] != "What are your business hours?" {
		t.Errorf("request body text: got %q", gotBody["text"])
	}
	if reply.Text != "We are open 9 to 5." {
		t.Errorf("reply text: got %q", reply.Text)
	}
	if reply.Intent != "get_hours" {
		t.Errorf("intent: got %q", reply.Intent)
	}
	if reply.ActionTaken != "Retrieved business hours" {
		t.Errorf("action: got %q", reply.ActionTaken)
	}
}

func TestClient_ProcessServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := backendapi.NewClient(server.URL)

	_, err := client.Process(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}

	var backendErr *domain.BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("error type: got %T", err)
	}
	if backendErr.Status != http.StatusInternalServerError {
		t.Errorf("status: got %d", backendErr.Status)
	}
	if calls != 1 {
		t.Errorf("request count: got %d, want 1 (no retry)", calls)
	}
}

func TestClient_ProcessNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := backendapi.NewClient(server.URL)

	_, err := client.Process(context.Background(), "hello")
	var backendErr *domain.BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("error type: got %T (%v)", err, err)
	}
}

func TestClient_Stats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stats" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]int{"total_faqs": 12, "total_users": 3})
	}))
	defer server.Close()

	client := backendapi.NewClient(server.URL)

	stats, err := client.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.TotalFAQs != 12 || stats.TotalUsers != 3 {
		t.Errorf("stats: %+v", stats)
	}
}
