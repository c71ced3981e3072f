package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voicebot/internal/domain"
)

// Client talks to the voice bot query backend. It deliberately does not
// retry: one utterance, one request, and any failure is reported to the
// user as a chat message instead.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type queryRequest struct {
	Text string `json:"text"`
}

type queryResponse struct {
	ResponseText string `json:"response_text"`
	Intent       string `json:"intent"`
	ActionTaken  string `json:"action_taken"`
}

type statsResponse struct {
	TotalFAQs  int `json:"total_faqs"`
	TotalUsers int `json:"total_users"`
}

func (c *Client) Process(ctx context.Context, text string) (domain.Reply, error) {
	bodyBytes, err := json.Marshal(queryRequest{Text: text})
	if err != nil {
		return domain.Reply{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/process-query", bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.Reply{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Reply{}, &domain.BackendError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Reply{}, &domain.BackendError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("process-query: %s", string(respBody)),
		}
	}

	var result queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.Reply{}, &domain.BackendError{Err: fmt.Errorf("decoding response: %w", err)}
	}

	return domain.Reply{
		Text:        result.ResponseText,
		Intent:      result.Intent,
		ActionTaken: result.ActionTaken,
	}, nil
}

func (c *Client) Stats(ctx context.Context) (domain.Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/stats", nil)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Stats{}, &domain.BackendError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Stats{}, &domain.BackendError{Status: resp.StatusCode, Err: fmt.Errorf("stats")}
	}

	var result statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.Stats{}, &domain.BackendError{Err: fmt.Errorf("decoding stats: %w", err)}
	}

	return domain.Stats{TotalFAQs: result.TotalFAQs, TotalUsers: result.TotalUsers}, nil
}

// Ping probes the backend root endpoint, used at startup to log whether
// the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.BackendError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.BackendError{Status: resp.StatusCode, Err: fmt.Errorf("ping")}
	}
	return nil
}
