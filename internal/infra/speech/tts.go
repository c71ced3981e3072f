// Package speech implements the output adapter: text goes to a local
// TTS server (Coqui-style REST API), the returned WAV is played through
// the default output device. At most one utterance is audible; a new
// Speak cancels whatever is still playing.
package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// TTSClient synthesizes one utterance per request against a Coqui-style
// /api/tts endpoint that returns a WAV body.
type TTSClient struct {
	baseURL    string
	voice      string
	language   string
	httpClient *http.Client
}

func NewTTSClient(baseURL, voice, language string) *TTSClient {
	return &TTSClient{
		baseURL:    baseURL,
		voice:      voice,
		language:   language,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	u, err := url.Parse(c.baseURL + "/api/tts")
	if err != nil {
		return nil, fmt.Errorf("parsing TTS URL: %w", err)
	}
	q := u.Query()
	q.Set("text", text)
	if c.voice != "" {
		q.Set("speaker_id", c.voice)
	}
	if c.language != "" {
		q.Set("language_id", c.language)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("TTS error %d: %s", resp.StatusCode, string(respBody))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	return data, nil
}
