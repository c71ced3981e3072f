// Package stream implements the live recognizer: microphone frames go
// out over a WebSocket to a streaming speech-to-text service, interim
// and final transcripts come back. One utterance per session; the
// server's endpointing decides when speech is final.
package stream

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"voicebot/internal/application"
	"voicebot/internal/infra/audio"
)

type Config struct {
	URL        string
	APIKey     string
	Language   string
	SampleRate int
}

type Recognizer struct {
	cfg    Config
	mic    audio.FrameReader
	dialer *websocket.Dialer
	logger *slog.Logger

	mu     sync.Mutex
	active bool
	stop   chan struct{}
	events chan application.RecognitionEvent
}

func NewRecognizer(cfg Config, mic audio.FrameReader, logger *slog.Logger) *Recognizer {
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	return &Recognizer{
		cfg: cfg,
		mic: mic,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logger,
		events: make(chan application.RecognitionEvent, 16),
	}
}

func (r *Recognizer) Events() <-chan application.RecognitionEvent {
	return r.events
}

// serverMessage is one transcript frame from the recognition service.
type serverMessage struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
	Error   string `json:"error,omitempty"`
}

type controlMessage struct {
	Type string `json:"type"`
}

func (r *Recognizer) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return nil
	}
	if err := r.mic.Start(ctx); err != nil {
		r.mu.Unlock()
		return err
	}

	conn, err := r.dial(ctx)
	if err != nil {
		r.mic.Stop()
		r.mu.Unlock()
		return err
	}

	r.active = true
	r.stop = make(chan struct{})
	stop := r.stop
	r.mu.Unlock()

	go r.run(ctx, conn, stop)
	return nil
}

func (r *Recognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return nil
	}
	r.closeStopLocked()
	return nil
}

func (r *Recognizer) closeStopLocked() {
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
}

func (r *Recognizer) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(r.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing recognizer URL: %w", err)
	}
	q := u.Query()
	q.Set("language", r.cfg.Language)
	q.Set("sample_rate", strconv.Itoa(r.cfg.SampleRate))
	q.Set("interim_results", "true")
	u.RawQuery = q.Encode()

	header := http.Header{}
	if r.cfg.APIKey != "" {
		header.Set("Authorization", "Token "+r.cfg.APIKey)
	}

	conn, _, err := r.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("dialing recognizer: %w", err)
	}
	return conn, nil
}

func (r *Recognizer) run(ctx context.Context, conn *websocket.Conn, stop chan struct{}) {
	defer func() {
		conn.Close()
		r.mic.Stop()
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
	}()

	writeDone := make(chan struct{})
	go r.writeLoop(ctx, conn, stop, writeDone)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// Normal closure without a final means the utterance ended
			// empty; that is still a clean end of session.
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || ctx.Err() != nil {
				r.emit(application.RecognitionEvent{Kind: application.EventEnd})
			} else {
				r.emit(application.RecognitionEvent{Kind: application.EventError, Err: fmt.Errorf("recognizer stream: %w", err)})
			}
			return
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			r.logger.Warn("undecodable recognizer message", "error", err)
			continue
		}

		if msg.Error != "" {
			r.emit(application.RecognitionEvent{Kind: application.EventError, Err: fmt.Errorf("recognizer: %s", msg.Error)})
			return
		}

		if msg.IsFinal {
			r.emit(application.RecognitionEvent{Kind: application.EventFinal, Text: msg.Text})
			// One utterance per session: stopping the write loop makes
			// it send CloseStream so the server wraps up.
			r.mu.Lock()
			r.closeStopLocked()
			r.mu.Unlock()
			<-writeDone
			r.emit(application.RecognitionEvent{Kind: application.EventEnd})
			return
		}

		r.emit(application.RecognitionEvent{Kind: application.EventInterim, Text: msg.Text})
	}
}

func (r *Recognizer) writeLoop(ctx context.Context, conn *websocket.Conn, stop chan struct{}, done chan struct{}) {
	defer close(done)

	frame := make([]int16, r.mic.FrameSize())
	buf := make([]byte, len(frame)*2)

	for {
		select {
		case <-ctx.Done():
			r.requestClose(conn)
			return
		case <-stop:
			r.requestClose(conn)
			return
		default:
		}

		if err := r.mic.ReadFrame(frame); err != nil {
			r.logger.Error("reading microphone frame", "error", err)
			r.requestClose(conn)
			return
		}
		for i, s := range frame {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, buf); err != nil {
			return
		}
	}
}

// requestClose tells the server no more audio is coming, so it flushes
// whatever final transcript it has accumulated. Only the write loop
// calls this; gorilla connections allow a single concurrent writer.
func (r *Recognizer) requestClose(conn *websocket.Conn) {
	payload, _ := json.Marshal(controlMessage{Type: "CloseStream"})
	conn.WriteMessage(websocket.TextMessage, payload)
}

func (r *Recognizer) emit(ev application.RecognitionEvent) {
	select {
	case r.events <- ev:
	default:
		r.logger.Warn("dropping recognition event, consumer too slow", "kind", ev.Kind)
	}
}
