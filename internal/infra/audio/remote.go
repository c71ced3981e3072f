package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"voicebot/internal/application"
)

// RemoteSource accepts utterances pushed over HTTP, so a phone shortcut
// or another machine can act as the microphone. Text posts skip
// transcription; audio posts carry a recorded WAV clip.
type RemoteSource struct {
	addr        string
	server      *http.Server
	utterances  chan application.Utterance
	logger      *slog.Logger
	mu          sync.Mutex
	running     bool
	mux         *http.ServeMux
	closeOnce   sync.Once
	rateLimiter *RateLimiter
	authToken   string
}

func NewRemoteSource(addr string, authToken string, logger *slog.Logger) *RemoteSource {
	r := &RemoteSource{
		addr:        addr,
		utterances:  make(chan application.Utterance, 10),
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(30, time.Minute), // 30 requests per minute per IP
		authToken:   authToken,
	}
	r.mux.HandleFunc("POST /utterance", r.rateLimiter.Middleware(r.withAuth(r.handleText)))
	r.mux.HandleFunc("POST /audio", r.rateLimiter.Middleware(r.withAuth(r.handleAudio)))
	// No rate limiting on health check
	r.mux.HandleFunc("GET /health", r.handleHealth)
	return r
}

func (r *RemoteSource) Name() string {
	return "remote"
}

func (r *RemoteSource) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	r.server = &http.Server{
		Addr:         r.addr,
		Handler:      r.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		r.logger.Info("remote utterance server starting", "addr", r.addr)
		if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("remote utterance server error", "error", err)
		}
	}()

	r.running = true
	return nil
}

func (r *RemoteSource) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return nil
	}

	if r.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.server.Shutdown(ctx); err != nil {
			r.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := r.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	r.closeOnce.Do(func() {
		close(r.utterances)
	})
	r.running = false
	return nil
}

func (r *RemoteSource) Next(ctx context.Context) (application.Utterance, error) {
	select {
	case <-ctx.Done():
		return application.Utterance{}, ctx.Err()
	case utt, ok := <-r.utterances:
		if !ok {
			return application.Utterance{}, fmt.Errorf("utterance channel closed")
		}
		return utt, nil
	}
}

// Handler exposes the mux for tests.
func (r *RemoteSource) Handler() http.Handler {
	return r.mux
}

func (r *RemoteSource) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if r.authToken != "" {
			token := req.Header.Get("X-Auth-Token")
			if token == "" {
				token = req.URL.Query().Get("token")
			}
			if token != r.authToken {
				r.logger.Warn("unauthorized remote request", "remote_addr", req.RemoteAddr)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, req)
	}
}

func (r *RemoteSource) handleText(w http.ResponseWriter, req *http.Request) {
	data, err := io.ReadAll(io.LimitReader(req.Body, 4096))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer req.Body.Close()

	text := string(data)
	if text == "" {
		http.Error(w, "empty text", http.StatusBadRequest)
		return
	}

	select {
	case r.utterances <- application.Utterance{Text: text}:
		r.logger.Info("received text utterance via HTTP", "text", text)
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprint(w, `{"status":"received"}`)
	default:
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
	}
}

func (r *RemoteSource) handleAudio(w http.ResponseWriter, req *http.Request) {
	data, err := io.ReadAll(io.LimitReader(req.Body, 10*1024*1024))
	if err != nil {
		r.logger.Error("reading audio body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer req.Body.Close()

	if len(data) == 0 {
		http.Error(w, "empty audio", http.StatusBadRequest)
		return
	}

	select {
	case r.utterances <- application.Utterance{Audio: data}:
		r.logger.Info("received audio utterance via HTTP", "bytes", len(data))
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprintf(w, `{"status":"received","bytes":%d}`, len(data))
	default:
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
	}
}

func (r *RemoteSource) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}
