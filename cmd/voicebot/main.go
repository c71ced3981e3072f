package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"voicebot/config"
	"voicebot/internal/application"
	"voicebot/internal/conversation"
	"voicebot/internal/infra/audio"
	"voicebot/internal/infra/backendapi"
	"voicebot/internal/infra/speech"
	"voicebot/internal/infra/stream"
	"voicebot/internal/infra/whisper"
	"voicebot/internal/ui"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	interactive := isatty.IsTerminal(os.Stdout.Fd())
	logger, logClose := setupLogger(cfg.Log, interactive)
	defer logClose()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	backend := backendapi.NewClient(cfg.Backend.BaseURL)
	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	if err := backend.Ping(pingCtx); err != nil {
		logger.Warn("backend not reachable yet", "url", cfg.Backend.BaseURL, "error", err)
	}
	pingCancel()

	mic := audio.NewMicrophone(cfg.Audio.SampleRate, logger)

	var transcriber application.Transcriber = &application.NoopTranscriber{}
	if cfg.Whisper.APIKey != "" {
		transcriber = whisper.NewClient(cfg.Whisper.APIKey, cfg.Whisper.Language)
	}

	recognizer := createRecognizer(cfg, mic, transcriber, logger)
	synth := createSynthesizer(cfg.TTS, logger)
	sources := createSources(cfg.Audio, logger)

	assistant := application.NewAssistant(
		conversation.NewStore(),
		recognizer,
		synth,
		backend,
		transcriber,
		sources,
		logger,
	)

	logger.Info("starting voice bot",
		"backend", cfg.Backend.BaseURL,
		"recognizer", cfg.Recognizer.Mode,
		"source", cfg.Audio.Source,
	)

	go func() {
		if err := assistant.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("assistant error", "error", err)
		}
	}()

	if interactive {
		program := tea.NewProgram(ui.NewModel(ctx, assistant, backend), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			logger.Error("ui error", "error", err)
			os.Exit(1)
		}
		cancel()
		return
	}

	ui.RunHeadless(ctx, assistant, logger)
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}

func createRecognizer(cfg *config.Config, mic audio.FrameReader, transcriber application.Transcriber, logger *slog.Logger) application.Recognizer {
	switch cfg.Recognizer.Mode {
	case "whisper":
		return audio.NewCaptureRecognizer(mic, transcriber, cfg.Audio.SampleRate, logger)
	case "stream":
		return stream.NewRecognizer(stream.Config{
			URL:        cfg.Recognizer.StreamURL,
			APIKey:     cfg.Recognizer.APIKey,
			Language:   cfg.Recognizer.Language,
			SampleRate: cfg.Audio.SampleRate,
		}, mic, logger)
	default:
		logger.Warn("unknown recognizer mode, using stream", "mode", cfg.Recognizer.Mode)
		return stream.NewRecognizer(stream.Config{
			URL:        cfg.Recognizer.StreamURL,
			APIKey:     cfg.Recognizer.APIKey,
			Language:   cfg.Recognizer.Language,
			SampleRate: cfg.Audio.SampleRate,
		}, mic, logger)
	}
}

func createSynthesizer(cfg config.TTSConfig, logger *slog.Logger) application.Synthesizer {
	if !cfg.Enabled {
		return &application.NoopSynthesizer{}
	}
	tts := speech.NewTTSClient(cfg.BaseURL, cfg.Voice, cfg.Language)
	return speech.NewSynthesizer(tts, audio.NewSpeaker(logger), logger)
}

func createSources(cfg config.AudioConfig, logger *slog.Logger) []application.InputSource {
	switch cfg.Source {
	case "remote":
		return []application.InputSource{audio.NewRemoteSource(cfg.RemoteAddr, cfg.AuthToken, logger)}
	case "file":
		return []application.InputSource{audio.NewFileSource(cfg.FileDir)}
	case "none":
		return nil
	default:
		logger.Warn("unknown audio source, none configured", "source", cfg.Source)
		return nil
	}
}

func setupLogger(cfg config.LogConfig, interactive bool) (*slog.Logger, func()) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	// The TUI owns the terminal, so interactive runs log to a file.
	var out io.Writer = os.Stdout
	closeFn := func() {}
	if interactive {
		f, err := os.OpenFile("voicebot.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			out = f
			closeFn = func() { f.Close() }
		} else {
			out = io.Discard
		}
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closeFn
}
