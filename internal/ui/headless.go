package ui

import (
	"context"
	"log/slog"

	"voicebot/internal/application"
)

// RunHeadless mirrors the conversation to the log instead of drawing a
// TUI. Used when stdout is not a terminal; utterances then arrive only
// through the remote and file sources.
func RunHeadless(ctx context.Context, assistant *application.Assistant, logger *slog.Logger) {
	states := assistant.Store().Subscribe()
	seen := 0

	for {
		select {
		case <-ctx.Done():
			return
		case state := <-states:
			for _, msg := range state.Messages[seen:] {
				logger.Info("message",
					"sender", msg.Sender,
					"text", msg.Text,
					"intent", msg.Intent,
				)
			}
			seen = len(state.Messages)
			if state.Err != "" {
				logger.Warn("session error", "error", state.Err)
			}
		}
	}
}
