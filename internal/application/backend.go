package application

import (
	"context"

	"voicebot/internal/domain"
)

// QueryService is the remote interpreter: one request per finalized
// utterance, no retry, response awaited before the turn completes.
type QueryService interface {
	Process(ctx context.Context, text string) (domain.Reply, error)
	Stats(ctx context.Context) (domain.Stats, error)
}
