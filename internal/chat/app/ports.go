package app

import (
	"context"

	"github.com/pcreem/silver-ESG/internal/backend"
)

// Streamer delivers the assistant reply as an incremental byte stream.
type Streamer interface {
	StreamChat(ctx context.Context, req backend.ChatRequest, onChunk func(chunk string) error) (string, error)
}

// SessionReader gates chat behind sign-in.
type SessionReader interface {
	IsAuthenticated() bool
}
