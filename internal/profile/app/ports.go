package app

import (
	"context"

	"github.com/pcreem/silver-ESG/internal/backend"
)

// Fetcher reads care-recipient profiles from the backend, which owns them;
// the client only caches the latest fetch.
type Fetcher interface {
	GetProfiles(ctx context.Context) ([]backend.Profile, error)
}
