package app

import (
	"context"

	"github.com/pcreem/silver-ESG/internal/identity"
)

// Provider is the identity service the cache mirrors.
type Provider interface {
	GetSession(ctx context.Context) (*identity.Session, error)
	OnAuthStateChange(fn identity.Listener) func()
}

// TokenSink receives every token change before the triggering call returns,
// so no request can go out with a stale token.
type TokenSink interface {
	SetToken(token string)
	ClearToken()
}

// Storage persists the cached user and the raw access token.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
