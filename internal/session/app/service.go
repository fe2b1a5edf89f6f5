package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pcreem/silver-ESG/internal/identity"
	"github.com/pcreem/silver-ESG/internal/session/domain"
	"github.com/pcreem/silver-ESG/internal/storage"
)

// persistedState is what survives restarts under the auth-storage key.
type persistedState struct {
	User          *domain.User `json:"user"`
	Authenticated bool         `json:"isAuthenticated"`
}

// Cache mirrors the identity provider's session into process-wide state so
// any component can read "am I logged in and what is my token" synchronously.
type Cache struct {
	provider Provider
	sink     TokenSink
	storage  Storage
	log      *slog.Logger

	mu            sync.Mutex
	user          *domain.User
	token         string
	authenticated bool
	initialized   bool
	unsubscribe   func()
}

func NewCache(provider Provider, sink TokenSink, st Storage, log *slog.Logger) *Cache {
	return &Cache{
		provider: provider,
		sink:     sink,
		storage:  st,
		log:      log,
	}
}

// Initialize asks the provider for the current session and registers the
// standing auth-state subscription. A second call is a no-op.
func (c *Cache) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.initialized = true
	c.mu.Unlock()

	c.unsubscribe = c.provider.OnAuthStateChange(c.handleAuthChange)

	s, err := c.provider.GetSession(ctx)
	if err != nil {
		return err
	}
	if s != nil {
		c.apply(s)
	}

	return nil
}

// Close tears down the provider subscription. Safe to call without Initialize.
func (c *Cache) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// Login installs verified identity data directly, skipping the provider
// round-trip (used right after a sign-in form succeeds).
func (c *Cache) Login(u domain.User) {
	c.mu.Lock()
	c.user = &u
	c.authenticated = true
	c.mu.Unlock()

	c.persistUser()
}

func (c *Cache) SetUser(u *domain.User) {
	c.mu.Lock()
	c.user = u
	c.authenticated = u != nil
	c.mu.Unlock()

	c.persistUser()
}

// Logout clears the session and the propagated token.
func (c *Cache) Logout() {
	c.clear()
}

func (c *Cache) User() (domain.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return domain.User{}, false
	}
	return *c.user, true
}

func (c *Cache) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Cache) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

func (c *Cache) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// handleAuthChange is the standing subscription. Events with a session
// populate the cache; SIGNED_OUT clears it. The provider dispatches
// synchronously, so token propagation happens before control returns to
// whatever triggered the change.
func (c *Cache) handleAuthChange(event string, s *identity.Session) {
	switch event {
	case identity.EventSignedIn, identity.EventInitialSession, identity.EventTokenRefreshed:
		if s != nil {
			c.apply(s)
		}
	case identity.EventSignedOut:
		c.clear()
	}
}

func (c *Cache) apply(s *identity.Session) {
	u := &domain.User{
		ID:    s.User.ID,
		Email: s.User.Email,
		Name:  s.User.DisplayName(),
	}

	c.mu.Lock()
	c.user = u
	c.token = s.AccessToken
	c.authenticated = true
	c.mu.Unlock()

	c.sink.SetToken(s.AccessToken)

	if err := c.storage.Set(storage.KeyAuthToken, []byte(s.AccessToken)); err != nil {
		c.log.Warn("token persist failed", slog.Any("err", err))
	}
	c.persistUser()
}

func (c *Cache) clear() {
	c.mu.Lock()
	c.user = nil
	c.token = ""
	c.authenticated = false
	c.mu.Unlock()

	c.sink.ClearToken()

	if err := c.storage.Delete(storage.KeyAuthToken); err != nil {
		c.log.Warn("token delete failed", slog.Any("err", err))
	}
	c.persistUser()
}

func (c *Cache) persistUser() {
	c.mu.Lock()
	state := persistedState{User: c.user, Authenticated: c.authenticated}
	c.mu.Unlock()

	b, err := json.Marshal(state)
	if err != nil {
		c.log.Error("auth state marshal failed", slog.Any("err", err))
		return
	}
	if err := c.storage.Set(storage.KeyAuthUser, b); err != nil {
		c.log.Warn("auth state persist failed", slog.Any("err", err))
	}
}
