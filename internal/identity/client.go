// Package identity talks to the hosted identity provider (a GoTrue-style
// auth service): password sign-in, sign-up, sign-out, session rehydration and
// refresh, plus the auth-state change feed the session cache subscribes to.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const storedSessionKey = "sb-session"

// refreshSkew is how long before expiry a session counts as stale.
const refreshSkew = 30 * time.Second

var ErrNoSession = errors.New("identity: no session")

// Storage persists the provider session across restarts.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	storage Storage
	log     *slog.Logger

	mu       sync.Mutex
	current  *Session
	nextSub  int
	subs     map[int]Listener
	subOrder []int

	now func() time.Time
}

func NewClient(baseURL, anonKey string, st Storage, log *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		storage: st,
		log:     log,
		subs:    make(map[int]Listener),
		now:     time.Now,
	}
}

// OnAuthStateChange registers a listener for the life of the client. The
// returned func removes it; calling it more than once is harmless.
func (c *Client) OnAuthStateChange(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subOrder = append(c.subOrder, id)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// GetSession returns the current session, rehydrating from durable storage
// and refreshing a stale token as needed. (nil, nil) means signed out.
func (c *Client) GetSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()

	if s == nil {
		s = c.loadStored()
		if s == nil {
			return nil, nil
		}
	}

	if s.Expired(c.now().Add(refreshSkew)) {
		if s.RefreshToken == "" {
			return nil, nil
		}
		return c.RefreshSession(ctx, s.RefreshToken)
	}

	c.setCurrent(s)
	return s, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}

	s, err := c.tokenRequest(ctx, "/auth/v1/token?grant_type=password", body)
	if err != nil {
		return nil, err
	}

	c.setCurrent(s)
	c.persist(s)
	c.emit(EventSignedIn, s)

	return s, nil
}

// SignUp registers the account. Providers that require email confirmation
// answer without a session; the caller signs in after confirming.
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (*Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"full_name": fullName},
	}

	resp, err := c.post(ctx, "/auth/v1/signup", body, "")
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp, &tr); err != nil {
		return nil, fmt.Errorf("identity: decode signup response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, nil
	}

	s := tr.session(c.now())
	c.setCurrent(s)
	c.persist(s)
	c.emit(EventSignedIn, s)

	return s, nil
}

// SignOut revokes the session server-side and always clears local state,
// even when the revoke call fails.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := ""
	if c.current != nil {
		token = c.current.AccessToken
	}
	c.current = nil
	c.mu.Unlock()

	if err := c.storage.Delete(storedSessionKey); err != nil {
		c.log.Warn("stored session delete failed", slog.Any("err", err))
	}

	var revokeErr error
	if token != "" {
		_, revokeErr = c.post(ctx, "/auth/v1/logout", nil, token)
	}

	c.emit(EventSignedOut, nil)
	return revokeErr
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}

	s, err := c.tokenRequest(ctx, "/auth/v1/token?grant_type=refresh_token", body)
	if err != nil {
		return nil, err
	}

	c.setCurrent(s)
	c.persist(s)
	c.emit(EventTokenRefreshed, s)

	return s, nil
}

// AutoRefresh keeps the session fresh until ctx is cancelled. Meant for
// long-lived interactive use; one-shot commands don't need it.
func (c *Client) AutoRefresh(ctx context.Context) {
	for {
		c.mu.Lock()
		s := c.current
		c.mu.Unlock()

		if s == nil {
			return
		}

		wait := s.ExpiresAt.Sub(c.now()) - refreshSkew
		if wait < time.Second {
			wait = time.Second
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if _, err := c.RefreshSession(ctx, s.RefreshToken); err != nil {
			c.log.Warn("token refresh failed", slog.Any("err", err))
			return
		}
	}
}

func (c *Client) setCurrent(s *Session) {
	c.mu.Lock()
	c.current = s
	c.mu.Unlock()
}

func (c *Client) persist(s *Session) {
	b, err := json.Marshal(s)
	if err != nil {
		c.log.Error("session marshal failed", slog.Any("err", err))
		return
	}
	if err := c.storage.Set(storedSessionKey, b); err != nil {
		c.log.Warn("session persist failed", slog.Any("err", err))
	}
}

func (c *Client) loadStored() *Session {
	b, err := c.storage.Get(storedSessionKey)
	if err != nil {
		return nil
	}

	var s Session
	if err := json.Unmarshal(b, &s); err != nil || s.AccessToken == "" {
		return nil
	}
	return &s
}

func (c *Client) emit(event string, s *Session) {
	c.mu.Lock()
	fns := make([]Listener, 0, len(c.subs))
	for _, id := range c.subOrder {
		if fn, ok := c.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(event, s)
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		UserMetadata struct {
			FullName string `json:"full_name"`
		} `json:"user_metadata"`
	} `json:"user"`
}

func (tr tokenResponse) session(now time.Time) *Session {
	expiresAt := time.Time{}
	if tr.ExpiresIn > 0 {
		expiresAt = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	} else if exp, ok := tokenExpiry(tr.AccessToken); ok {
		expiresAt = exp
	}

	return &Session{
		User: User{
			ID:       tr.User.ID,
			Email:    tr.User.Email,
			FullName: tr.User.UserMetadata.FullName,
		},
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    expiresAt,
	}
}

func (c *Client) tokenRequest(ctx context.Context, path string, body any) (*Session, error) {
	resp, err := c.post(ctx, path, body, "")
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp, &tr); err != nil {
		return nil, fmt.Errorf("identity: decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, ErrNoSession
	}

	return tr.session(c.now()), nil
}

func (c *Client) post(ctx context.Context, path string, body any, bearer string) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("identity: %s: %s", resp.Status, providerMessage(raw))
	}

	return raw, nil
}

func providerMessage(raw []byte) string {
	var e struct {
		Msg         string `json:"msg"`
		Message     string `json:"message"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &e); err == nil {
		switch {
		case e.Msg != "":
			return e.Msg
		case e.Message != "":
			return e.Message
		case e.Description != "":
			return e.Description
		}
	}
	return "request failed"
}
