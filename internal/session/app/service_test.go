package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pcreem/silver-ESG/internal/identity"
	"github.com/pcreem/silver-ESG/internal/session/domain"
	"github.com/pcreem/silver-ESG/internal/storage"
)

type fakeProvider struct {
	session     *identity.Session
	getCalls    int
	listener    identity.Listener
	unsubCalled bool
}

func (f *fakeProvider) GetSession(ctx context.Context) (*identity.Session, error) {
	f.getCalls++
	return f.session, nil
}

func (f *fakeProvider) OnAuthStateChange(fn identity.Listener) func() {
	f.listener = fn
	return func() { f.unsubCalled = true }
}

func (f *fakeProvider) emit(event string, s *identity.Session) {
	if f.listener != nil && !f.unsubCalled {
		f.listener(event, s)
	}
}

type fakeSink struct {
	token  string
	sets   int
	clears int
}

func (f *fakeSink) SetToken(token string) {
	f.token = token
	f.sets++
}

func (f *fakeSink) ClearToken() {
	f.token = ""
	f.clears++
}

type memStorage struct {
	data map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) Get(key string) ([]byte, error) {
	b, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return b, nil
}

func (m *memStorage) Set(key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memStorage) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func session(token string) *identity.Session {
	return &identity.Session{
		User:         identity.User{ID: "user-1", Email: "mei@example.com", FullName: "Mei Lin"},
		AccessToken:  token,
		RefreshToken: "rt-1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func TestInitializeWithSession(t *testing.T) {
	provider := &fakeProvider{session: session("at-1")}
	sink := &fakeSink{}
	st := newMemStorage()
	c := NewCache(provider, sink, st, discardLogger())

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if !c.Initialized() || !c.IsAuthenticated() {
		t.Fatal("expected initialized authenticated cache")
	}
	u, ok := c.User()
	if !ok || u.ID != "user-1" || u.Name != "Mei Lin" {
		t.Fatalf("unexpected user: %+v ok=%v", u, ok)
	}
	if c.Token() != "at-1" {
		t.Fatalf("expected token at-1, got %q", c.Token())
	}
	if sink.token != "at-1" {
		t.Fatalf("token not propagated to sink, got %q", sink.token)
	}
	if string(st.data[storage.KeyAuthToken]) != "at-1" {
		t.Fatal("token not persisted")
	}
	if provider.listener == nil {
		t.Fatal("standing subscription not registered")
	}
}

func TestInitializeWithoutSession(t *testing.T) {
	provider := &fakeProvider{}
	c := NewCache(provider, &fakeSink{}, newMemStorage(), discardLogger())

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if !c.Initialized() {
		t.Fatal("expected initialized")
	}
	if c.IsAuthenticated() {
		t.Fatal("expected unauthenticated")
	}
	if _, ok := c.User(); ok {
		t.Fatal("expected no user")
	}
}

func TestInitializeIdempotent(t *testing.T) {
	provider := &fakeProvider{session: session("at-1")}
	c := NewCache(provider, &fakeSink{}, newMemStorage(), discardLogger())

	_ = c.Initialize(context.Background())
	_ = c.Initialize(context.Background())

	if provider.getCalls != 1 {
		t.Fatalf("expected 1 provider call, got %d", provider.getCalls)
	}
}

func TestTokenRefreshedPropagatesNewToken(t *testing.T) {
	provider := &fakeProvider{session: session("at-1")}
	sink := &fakeSink{}
	c := NewCache(provider, sink, newMemStorage(), discardLogger())
	_ = c.Initialize(context.Background())

	provider.emit(identity.EventTokenRefreshed, session("at-2"))

	if c.Token() != "at-2" {
		t.Fatalf("expected at-2, got %q", c.Token())
	}
	if sink.token != "at-2" {
		t.Fatalf("sink still carries %q", sink.token)
	}
}

func TestSignedOutClearsEverything(t *testing.T) {
	provider := &fakeProvider{session: session("at-1")}
	sink := &fakeSink{}
	st := newMemStorage()
	c := NewCache(provider, sink, st, discardLogger())
	_ = c.Initialize(context.Background())

	provider.emit(identity.EventSignedOut, nil)

	if c.IsAuthenticated() {
		t.Fatal("expected unauthenticated")
	}
	if _, ok := c.User(); ok {
		t.Fatal("expected no user")
	}
	if c.Token() != "" {
		t.Fatalf("expected empty token, got %q", c.Token())
	}
	if sink.clears != 1 {
		t.Fatalf("expected 1 sink clear, got %d", sink.clears)
	}
	if _, ok := st.data[storage.KeyAuthToken]; ok {
		t.Fatal("persisted token not removed")
	}
}

func TestSignedInEventAfterInitialize(t *testing.T) {
	provider := &fakeProvider{}
	sink := &fakeSink{}
	c := NewCache(provider, sink, newMemStorage(), discardLogger())
	_ = c.Initialize(context.Background())

	provider.emit(identity.EventSignedIn, session("at-9"))

	if !c.IsAuthenticated() || c.Token() != "at-9" || sink.token != "at-9" {
		t.Fatalf("sign-in event not applied: token=%q sink=%q", c.Token(), sink.token)
	}
}

func TestEventWithNilSessionIgnored(t *testing.T) {
	provider := &fakeProvider{session: session("at-1")}
	c := NewCache(provider, &fakeSink{}, newMemStorage(), discardLogger())
	_ = c.Initialize(context.Background())

	provider.emit(identity.EventSignedIn, nil)

	// No partial session: the populated one stays.
	if c.Token() != "at-1" {
		t.Fatalf("expected at-1, got %q", c.Token())
	}
}

func TestLoginAndLogoutSetters(t *testing.T) {
	sink := &fakeSink{}
	c := NewCache(&fakeProvider{}, sink, newMemStorage(), discardLogger())

	c.Login(domain.User{ID: "u2", Email: "a@b.c", Name: "A"})
	if !c.IsAuthenticated() {
		t.Fatal("expected authenticated after Login")
	}

	c.Logout()
	if c.IsAuthenticated() {
		t.Fatal("expected unauthenticated after Logout")
	}
	if sink.clears != 1 {
		t.Fatalf("expected sink cleared on logout, got %d", sink.clears)
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	provider := &fakeProvider{session: session("at-1")}
	c := NewCache(provider, &fakeSink{}, newMemStorage(), discardLogger())
	_ = c.Initialize(context.Background())

	c.Close()

	if !provider.unsubCalled {
		t.Fatal("expected provider unsubscribe")
	}

	provider.emit(identity.EventTokenRefreshed, session("at-2"))
	if c.Token() != "at-1" {
		t.Fatalf("event applied after Close: %q", c.Token())
	}
}
