package identity

// Auth-state events, delivered to every subscriber in registration order and
// on the caller's goroutine. Synchronous dispatch is load-bearing: the session
// cache must propagate a new token before any later request goes out.
const (
	EventSignedIn       = "SIGNED_IN"
	EventSignedOut      = "SIGNED_OUT"
	EventTokenRefreshed = "TOKEN_REFRESHED"
	EventInitialSession = "INITIAL_SESSION"
)

// Listener receives auth-state changes. Session is nil for SIGNED_OUT.
type Listener func(event string, s *Session)
