package identity

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the identity the provider vouches for.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// Session pairs the user with the bearer token the provider issued. Either
// every field is populated or the session does not exist.
type Session struct {
	User         User      `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// DisplayName falls back from the profile name to the email local part.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return "User"
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// tokenExpiry reads the exp claim without verifying the signature; the
// backend verifies, the client only schedules refreshes.
func tokenExpiry(accessToken string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}
