package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. These are the contractual lifetimes for each token
// purpose and can be overridden through service configuration.
const (
	// DefaultAccessTokenTTL keeps access tokens short-lived; a revoked
	// session is stale for at most this long.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL bounds how long a session can survive without
	// an interactive signin.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultInviteTokenTTL bounds the redemption window of an
	// organization invitation.
	DefaultInviteTokenTTL = 24 * time.Hour
)

// Claims is the single claim shape signed by every codec. For access and
// refresh tokens the subject is the user id; for invitation tokens the
// subject is the organization id and Email carries the invited address.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user, or of the invitee for
	// invitation tokens.
	Email string `json:"email,omitempty"`

	// AccessLevel of the authenticated user ("admin" or "user").
	// Empty on invitation tokens.
	AccessLevel string `json:"access_level,omitempty"`
}

// NewClaims builds claims issued now. See NewClaimsAt.
func NewClaims(subject, email, accessLevel, issuer string, ttl time.Duration) Claims {
	return NewClaimsAt(subject, email, accessLevel, issuer, ttl, time.Now())
}

// NewClaimsAt builds claims with an explicit issue time. Tests use this to
// mint tokens from a simulated clock; production code should use NewClaims.
func NewClaimsAt(subject, email, accessLevel, issuer string, ttl time.Duration, now time.Time) Claims {
	now = now.UTC()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		Email:       email,
		AccessLevel: accessLevel,
	}
}

// newJTI returns a URL-safe random identifier for the "jti" claim so two
// otherwise identical tokens never serialize to the same string.
func newJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
