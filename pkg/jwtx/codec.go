package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret = errors.New("jwtx: empty signing secret")

	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
)

// Codec signs and verifies HS256 tokens for a single purpose. Each purpose
// (access, refresh, invitation) gets its own Codec with its own secret and
// TTL so a token signed for one purpose can never verify under another.
//
// The secret is an explicit constructor argument rather than an ambient
// lookup so tests can inject distinct secrets per scenario.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewCodec returns a codec bound to one secret and TTL.
func NewCodec(secret, issuer string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Codec{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// TTL returns the configured claim lifetime. Callers that persist token
// state (the refresh registry) use this to keep the stored expiry
// numerically equal to the signed one.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue builds and signs claims in one step using the codec's TTL.
func (c *Codec) Issue(subject, email, accessLevel string) (string, Claims, error) {
	claims := NewClaims(subject, email, accessLevel, c.issuer, c.ttl)
	token, err := c.Sign(claims)
	return token, claims, err
}

// Sign serializes and signs the given claims. Pure function of its inputs;
// no side effects.
func (c *Codec) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify parses the token, checks the signature against this codec's secret
// and validates the time window. Failures map onto the package sentinels so
// callers can collapse them into a single user-visible error.
func (c *Codec) Verify(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return Claims{}, ErrIssuer
	}
	return claims, nil
}

func (c *Codec) keyFunc(*jwt.Token) (any, error) { return c.secret, nil }

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	default:
		return ErrMalformed
	}
}
