package domain

import "time"

// TokenPair is the result of a successful signin or refresh. Either both
// tokens are present or the operation failed; no partial pairs.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration // access token lifetime
}

// RegistryEntry is one row of the refresh-token registry: the server-side
// liveness record for an otherwise self-certifying refresh token.
type RegistryEntry struct {
	TokenHash string // sha256 fingerprint of the refresh token
	UserID    string
	ExpiresAt time.Time // numerically equal to the signed claim expiry
}
