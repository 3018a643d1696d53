package domain

import "time"

// AccessLevel is the credential's capability tier.
type AccessLevel string

const (
	AccessLevelAdmin AccessLevel = "admin"
	AccessLevelUser  AccessLevel = "user"
)

// Valid reports whether the level is one of the known tiers.
func (l AccessLevel) Valid() bool {
	return l == AccessLevelAdmin || l == AccessLevelUser
}

func (l AccessLevel) String() string { return string(l) }

type User struct {
	ID           string
	Name         string
	Email        string // unique, stored lowercase
	PasswordHash string // argon2id PHC encoded; computed once at creation
	AccessLevel  AccessLevel
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
