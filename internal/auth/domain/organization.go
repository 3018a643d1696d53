package domain

import (
	"slices"
	"time"
)

type Organization struct {
	ID          string
	Name        string // unique
	Description string
	CreatedBy   string // user id of the creator; only they may delete

	// MemberIDs is the membership set in join order. A user id appears at
	// most once.
	MemberIDs []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasMember reports whether userID is in the membership set.
func (o Organization) HasMember(userID string) bool {
	return slices.Contains(o.MemberIDs, userID)
}
