package models

import "time"

// Family is a group of users whose entries can be aggregated together.
//
// Membership lives in its own collection (FamilyMember) and is not kept
// transactionally in sync with Profile.FamilyID on every backend.
type Family struct {
	// ID is the unique identifier for the family (UUID format).
	ID string

	// OwnerID is the user who created the family.
	OwnerID string

	CreatedAt time.Time
}

// FamilyMember is one membership record of a family.
type FamilyMember struct {
	FamilyID string
	UserID   string
	JoinedAt time.Time
}
