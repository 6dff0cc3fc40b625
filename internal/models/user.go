package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an identity registered with the password authenticator.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Profile is the per-user document created on first sign-in.
type Profile struct {
	// ID equals the identity's user ID.
	ID string

	Email string

	// FamilyID is empty until the user creates or joins a family.
	FamilyID string

	CreatedAt time.Time
}

// HasFamily reports whether the profile points at a family.
func (p *Profile) HasFamily() bool {
	return p != nil && p.FamilyID != ""
}
