package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/pricediary/internal/models"
)

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.q.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt.Unix(),
		user.UpdatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = ?
	`

	user, err := scanUser(s.q.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	user, err := scanUser(s.q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var createdAt, updatedAt int64
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	user.CreatedAt = fromUnix(createdAt)
	user.UpdatedAt = fromUnix(updatedAt)
	return user, nil
}

// GetProfile retrieves a profile by user ID.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile := &models.Profile{}
	var familyID sql.NullString
	var createdAt int64

	err := s.q.QueryRowContext(ctx,
		"SELECT id, email, family_id, created_at FROM profiles WHERE id = ?",
		userID,
	).Scan(&profile.ID, &profile.Email, &familyID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.FamilyID = familyID.String
	profile.CreatedAt = fromUnix(createdAt)
	return profile, nil
}

// CreateProfile inserts a new profile.
func (s *SQLiteStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	profile.CreatedAt = s.timestamp()

	_, err := s.q.ExecContext(ctx,
		"INSERT INTO profiles (id, email, family_id, created_at) VALUES (?, ?, ?, ?)",
		profile.ID, profile.Email, nullString(profile.FamilyID), profile.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// SetProfileFamily merges the family ID into the profile, creating it if missing.
func (s *SQLiteStore) SetProfileFamily(ctx context.Context, userID, familyID string) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO profiles (id, email, family_id, created_at) VALUES (?, '', ?, ?)
		 ON CONFLICT(id) DO UPDATE SET family_id = excluded.family_id`,
		userID, nullString(familyID), s.timestamp().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to set profile family: %w", err)
	}
	return nil
}
