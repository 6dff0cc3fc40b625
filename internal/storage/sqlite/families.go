package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/pricediary/internal/models"
	"github.com/mmynk/pricediary/internal/storage"
)

// CreateFamily persists a new family.
func (s *SQLiteStore) CreateFamily(ctx context.Context, family *models.Family) error {
	if family.ID == "" {
		family.ID = uuid.New().String()
	}
	family.CreatedAt = s.timestamp()

	_, err := s.q.ExecContext(ctx,
		"INSERT INTO families (id, owner_id, created_at) VALUES (?, ?, ?)",
		family.ID, family.OwnerID, family.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert family: %w", err)
	}
	return nil
}

// GetFamily retrieves a family by ID.
func (s *SQLiteStore) GetFamily(ctx context.Context, familyID string) (*models.Family, error) {
	family := &models.Family{}
	var createdAt int64

	err := s.q.QueryRowContext(ctx,
		"SELECT id, owner_id, created_at FROM families WHERE id = ?",
		familyID,
	).Scan(&family.ID, &family.OwnerID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("family %s: %w", familyID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	family.CreatedAt = fromUnix(createdAt)
	return family, nil
}

// UpsertFamilyMember writes a membership record, refreshing joined_at on repeat joins.
func (s *SQLiteStore) UpsertFamilyMember(ctx context.Context, familyID, userID string) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO family_members (family_id, user_id, joined_at) VALUES (?, ?, ?)
		 ON CONFLICT(family_id, user_id) DO UPDATE SET joined_at = excluded.joined_at`,
		familyID, userID, s.timestamp().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert family member: %w", err)
	}
	return nil
}

// ListFamilyMembers retrieves the membership collection of a family.
func (s *SQLiteStore) ListFamilyMembers(ctx context.Context, familyID string) ([]models.FamilyMember, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT family_id, user_id, joined_at FROM family_members WHERE family_id = ? ORDER BY joined_at, user_id",
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	defer rows.Close()

	var members []models.FamilyMember
	for rows.Next() {
		var m models.FamilyMember
		var joinedAt int64
		if err := rows.Scan(&m.FamilyID, &m.UserID, &joinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		m.JoinedAt = fromUnix(joinedAt)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate family members: %w", err)
	}

	return members, nil
}
