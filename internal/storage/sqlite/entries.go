package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/pricediary/internal/models"
	"github.com/mmynk/pricediary/internal/storage"
)

const entryColumns = `id, user_id, category, product_name, product_key, package_size, store, price, date, note, created_at, updated_at`

// CreateUserEntry inserts entry into the owner's collection.
func (s *SQLiteStore) CreateUserEntry(ctx context.Context, entry *models.PriceEntry) error {
	s.stampEntry(entry)

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO user_entries (`+entryColumns+`, global_entry_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append(entryArgs(entry), nullString(entry.GlobalEntryID))...,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user entry: %w", err)
	}
	return nil
}

// CreateGlobalEntry inserts entry into the global collection.
func (s *SQLiteStore) CreateGlobalEntry(ctx context.Context, entry *models.PriceEntry) error {
	if entry.UserEntryID == "" {
		return fmt.Errorf("global entry requires a user entry id")
	}
	s.stampEntry(entry)

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO entries (`+entryColumns+`, user_entry_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append(entryArgs(entry), entry.UserEntryID)...,
	)
	if err != nil {
		return fmt.Errorf("failed to insert global entry: %w", err)
	}
	return nil
}

// LinkGlobalEntry stores the global record's ID on the per-user record.
func (s *SQLiteStore) LinkGlobalEntry(ctx context.Context, userID, entryID, globalEntryID string) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE user_entries SET global_entry_id = ? WHERE id = ? AND user_id = ?",
		globalEntryID, entryID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to link global entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user entry %s: %w", entryID, storage.ErrNotFound)
	}
	return nil
}

// GetUserEntry retrieves a per-user record.
func (s *SQLiteStore) GetUserEntry(ctx context.Context, userID, entryID string) (*models.PriceEntry, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+entryColumns+`, global_entry_id FROM user_entries WHERE id = ? AND user_id = ?`,
		entryID, userID,
	)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user entry %s: %w", entryID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user entry: %w", err)
	}
	return entry, nil
}

// DeleteUserEntry removes a per-user record. Missing records are not an error.
func (s *SQLiteStore) DeleteUserEntry(ctx context.Context, userID, entryID string) error {
	_, err := s.q.ExecContext(ctx,
		"DELETE FROM user_entries WHERE id = ? AND user_id = ?",
		entryID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user entry: %w", err)
	}
	return nil
}

// DeleteGlobalEntry removes a global record.
func (s *SQLiteStore) DeleteGlobalEntry(ctx context.Context, globalEntryID string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", globalEntryID)
	if err != nil {
		return fmt.Errorf("failed to delete global entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("global entry %s: %w", globalEntryID, storage.ErrNotFound)
	}
	return nil
}

// ListUserEntries queries the owner's collection.
func (s *SQLiteStore) ListUserEntries(ctx context.Context, userID string, q storage.EntryQuery) ([]*models.PriceEntry, error) {
	where, args := entryFilter(q)
	where = append([]string{"user_id = ?"}, where...)
	args = append([]any{userID}, args...)

	query := `SELECT ` + entryColumns + `, global_entry_id FROM user_entries WHERE ` + strings.Join(where, " AND ")
	if q.NewestFirst {
		query += " ORDER BY date DESC, created_at DESC"
	}

	return s.queryEntries(ctx, query, args...)
}

// ListGlobalEntries queries the global collection.
func (s *SQLiteStore) ListGlobalEntries(ctx context.Context, q storage.EntryQuery) ([]*models.PriceEntry, error) {
	where, args := entryFilter(q)

	query := `SELECT ` + entryColumns + `, user_entry_id FROM entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if q.NewestFirst {
		query += " ORDER BY date DESC, created_at DESC"
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list global entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.PriceEntry
	for rows.Next() {
		entry, err := scanGlobalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan global entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate global entries: %w", err)
	}

	return entries, nil
}

func (s *SQLiteStore) queryEntries(ctx context.Context, query string, args ...any) ([]*models.PriceEntry, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list user entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.PriceEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user entries: %w", err)
	}

	return entries, nil
}

// stampEntry assigns the ID and the store-side timestamps.
func (s *SQLiteStore) stampEntry(entry *models.PriceEntry) {
	entry.ID = uuid.New().String()
	now := s.timestamp()
	entry.CreatedAt = now
	entry.UpdatedAt = now
}

func entryFilter(q storage.EntryQuery) ([]string, []any) {
	var where []string
	var args []any
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(q.Category))
	}
	if q.ProductKey != "" {
		where = append(where, "product_key = ?")
		args = append(args, q.ProductKey)
	}
	return where, args
}

func entryArgs(e *models.PriceEntry) []any {
	return []any{
		e.ID, e.UserID, string(e.Category), e.ProductName, e.ProductKey,
		e.PackageSize, e.Store, e.Price, e.Date.Format(models.DateLayout), e.Note,
		e.CreatedAt.Unix(), e.UpdatedAt.Unix(),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

// scanEntry reads a per-user row (trailing column: global_entry_id).
func scanEntry(row scanner) (*models.PriceEntry, error) {
	var link sql.NullString
	entry, err := scanEntryWith(row, &link)
	if err != nil {
		return nil, err
	}
	entry.GlobalEntryID = link.String
	return entry, nil
}

// scanGlobalEntry reads a global row (trailing column: user_entry_id).
func scanGlobalEntry(row scanner) (*models.PriceEntry, error) {
	var link sql.NullString
	entry, err := scanEntryWith(row, &link)
	if err != nil {
		return nil, err
	}
	entry.UserEntryID = link.String
	return entry, nil
}

func scanEntryWith(row scanner, link *sql.NullString) (*models.PriceEntry, error) {
	var (
		entry              models.PriceEntry
		category, date     string
		createdAt, updated int64
	)
	err := row.Scan(
		&entry.ID, &entry.UserID, &category, &entry.ProductName, &entry.ProductKey,
		&entry.PackageSize, &entry.Store, &entry.Price, &date, &entry.Note,
		&createdAt, &updated, link,
	)
	if err != nil {
		return nil, err
	}

	entry.Category = models.Category(category)
	entry.Date, err = time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	entry.CreatedAt = fromUnix(createdAt)
	entry.UpdatedAt = fromUnix(updated)
	return &entry, nil
}
