package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mmynk/pricediary/internal/models"
	"github.com/mmynk/pricediary/internal/storage"
)

// entryDoc is the BSON layout shared by per-user and global entry documents.
type entryDoc struct {
	ID            string    `bson:"_id"`
	UserID        string    `bson:"user_id"`
	Category      string    `bson:"category"`
	ProductName   string    `bson:"product_name"`
	ProductKey    string    `bson:"product_key"`
	PackageSize   string    `bson:"package_size"`
	Store         string    `bson:"store"`
	Price         float64   `bson:"price"`
	Date          time.Time `bson:"date"`
	Note          string    `bson:"note,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
	GlobalEntryID string    `bson:"global_entry_id,omitempty"`
	UserEntryID   string    `bson:"user_entry_id,omitempty"`
}

func toEntryDoc(e *models.PriceEntry) entryDoc {
	return entryDoc{
		ID:            e.ID,
		UserID:        e.UserID,
		Category:      string(e.Category),
		ProductName:   e.ProductName,
		ProductKey:    e.ProductKey,
		PackageSize:   e.PackageSize,
		Store:         e.Store,
		Price:         e.Price,
		Date:          e.Date,
		Note:          e.Note,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		GlobalEntryID: e.GlobalEntryID,
		UserEntryID:   e.UserEntryID,
	}
}

func (d entryDoc) toModel() *models.PriceEntry {
	return &models.PriceEntry{
		ID:            d.ID,
		UserID:        d.UserID,
		Category:      models.Category(d.Category),
		ProductName:   d.ProductName,
		ProductKey:    d.ProductKey,
		PackageSize:   d.PackageSize,
		Store:         d.Store,
		Price:         d.Price,
		Date:          d.Date.UTC(),
		Note:          d.Note,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
		GlobalEntryID: d.GlobalEntryID,
		UserEntryID:   d.UserEntryID,
	}
}

// CreateUserEntry inserts entry into the owner's collection.
func (s *MongoStore) CreateUserEntry(ctx context.Context, entry *models.PriceEntry) error {
	s.stampEntry(entry)
	doc := toEntryDoc(entry)
	doc.UserEntryID = ""

	if _, err := s.db.Collection(collUserEntries).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert user entry: %w", err)
	}
	return nil
}

// CreateGlobalEntry inserts entry into the global collection.
func (s *MongoStore) CreateGlobalEntry(ctx context.Context, entry *models.PriceEntry) error {
	if entry.UserEntryID == "" {
		return fmt.Errorf("global entry requires a user entry id")
	}
	s.stampEntry(entry)
	doc := toEntryDoc(entry)
	doc.GlobalEntryID = ""

	if _, err := s.db.Collection(collEntries).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert global entry: %w", err)
	}
	return nil
}

// LinkGlobalEntry merges the back-reference into the per-user document.
func (s *MongoStore) LinkGlobalEntry(ctx context.Context, userID, entryID, globalEntryID string) error {
	res, err := s.db.Collection(collUserEntries).UpdateOne(ctx,
		bson.M{"_id": entryID, "user_id": userID},
		bson.M{"$set": bson.M{"global_entry_id": globalEntryID}},
	)
	if err != nil {
		return fmt.Errorf("failed to link global entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user entry %s: %w", entryID, storage.ErrNotFound)
	}
	return nil
}

// GetUserEntry retrieves a per-user document.
func (s *MongoStore) GetUserEntry(ctx context.Context, userID, entryID string) (*models.PriceEntry, error) {
	var doc entryDoc
	err := s.db.Collection(collUserEntries).
		FindOne(ctx, bson.M{"_id": entryID, "user_id": userID}).
		Decode(&doc)
	if isNoDocuments(err) {
		return nil, fmt.Errorf("user entry %s: %w", entryID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user entry: %w", err)
	}
	return doc.toModel(), nil
}

// DeleteUserEntry removes a per-user document. Missing documents are not an error.
func (s *MongoStore) DeleteUserEntry(ctx context.Context, userID, entryID string) error {
	_, err := s.db.Collection(collUserEntries).DeleteOne(ctx, bson.M{"_id": entryID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete user entry: %w", err)
	}
	return nil
}

// DeleteGlobalEntry removes a global document.
func (s *MongoStore) DeleteGlobalEntry(ctx context.Context, globalEntryID string) error {
	res, err := s.db.Collection(collEntries).DeleteOne(ctx, bson.M{"_id": globalEntryID})
	if err != nil {
		return fmt.Errorf("failed to delete global entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("global entry %s: %w", globalEntryID, storage.ErrNotFound)
	}
	return nil
}

// ListUserEntries queries the owner's collection.
func (s *MongoStore) ListUserEntries(ctx context.Context, userID string, q storage.EntryQuery) ([]*models.PriceEntry, error) {
	filter := entryFilter(q)
	filter["user_id"] = userID

	entries, err := s.findEntries(ctx, collUserEntries, filter, q.NewestFirst)
	if err != nil {
		return nil, fmt.Errorf("failed to list user entries: %w", err)
	}
	return entries, nil
}

// ListGlobalEntries queries the global collection.
func (s *MongoStore) ListGlobalEntries(ctx context.Context, q storage.EntryQuery) ([]*models.PriceEntry, error) {
	entries, err := s.findEntries(ctx, collEntries, entryFilter(q), q.NewestFirst)
	if err != nil {
		return nil, fmt.Errorf("failed to list global entries: %w", err)
	}
	return entries, nil
}

func (s *MongoStore) findEntries(ctx context.Context, coll string, filter bson.M, newestFirst bool) ([]*models.PriceEntry, error) {
	opts := options.Find()
	if newestFirst {
		opts.SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}})
	}

	cur, err := s.db.Collection(coll).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var docs []entryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	entries := make([]*models.PriceEntry, len(docs))
	for i, d := range docs {
		entries[i] = d.toModel()
	}
	return entries, nil
}

func (s *MongoStore) stampEntry(entry *models.PriceEntry) {
	entry.ID = uuid.New().String()
	now := s.timestamp()
	entry.CreatedAt = now
	entry.UpdatedAt = now
}

func entryFilter(q storage.EntryQuery) bson.M {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = string(q.Category)
	}
	if q.ProductKey != "" {
		filter["product_key"] = q.ProductKey
	}
	return filter
}
