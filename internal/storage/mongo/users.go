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

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type profileDoc struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	FamilyID  string    `bson:"family_id,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

type familyDoc struct {
	ID        string    `bson:"_id"`
	OwnerID   string    `bson:"owner_id"`
	CreatedAt time.Time `bson:"created_at"`
}

type memberDoc struct {
	FamilyID string    `bson:"family_id"`
	UserID   string    `bson:"user_id"`
	JoinedAt time.Time `bson:"joined_at"`
}

// CreateUser inserts a new user document.
func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.Collection(collUsers).InsertOne(ctx, userDoc{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

// GetUserByID retrieves a user by their ID.
func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	err := s.db.Collection(collUsers).FindOne(ctx, filter).Decode(&doc)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &models.User{
		ID:           doc.ID,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt.UTC(),
		UpdatedAt:    doc.UpdatedAt.UTC(),
	}, nil
}

// GetProfile retrieves a profile by user ID.
func (s *MongoStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var doc profileDoc
	err := s.db.Collection(collProfiles).FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &models.Profile{
		ID:        doc.ID,
		Email:     doc.Email,
		FamilyID:  doc.FamilyID,
		CreatedAt: doc.CreatedAt.UTC(),
	}, nil
}

// CreateProfile inserts a new profile document.
func (s *MongoStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	profile.CreatedAt = s.timestamp()
	_, err := s.db.Collection(collProfiles).InsertOne(ctx, profileDoc{
		ID:        profile.ID,
		Email:     profile.Email,
		FamilyID:  profile.FamilyID,
		CreatedAt: profile.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// SetProfileFamily merges the family ID into the profile, creating it if missing.
func (s *MongoStore) SetProfileFamily(ctx context.Context, userID, familyID string) error {
	_, err := s.db.Collection(collProfiles).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$set":         bson.M{"family_id": familyID},
			"$setOnInsert": bson.M{"email": "", "created_at": s.timestamp()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to set profile family: %w", err)
	}
	return nil
}

// CreateFamily inserts a new family document.
func (s *MongoStore) CreateFamily(ctx context.Context, family *models.Family) error {
	if family.ID == "" {
		family.ID = uuid.New().String()
	}
	family.CreatedAt = s.timestamp()

	_, err := s.db.Collection(collFamilies).InsertOne(ctx, familyDoc{
		ID:        family.ID,
		OwnerID:   family.OwnerID,
		CreatedAt: family.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert family: %w", err)
	}
	return nil
}

// GetFamily retrieves a family by ID.
func (s *MongoStore) GetFamily(ctx context.Context, familyID string) (*models.Family, error) {
	var doc familyDoc
	err := s.db.Collection(collFamilies).FindOne(ctx, bson.M{"_id": familyID}).Decode(&doc)
	if isNoDocuments(err) {
		return nil, fmt.Errorf("family %s: %w", familyID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return &models.Family{ID: doc.ID, OwnerID: doc.OwnerID, CreatedAt: doc.CreatedAt.UTC()}, nil
}

// UpsertFamilyMember writes the membership document with a server-side join time.
func (s *MongoStore) UpsertFamilyMember(ctx context.Context, familyID, userID string) error {
	_, err := s.db.Collection(collFamilyMembers).UpdateOne(ctx,
		bson.M{"family_id": familyID, "user_id": userID},
		bson.M{"$currentDate": bson.M{"joined_at": true}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert family member: %w", err)
	}
	return nil
}

// ListFamilyMembers retrieves the membership documents of a family.
func (s *MongoStore) ListFamilyMembers(ctx context.Context, familyID string) ([]models.FamilyMember, error) {
	cur, err := s.db.Collection(collFamilyMembers).Find(ctx,
		bson.M{"family_id": familyID},
		options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}, {Key: "user_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}

	var docs []memberDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode family members: %w", err)
	}

	members := make([]models.FamilyMember, len(docs))
	for i, d := range docs {
		members[i] = models.FamilyMember{FamilyID: d.FamilyID, UserID: d.UserID, JoinedAt: d.JoinedAt.UTC()}
	}
	return members, nil
}
