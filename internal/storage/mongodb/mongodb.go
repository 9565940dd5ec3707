package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"authz/internal/domain/models"
	"authz/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type Storage struct {
	client   *mongo.Client
	database *mongo.Database
	users    *mongo.Collection
	tokens   *mongo.Collection
}

type userDoc struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Role      string    `bson:"role"`
	Type      string    `bson:"type"`
	CreatedAt time.Time `bson:"created_at"`
}

type refreshTokenDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
	Revoked   bool      `bson:"revoked"`
}

// New creates a new MongoDB storage instance and sets up indexes.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	const op = "storage.mongodb.New"

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	db := client.Database(database)
	s := &Storage{
		client:   client,
		database: db,
		users:    db.Collection("users"),
		tokens:   db.Collection("refresh_tokens"),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("%s: indexes: %w", op, err)
	}

	return s, nil
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	// users.email unique
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users.email index: %w", err)
	}

	// refresh_tokens.user_id for per-owner scans. No TTL index on expires_at:
	// expired records must stay readable so expiry can be told apart from a
	// record that never existed.
	_, err = s.tokens.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("refresh_tokens.user_id index: %w", err)
	}

	return nil
}

// Close disconnects from MongoDB.
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// SaveUser provisions a directory user and returns its generated id.
func (s *Storage) SaveUser(ctx context.Context, email, role, userType string) (string, error) {
	const op = "storage.mongodb.SaveUser"

	doc := userDoc{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      role,
		Type:      userType,
		CreatedAt: time.Now(),
	}

	_, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if isDuplicateKeyError(err) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrUserAlreadyExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return doc.ID, nil
}

// UserByID retrieves a directory user by id.
func (s *Storage) UserByID(ctx context.Context, userID string) (*models.User, error) {
	const op = "storage.mongodb.UserByID"

	var doc userDoc
	err := s.users.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.User{
		ID:    doc.ID,
		Email: doc.Email,
		Role:  doc.Role,
		Type:  doc.Type,
	}, nil
}

// CreateRefreshToken persists a new refresh credential record for ownerID
// expiring ttlDays whole days from now.
func (s *Storage) CreateRefreshToken(ctx context.Context, ownerID string, ttlDays int) (*models.RefreshToken, error) {
	const op = "storage.mongodb.CreateRefreshToken"

	now := time.Now().UTC()
	doc := refreshTokenDoc{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, ttlDays),
		Revoked:   false,
	}

	if _, err := s.tokens.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.RefreshToken{
		ID:        doc.ID,
		UserID:    doc.UserID,
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
		Revoked:   doc.Revoked,
	}, nil
}

// RefreshTokenByIDAndOwner looks up a record matching both id and owner.
func (s *Storage) RefreshTokenByIDAndOwner(ctx context.Context, id, ownerID string) (*models.RefreshToken, error) {
	const op = "storage.mongodb.RefreshTokenByIDAndOwner"

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "user_id", Value: ownerID},
	}

	var doc refreshTokenDoc
	err := s.tokens.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.RefreshToken{
		ID:        doc.ID,
		UserID:    doc.UserID,
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
		Revoked:   doc.Revoked,
	}, nil
}

// RevokeRefreshToken marks the matching record revoked. Matching an already
// revoked record still counts as success.
func (s *Storage) RevokeRefreshToken(ctx context.Context, id, ownerID string) error {
	const op = "storage.mongodb.RevokeRefreshToken"

	res, err := s.tokens.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: id},
			{Key: "user_id", Value: ownerID},
		},
		bson.D{{Key: "$set", Value: bson.D{{Key: "revoked", Value: true}}}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
	}
	return nil
}

// isDuplicateKeyError checks if the error is a MongoDB duplicate key error (code 11000).
func isDuplicateKeyError(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}
