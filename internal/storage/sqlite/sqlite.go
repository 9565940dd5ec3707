package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"authz/internal/domain/models"
	"authz/internal/storage"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	_ "github.com/mattn/go-sqlite3"
)

type Storage struct {
	db *sql.DB
}

// New returns a new instance of the Storage.
func New(storagePath string) (*Storage, error) {
	const op = "storage.sqlite.New"
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveUser provisions a directory user and returns its generated id.
func (s *Storage) SaveUser(ctx context.Context, email, role, userType string) (string, error) {
	const op = "storage.sqlite.SaveUser"

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, role, type) VALUES (?, ?, ?, ?)",
		id, email, role, userType,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return "", fmt.Errorf("%s: %w", op, storage.ErrUserAlreadyExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UserByID retrieves a directory user by id.
func (s *Storage) UserByID(ctx context.Context, userID string) (*models.User, error) {
	const op = "storage.sqlite.UserByID"

	row := s.db.QueryRowContext(ctx,
		"SELECT id, email, role, type FROM users WHERE id = ?", userID)

	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Role, &user.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// CreateRefreshToken persists a new refresh credential record for ownerID
// expiring ttlDays whole days from now.
func (s *Storage) CreateRefreshToken(ctx context.Context, ownerID string, ttlDays int) (*models.RefreshToken, error) {
	const op = "storage.sqlite.CreateRefreshToken"

	now := time.Now().UTC()
	token := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, ttlDays),
		Revoked:   false,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (id, user_id, created_at, expires_at, revoked) VALUES (?, ?, ?, ?, ?)",
		token.ID, token.UserID, token.CreatedAt, token.ExpiresAt, token.Revoked,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// RefreshTokenByIDAndOwner looks up a record matching both id and owner.
// A wrong owner for an existing id is indistinguishable from a missing record.
func (s *Storage) RefreshTokenByIDAndOwner(ctx context.Context, id, ownerID string) (*models.RefreshToken, error) {
	const op = "storage.sqlite.RefreshTokenByIDAndOwner"

	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at, expires_at, revoked FROM refresh_tokens WHERE id = ? AND user_id = ?",
		id, ownerID,
	)

	var token models.RefreshToken
	err := row.Scan(&token.ID, &token.UserID, &token.CreatedAt, &token.ExpiresAt, &token.Revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &token, nil
}

// RevokeRefreshToken marks the matching record revoked. Revoking an already
// revoked record succeeds; an unmatched (id, owner) pair is not found.
func (s *Storage) RevokeRefreshToken(ctx context.Context, id, ownerID string) error {
	const op = "storage.sqlite.RevokeRefreshToken"

	res, err := s.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked = TRUE WHERE id = ? AND user_id = ?",
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
	}
	return nil
}
