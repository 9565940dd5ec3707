package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"authz/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schema = `
CREATE TABLE users
(
    id         TEXT PRIMARY KEY,
    email      TEXT      NOT NULL UNIQUE,
    role       TEXT      NOT NULL DEFAULT 'USER',
    type       TEXT      NOT NULL DEFAULT 'USER',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE refresh_tokens
(
    id         TEXT PRIMARY KEY,
    user_id    TEXT      NOT NULL REFERENCES users (id),
    created_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP NOT NULL,
    revoked    BOOLEAN   NOT NULL DEFAULT FALSE
);
`

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "authz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.db.Exec(schema)
	require.NoError(t, err)

	return s
}

func TestSaveUser_And_UserByID(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	email := gofakeit.Email()
	id, err := s.SaveUser(ctx, email, "ADMIN", "USER")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	user, err := s.UserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, email, user.Email)
	assert.Equal(t, "ADMIN", user.Role)
	assert.Equal(t, "USER", user.Type)
}

func TestSaveUser_DuplicateEmail(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	email := gofakeit.Email()
	_, err := s.SaveUser(ctx, email, "USER", "USER")
	require.NoError(t, err)

	_, err = s.SaveUser(ctx, email, "USER", "USER")
	require.ErrorIs(t, err, storage.ErrUserAlreadyExists)
}

func TestUserByID_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.UserByID(context.Background(), "no-such-user")
	require.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestCreateRefreshToken(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	owner, err := s.SaveUser(ctx, gofakeit.Email(), "USER", "USER")
	require.NoError(t, err)

	token, err := s.CreateRefreshToken(ctx, owner, 7)
	require.NoError(t, err)
	require.NotEmpty(t, token.ID)
	assert.Equal(t, owner, token.UserID)
	assert.False(t, token.Revoked)

	const deltaSeconds = 2
	assert.InDelta(t, time.Now().AddDate(0, 0, 7).Unix(), token.ExpiresAt.Unix(), deltaSeconds)

	stored, err := s.RefreshTokenByIDAndOwner(ctx, token.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, token.ID, stored.ID)
	assert.Equal(t, owner, stored.UserID)
	assert.False(t, stored.Revoked)
	assert.WithinDuration(t, token.ExpiresAt, stored.ExpiresAt, time.Second)
}

func TestRefreshTokenByIDAndOwner_CrossOwner(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	owner, err := s.SaveUser(ctx, gofakeit.Email(), "USER", "USER")
	require.NoError(t, err)
	other, err := s.SaveUser(ctx, gofakeit.Email(), "USER", "USER")
	require.NoError(t, err)

	token, err := s.CreateRefreshToken(ctx, owner, 7)
	require.NoError(t, err)

	_, err = s.RefreshTokenByIDAndOwner(ctx, token.ID, other)
	require.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestRefreshTokenByIDAndOwner_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.RefreshTokenByIDAndOwner(context.Background(), "no-such-token", "no-such-user")
	require.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestRevokeRefreshToken(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	owner, err := s.SaveUser(ctx, gofakeit.Email(), "USER", "USER")
	require.NoError(t, err)

	token, err := s.CreateRefreshToken(ctx, owner, 7)
	require.NoError(t, err)

	require.NoError(t, s.RevokeRefreshToken(ctx, token.ID, owner))

	stored, err := s.RefreshTokenByIDAndOwner(ctx, token.ID, owner)
	require.NoError(t, err)
	assert.True(t, stored.Revoked)

	// Revoking again succeeds and the flag never flips back.
	require.NoError(t, s.RevokeRefreshToken(ctx, token.ID, owner))
	stored, err = s.RefreshTokenByIDAndOwner(ctx, token.ID, owner)
	require.NoError(t, err)
	assert.True(t, stored.Revoked)
}

func TestRevokeRefreshToken_CrossOwner(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	owner, err := s.SaveUser(ctx, gofakeit.Email(), "USER", "USER")
	require.NoError(t, err)

	token, err := s.CreateRefreshToken(ctx, owner, 7)
	require.NoError(t, err)

	err = s.RevokeRefreshToken(ctx, token.ID, "someone-else")
	require.ErrorIs(t, err, storage.ErrTokenNotFound)

	stored, err := s.RefreshTokenByIDAndOwner(ctx, token.ID, owner)
	require.NoError(t, err)
	assert.False(t, stored.Revoked)
}
