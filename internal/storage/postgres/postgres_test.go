package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"authz/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorageWithMock(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewWithDB(db), mock
}

func TestCreateRefreshToken(t *testing.T) {
	s, mock := newStorageWithMock(t)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(sqlmock.AnyArg(), "owner-1", sqlmock.AnyArg(), sqlmock.AnyArg(), false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	token, err := s.CreateRefreshToken(context.Background(), "owner-1", 7)
	require.NoError(t, err)
	require.NotEmpty(t, token.ID)
	assert.Equal(t, "owner-1", token.UserID)
	assert.False(t, token.Revoked)

	const deltaSeconds = 2
	assert.InDelta(t, time.Now().AddDate(0, 0, 7).Unix(), token.ExpiresAt.Unix(), deltaSeconds)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenByIDAndOwner(t *testing.T) {
	s, mock := newStorageWithMock(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "created_at", "expires_at", "revoked"}).
		AddRow("tok-1", "owner-1", now, now.AddDate(0, 0, 7), false)

	mock.ExpectQuery(`SELECT id, user_id, created_at, expires_at, revoked FROM refresh_tokens`).
		WithArgs("tok-1", "owner-1").
		WillReturnRows(rows)

	token, err := s.RefreshTokenByIDAndOwner(context.Background(), "tok-1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token.ID)
	assert.Equal(t, "owner-1", token.UserID)
	assert.False(t, token.Revoked)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenByIDAndOwner_NotFound(t *testing.T) {
	s, mock := newStorageWithMock(t)

	mock.ExpectQuery(`SELECT id, user_id, created_at, expires_at, revoked FROM refresh_tokens`).
		WithArgs("tok-1", "owner-2").
		WillReturnError(sql.ErrNoRows)

	_, err := s.RefreshTokenByIDAndOwner(context.Background(), "tok-1", "owner-2")
	require.ErrorIs(t, err, storage.ErrTokenNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeRefreshToken(t *testing.T) {
	s, mock := newStorageWithMock(t)

	mock.ExpectExec(`UPDATE refresh_tokens SET revoked = TRUE`).
		WithArgs("tok-1", "owner-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.RevokeRefreshToken(context.Background(), "tok-1", "owner-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeRefreshToken_NotFound(t *testing.T) {
	s, mock := newStorageWithMock(t)

	mock.ExpectExec(`UPDATE refresh_tokens SET revoked = TRUE`).
		WithArgs("tok-1", "owner-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.RevokeRefreshToken(context.Background(), "tok-1", "owner-1")
	require.ErrorIs(t, err, storage.ErrTokenNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserByID(t *testing.T) {
	s, mock := newStorageWithMock(t)

	rows := sqlmock.NewRows([]string{"id", "email", "role", "type"}).
		AddRow("user-1", "user@example.com", "USER", "USER")

	mock.ExpectQuery(`SELECT id, email, role, type FROM users`).
		WithArgs("user-1").
		WillReturnRows(rows)

	user, err := s.UserByID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "user@example.com", user.Email)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserByID_NotFound(t *testing.T) {
	s, mock := newStorageWithMock(t)

	mock.ExpectQuery(`SELECT id, email, role, type FROM users`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.UserByID(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrUserNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
