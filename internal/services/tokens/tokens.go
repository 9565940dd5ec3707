package tokens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"authz/internal/domain/models"
	"authz/internal/lib/jwt"
	"authz/internal/lib/sl"
	"authz/internal/storage"
)

// Service orchestrates the refresh credential lifecycle: issuance of signed
// refresh credentials backed by store records, exchange of a credential for a
// fresh access token, and explicit revocation.
//
// Exchange does not rotate: the presented credential stays valid until its
// natural expiry or an explicit revoke. Two concurrent exchanges of the same
// credential may both succeed, each minting its own access token. Adding
// rotation would require an atomic consume-and-replace operation on the
// store so only one of two concurrent exchanges wins.
type Service struct {
	logger       *slog.Logger
	signer       *jwt.Signer
	issuer       *AccessIssuer
	tokenStore   RefreshTokenStore
	userProvider UserProvider
	envelopeTTL  time.Duration
}

// RefreshTokenStore is the persistence boundary for refresh credential
// records. Create performs exactly one durable write; lookups must match
// both id and owner, treating a mismatch the same as a missing record.
type RefreshTokenStore interface {
	CreateRefreshToken(ctx context.Context, ownerID string, ttlDays int) (*models.RefreshToken, error)
	RefreshTokenByIDAndOwner(ctx context.Context, id, ownerID string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id, ownerID string) error
}

// UserProvider is the read-only user directory.
type UserProvider interface {
	UserByID(ctx context.Context, userID string) (*models.User, error)
}

// New returns a new instance of the Service. envelopeTTL is the signing
// engine's own coarse expiry on refresh envelopes; it should comfortably
// exceed any record ttl handed to IssueRefresh.
func New(
	logger *slog.Logger,
	signer *jwt.Signer,
	issuer *AccessIssuer,
	tokenStore RefreshTokenStore,
	userProvider UserProvider,
	envelopeTTL time.Duration,
) *Service {
	return &Service{
		logger:       logger,
		signer:       signer,
		issuer:       issuer,
		tokenStore:   tokenStore,
		userProvider: userProvider,
		envelopeTTL:  envelopeTTL,
	}
}

// IssueRefresh creates a refresh credential for ownerID valid for ttlDays
// whole days and returns it as a signed string.
func (s *Service) IssueRefresh(ctx context.Context, ownerID string, ttlDays int) (string, error) {
	const op = "tokens.IssueRefresh"
	log := s.logger.With(slog.String("op", op), slog.String("ownerID", ownerID))

	record, err := s.tokenStore.CreateRefreshToken(ctx, ownerID, ttlDays)
	if err != nil {
		log.Error("failed to create refresh token record", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	credential, err := s.signer.SignRefreshToken(record, s.envelopeTTL)
	if err != nil {
		log.Error("failed to sign refresh token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("refresh token issued",
		slog.String("recordID", record.ID),
		slog.Time("expiresAt", record.ExpiresAt),
	)

	return credential, nil
}

// ExchangeRefresh validates a refresh credential and, on success, returns a
// fresh access token together with the owning user. Validation goes decode,
// envelope sanity, store lookup, revocation check, expiry check, user
// resolution; the first failing stage wins. Revocation is checked before
// expiry so an explicitly invalidated credential never reports as merely
// expired. The store record, not the signed envelope, is authoritative for
// expiry and revocation.
func (s *Service) ExchangeRefresh(ctx context.Context, credential string) (string, *models.User, error) {
	const op = "tokens.ExchangeRefresh"
	log := s.logger.With(slog.String("op", op))

	claims, err := s.signer.ParseRefreshToken(credential)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Warn("refresh token envelope expired", sl.Err(err))
			return "", nil, fmt.Errorf("%s: %w", op, ErrRefreshSignatureExpired)
		}
		log.Warn("refresh token malformed", sl.Err(err))
		return "", nil, fmt.Errorf("%s: %w", op, ErrRefreshTokenMalformed)
	}

	if claims.ID == "" {
		log.Warn("refresh token envelope carries no record id")
		return "", nil, fmt.Errorf("%s: %w", op, ErrRefreshTokenMalformed)
	}

	record, err := s.tokenStore.RefreshTokenByIDAndOwner(ctx, claims.ID, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			log.Warn("refresh token record not found", slog.String("recordID", claims.ID))
			return "", nil, fmt.Errorf("%s: %w", op, ErrRefreshTokenNotFound)
		}
		log.Error("failed to look up refresh token record", sl.Err(err))
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	if record.Revoked {
		log.Warn("refresh token revoked", slog.String("recordID", record.ID))
		return "", nil, fmt.Errorf("%s: %w", op, ErrRefreshTokenRevoked)
	}

	if time.Now().After(record.ExpiresAt) {
		log.Warn("refresh token expired", slog.String("recordID", record.ID))
		return "", nil, fmt.Errorf("%s: %w", op, ErrRefreshTokenExpired)
	}

	user, err := s.userProvider.UserByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Error("refresh token owner missing from user directory",
				slog.String("recordID", record.ID),
				slog.String("ownerID", record.UserID),
			)
			return "", nil, fmt.Errorf("%s: %w", op, ErrInconsistentState)
		}
		log.Error("failed to get user", sl.Err(err))
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	accessToken, err := s.issuer.Issue(user)
	if err != nil {
		log.Error("failed to generate access token", sl.Err(err))
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("refresh token exchanged", slog.String("ownerID", user.ID))

	return accessToken, user, nil
}

// RevokeRefresh marks the (recordID, ownerID) record revoked. Idempotent:
// revoking an already revoked record succeeds silently.
func (s *Service) RevokeRefresh(ctx context.Context, recordID, ownerID string) error {
	const op = "tokens.RevokeRefresh"
	log := s.logger.With(
		slog.String("op", op),
		slog.String("recordID", recordID),
		slog.String("ownerID", ownerID),
	)

	err := s.tokenStore.RevokeRefreshToken(ctx, recordID, ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			log.Warn("refresh token record not found")
			return fmt.Errorf("%s: %w", op, ErrRefreshTokenNotFound)
		}
		log.Error("failed to revoke refresh token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("refresh token revoked")

	return nil
}
