package jwt

import (
	"errors"
	"fmt"
	"time"

	"authz/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned when the signed token itself has expired.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned for any other verification failure.
	ErrTokenMalformed = errors.New("token malformed")
)

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
	Type  string `json:"type"`
}

// RefreshClaims is the envelope embedded in a signed refresh credential.
// The jti claim carries the store record id and sub the owner id.
// RecordExpiresAt mirrors the record's expiry at issuance time; it is
// informational only, validation trusts the store rather than the envelope.
type RefreshClaims struct {
	jwt.RegisteredClaims
	RecordExpiresAt *jwt.NumericDate `json:"record_exp,omitempty"`
}

// Signer signs and verifies compact tokens with a single HMAC key.
// Issuer and audience are stamped on everything it signs and enforced
// on everything it verifies.
type Signer struct {
	secret   []byte
	issuer   string
	audience string
}

// NewSigner returns a Signer for the given key. An empty key is a
// configuration error and rejected at construction time.
func NewSigner(secret, issuer, audience string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("jwt: empty signing secret")
	}
	return &Signer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}, nil
}

// SignAccessToken creates an access JWT carrying the user's identity claims.
func (s *Signer) SignAccessToken(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: user.Email,
		Role:  user.Role,
		Type:  user.Type,
	})

	return token.SignedString(s.secret)
}

// SignRefreshToken wraps a stored refresh record into a signed envelope.
// The envelope carries its own expiry (envelopeTTL, the signer's coarse
// clock check); the record's expiry stays authoritative at validation time.
func (s *Signer) SignRefreshToken(record *models.RefreshToken, envelopeTTL time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        record.ID,
			Subject:   record.UserID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(envelopeTTL)),
		},
		RecordExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
	})

	return token.SignedString(s.secret)
}

// ParseAccessToken verifies an access token and returns its claims.
func (s *Signer) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefreshToken verifies a refresh credential envelope and returns its
// claims. An envelope past its own expiry yields ErrTokenExpired; any other
// failure (bad signature, wrong issuer or audience, garbage input) yields
// ErrTokenMalformed.
func (s *Signer) ParseRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Signer) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
	if !token.Valid {
		return ErrTokenMalformed
	}
	return nil
}
