package tokens

import (
	"fmt"
	"time"

	"authz/internal/domain/models"
	"authz/internal/lib/jwt"
)

// AccessIssuer mints short-lived signed access tokens. The lifetime is a
// fixed issuance policy, never caller-supplied. Stateless.
type AccessIssuer struct {
	signer *jwt.Signer
	ttl    time.Duration
}

func NewAccessIssuer(signer *jwt.Signer, ttl time.Duration) *AccessIssuer {
	return &AccessIssuer{signer: signer, ttl: ttl}
}

// Issue creates a signed access token for the given user.
func (i *AccessIssuer) Issue(user *models.User) (string, error) {
	const op = "tokens.AccessIssuer.Issue"

	token, err := i.signer.SignAccessToken(user, i.ttl)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}
