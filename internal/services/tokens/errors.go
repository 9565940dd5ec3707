package tokens

import "errors"

var (
	// ErrRefreshTokenMalformed means the credential failed signature or
	// envelope checks for any reason other than expiry.
	ErrRefreshTokenMalformed = errors.New("refresh token malformed")
	// ErrRefreshSignatureExpired means the signed envelope itself has passed
	// the signing engine's expiry, before the store was even consulted.
	ErrRefreshSignatureExpired = errors.New("refresh token signature expired")
	// ErrRefreshTokenNotFound means no store record matches the envelope's
	// (id, owner) pair.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrRefreshTokenRevoked means the record was explicitly invalidated.
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")
	// ErrRefreshTokenExpired means the record's expiry has passed.
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrInconsistentState means the record's owner vanished from the user
	// directory. Not caller-recoverable; surfaced as a server-side failure.
	ErrInconsistentState = errors.New("refresh token owner not found")
)

// IsValidationError reports whether err is one of the caller-recoverable
// exchange failures. The protocol boundary collapses all of them into a
// single undifferentiated response; the distinct kinds stay available for
// logging and metrics.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrRefreshTokenMalformed) ||
		errors.Is(err, ErrRefreshSignatureExpired) ||
		errors.Is(err, ErrRefreshTokenNotFound) ||
		errors.Is(err, ErrRefreshTokenRevoked) ||
		errors.Is(err, ErrRefreshTokenExpired)
}
