package jwt

// Principal is the authenticated identity extracted from a verified
// access token.
type Principal struct {
	ID    string
	Email string
	Role  string
	Type  string
}

// PrincipalFromClaims maps verified access claims to a Principal.
func PrincipalFromClaims(claims *AccessClaims) Principal {
	return Principal{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  claims.Role,
		Type:  claims.Type,
	}
}
