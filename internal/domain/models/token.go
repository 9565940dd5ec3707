package models

import "time"

// RefreshToken represents a refresh credential record stored in the database.
// ID and UserID never change after creation; ExpiresAt is computed exactly
// once at creation time; Revoked only ever flips from false to true.
type RefreshToken struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	Revoked   bool
}
