package models

// User is the directory record a refresh credential ultimately resolves to.
// The directory is consumed read-only; user lifecycle lives elsewhere.
type User struct {
	ID    string
	Email string
	Role  string
	Type  string
}
