package domain

// User is stored for bookkeeping only; nothing in the system authorizes
// against it. PasswordHash must never leave the process.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
}
