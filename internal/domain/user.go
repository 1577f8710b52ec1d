package domain

import "time"

// User represents a registered account.
//
// The password hash is produced by the client before it ever reaches the
// wire; the server stores and compares it as an opaque string and never
// sees a plaintext password.
type User struct {
	UserID       string    `json:"userid"`
	PasswordHash string    `json:"password_hash,omitempty"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	FiscalCode   string    `json:"fiscal_code"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

// FullName returns the user's full name, composed from first and last names.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
