package accounts

import (
	"time"
)

// Status is the lifecycle state of a user account.
type Status string

const (
	// Created but not yet activated, either waiting on email confirmation or
	// administrator approval.
	StatusPending Status = "pending"

	// Allowed to log in.
	StatusActive Status = "active"

	// Blocked by an administrator. Locked accounts are never deleted.
	StatusLocked Status = "locked"
)

// User is an authenticating account. How a user authenticates is
// characterized by which credential fields are populated: a local password
// hash, an external identity reference ("provider:uid"), or an auth source.
// Historical records may carry more than one.
type User struct {
	Login string
	Email string
	Name  string

	Status Status

	// bcrypt hash, empty when the identity is externally federated.
	HashedPassword []byte

	// "provider:uid" reference populated by omniauth logins.
	Identity string

	// ID of the external directory that verifies this user's password.
	AuthSourceID string

	// When set, every request other than the password change submission is
	// bounced back to the login page.
	ForcePasswordChange bool

	CreatedAt time.Time
}

// Implements storage.Model.
func (u *User) PK() string {
	return u.Login
}

// Active returns true when the account may log in.
func (u *User) Active() bool {
	return u.Status == StatusActive
}

// ChangePasswordAllowed reports whether the user can change their password
// through self-service. Accounts whose credentials live in an external auth
// source, and accounts with no local password at all, are managed elsewhere.
func (u *User) ChangePasswordAllowed() bool {
	if u.AuthSourceID != "" {
		return false
	}
	return len(u.HashedPassword) > 0
}
