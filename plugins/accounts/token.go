package accounts

import (
	"time"

	"github.com/google/uuid"
)

// ActionRegister tags tokens issued for email confirmation of a new account.
const ActionRegister = "register"

// RegistrationToken is the single-purpose token mailed to a user during
// email-confirmation registration. The primary key is the login, so issuing a
// replacement token displaces the stale one and exactly one live token exists
// per pending registration.
type RegistrationToken struct {
	Login     string
	Value     string
	Action    string
	ExpiresAt time.Time
}

// Implements storage.Model.
func (t *RegistrationToken) PK() string {
	return t.Login
}

// Expired returns true once the token can no longer be redeemed.
func (t *RegistrationToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

// NewRegistrationToken mints a registration token for the login with a random
// value.
func NewRegistrationToken(login string, ttl time.Duration) *RegistrationToken {
	return &RegistrationToken{
		Login:     login,
		Value:     uuid.NewString(),
		Action:    ActionRegister,
		ExpiresAt: time.Now().Add(ttl),
	}
}
