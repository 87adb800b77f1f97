package accounts

import (
	"strings"

	"github.com/aakritigupta/openproject/errors"
	"google.golang.org/grpc/codes"
)

// AuthHash is the normalized payload delivered by an external identity
// provider after a successful handshake. The attribute fields are optional,
// providers do not always release them.
type AuthHash struct {
	Provider  string
	UID       string
	Name      string
	FirstName string
	LastName  string
	Email     string
}

// Validate checks the payload for the fields that identify the external
// account. A payload without a provider or uid is fatal to the attempt, it
// must never be treated as an anonymous login.
func (h AuthHash) Validate() error {
	if h.Provider == "" {
		return errors.NewC("accounts: identity payload missing provider", codes.InvalidArgument)
	}
	if h.UID == "" {
		return errors.NewC("accounts: identity payload missing uid", codes.InvalidArgument)
	}
	return nil
}

// IdentityRef returns the stored reference for this external identity.
func (h AuthHash) IdentityRef() string {
	return h.Provider + ":" + h.UID
}

// Complete reports whether the payload carries enough attributes to create a
// user outright: an email plus the structured first and last name the account
// record requires. A display name alone does not qualify, the flow has to
// collect the missing attributes from the user first.
func (h AuthHash) Complete() bool {
	return h.Email != "" && h.FirstName != "" && h.LastName != ""
}

// DisplayName returns the provider's display name, falling back to the
// structured name attributes.
func (h AuthHash) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}
	return strings.TrimSpace(h.FirstName + " " + h.LastName)
}
