package accounts

import (
	"github.com/aakritigupta/openproject/errors"
	"google.golang.org/grpc/codes"
)

// RegistrationMode is the global policy controlling whether and how new users
// may create accounts through the public registration form.
type RegistrationMode int

const (
	// Self-registration is off. The public form rejects submissions; accounts
	// arriving through an external identity provider are still created.
	ModeDisabled RegistrationMode = iota

	// New accounts stay pending until the user confirms their email address
	// with a registration token.
	ModeByEmail

	// New accounts stay pending until an administrator activates them.
	ModeManual

	// New accounts are activated immediately.
	ModeAutomatic
)

func (m RegistrationMode) String() string {
	switch m {
	case ModeDisabled:
		return "disabled"
	case ModeByEmail:
		return "email"
	case ModeManual:
		return "manual"
	case ModeAutomatic:
		return "automatic"
	default:
		return "unknown"
	}
}

// ParseRegistrationMode maps a config value to a RegistrationMode. The legacy
// numeric setting values 0-3 are accepted alongside the named values.
func ParseRegistrationMode(s string) (RegistrationMode, error) {
	switch s {
	case "disabled", "0":
		return ModeDisabled, nil
	case "email", "1":
		return ModeByEmail, nil
	case "manual", "2":
		return ModeManual, nil
	case "automatic", "3":
		return ModeAutomatic, nil
	default:
		return ModeDisabled, errors.Codef(codes.InvalidArgument, "accounts: unknown registration mode '%s'", s)
	}
}

// Origin describes how a registration attempt arrived.
type Origin int

const (
	// A submission of the public registration form.
	OriginForm Origin = iota

	// An identity verified by an external provider, created on the fly.
	OriginExternal
)

func (o Origin) String() string {
	if o == OriginExternal {
		return "external"
	}
	return "form"
}

// Decision is the outcome of the registration policy for one attempt.
type Decision int

const (
	// No account is created.
	RejectRegistration Decision = iota

	// The account is created active and the user proceeds immediately.
	ActivateNow

	// The account is created pending and a registration token is issued for
	// email confirmation.
	PendingEmailActivation

	// The account is created pending and waits for administrator approval.
	PendingManualActivation
)

func (d Decision) String() string {
	switch d {
	case RejectRegistration:
		return "reject"
	case ActivateNow:
		return "activate"
	case PendingEmailActivation:
		return "pending email activation"
	case PendingManualActivation:
		return "pending manual activation"
	default:
		return "unknown"
	}
}

// Decide applies the registration policy. Externally verified identities are
// treated as pre-verified by their provider, so they activate immediately in
// every mode, including when the public form is disabled. The mode is passed
// explicitly, callers read it from configuration once per request.
func Decide(mode RegistrationMode, origin Origin) Decision {
	if origin == OriginExternal {
		return ActivateNow
	}
	switch mode {
	case ModeAutomatic:
		return ActivateNow
	case ModeByEmail:
		return PendingEmailActivation
	case ModeManual:
		return PendingManualActivation
	default:
		return RejectRegistration
	}
}
