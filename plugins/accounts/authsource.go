package accounts

import "context"

// AuthSource is an external directory that can verify a user's credentials,
// for example LDAP. Sources are consulted when a login does not match a local
// password, and may trigger on-the-fly account creation for logins that
// authenticate but have no account yet.
type AuthSource interface {
	// ID identifies the source; stored on users it creates.
	ID() string

	// Authenticate verifies the credentials and returns the account attributes
	// known to the directory, or nil when the credentials are not recognized.
	// An error indicates the source itself failed, not a bad password.
	Authenticate(ctx context.Context, login, password string) (*AuthSourceAccount, error)
}

// AuthSourceAccount is the attribute set an auth source releases for an
// authenticated login. Directories do not always hold a mail address or a
// full name for every entry.
type AuthSourceAccount struct {
	Login string
	Name  string
	Email string
}

// Complete reports whether the directory released enough attributes to create
// an account outright. Incomplete accounts collect the rest through the
// registration completion form.
func (a AuthSourceAccount) Complete() bool {
	return a.Email != "" && a.Name != ""
}
