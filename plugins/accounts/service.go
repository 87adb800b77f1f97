package accounts

import (
	"context"
	"time"

	"github.com/aakritigupta/openproject/errors"
	"github.com/aakritigupta/openproject/logging"
	"github.com/aakritigupta/openproject/plugins/storage"
)

// Form and destination names produced by the account flows. Destinations are
// paths relative to the installation address.
const (
	HomePath       = "/"
	LoginPath      = "/login"
	FirstLoginPath = "/my/first_login"
	AccountPath    = "/my/account"

	LoginForm          = "login"
	RegisterForm       = "register"
	PasswordChangeForm = "password_change"
)

// Outcome is the response decision for an account operation: either a
// redirect to a named destination or a form to render, never both.
type Outcome struct {
	// Redirect target, empty when a form should be rendered.
	Redirect string

	// Name of the form to render.
	Render string

	// Field-level validation messages for a re-rendered form.
	Fields map[string]string

	// Prefilled form values, e.g. attributes released by an identity provider.
	Data map[string]string

	// Session token issued on login success.
	Token string

	// Correlation key for completing a stashed external registration.
	PendingKey string
}

func redirectTo(target string) *Outcome {
	return &Outcome{Redirect: target}
}

func renderForm(name string) *Outcome {
	return &Outcome{Render: name}
}

func (o *Outcome) withField(field, msg string) *Outcome {
	if o.Fields == nil {
		o.Fields = map[string]string{}
	}
	o.Fields[field] = msg
	return o
}

// LoginRequest is a submission of the login form. Host is the request's host
// component, used to validate BackURL.
type LoginRequest struct {
	Login    string
	Password string
	BackURL  string
	Host     string
}

// RegisterRequest is a submission of the registration form. PendingKey
// correlates a completion submission with a stashed external identity.
type RegisterRequest struct {
	Login      string
	Email      string
	Name       string
	Password   string
	PendingKey string
}

// ChangePasswordRequest is a submission of the password change form.
type ChangePasswordRequest struct {
	Login        string
	Current      string
	New          string
	Confirmation string
}

// FindUser returns the user with the given login, or nil when none exists.
func (p *AccountsPlugin) FindUser(ctx context.Context, login string) (*User, error) {
	u := &User{}
	err := p.store.Read(ctx, login, u)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (p *AccountsPlugin) findUserByEmail(ctx context.Context, email string) (*User, error) {
	// An empty email would list with no filter and match arbitrary users.
	if email == "" {
		return nil, nil
	}
	var users []User
	if err := p.store.List(ctx, &users, &User{Email: email}); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (p *AccountsPlugin) findUserByIdentity(ctx context.Context, ref string) (*User, error) {
	var users []User
	if err := p.store.List(ctx, &users, &User{Identity: ref}); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// createUser persists a new user, enforcing login and email uniqueness. The
// login constraint is the store's primary key; the email check reads first,
// concurrent losers of the race surface the store's conflict error instead.
// Returns field-level messages when the attributes are taken.
func (p *AccountsPlugin) createUser(ctx context.Context, u *User) (map[string]string, error) {
	existing, err := p.findUserByEmail(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return map[string]string{"email": "has already been taken"}, nil
	}
	u.CreatedAt = time.Now()
	err = p.store.Create(ctx, u)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return map[string]string{"login": "has already been taken"}, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}

// Login authenticates a user against their local password or, failing that,
// the registered auth sources. A login known only to an auth source creates
// the account on the fly, which is permitted even when self-registration is
// disabled; when the source releases too few attributes the completion form
// is rendered instead. Every success redirect passes through the back-URL
// validator.
func (p *AccountsPlugin) Login(ctx context.Context, req *LoginRequest) (*Outcome, error) {
	logging.Track(ctx, "accounts.login", req.Login)
	logging.Info(ctx, "Login attempt")

	u, err := p.FindUser(ctx, req.Login)
	if err != nil {
		return nil, err
	}

	authenticated := false
	if u != nil && len(u.HashedPassword) > 0 {
		authenticated = p.hasher.Compare(u.HashedPassword, []byte(req.Password)) == nil
	}

	if !authenticated {
		acct, sourceID, err := p.authenticateViaSources(ctx, req.Login, req.Password)
		if err != nil {
			return nil, err
		}
		if acct != nil {
			if u == nil {
				if !acct.Complete() {
					// The directory verified the login but holds too few
					// attributes for an account; collect the rest before
					// creating it.
					return p.renderCompletion(ctx, PendingRegistration{
						Login:        acct.Login,
						Name:         acct.Name,
						Email:        acct.Email,
						AuthSourceID: sourceID,
					}), nil
				}
				u, err = p.createOnTheFly(ctx, acct, sourceID)
				if err != nil {
					return nil, err
				}
				if u == nil {
					return renderForm(LoginForm).withField("login", "has already been taken"), nil
				}
			}
			authenticated = true
		}
	}

	if !authenticated {
		logging.Infow(ctx, "Login rejected", "login", req.Login)
		return renderForm(LoginForm).withField("password", "is invalid"), nil
	}

	if !u.Active() {
		logging.Infow(ctx, "Login for inactive account", "login", u.Login, "status", u.Status)
		return renderForm(LoginForm).withField("login", "account is not active"), nil
	}

	if u.ForcePasswordChange {
		if !u.ChangePasswordAllowed() {
			logging.Warnw(ctx, "Password change forced but not permitted", "login", u.Login)
			return redirectTo(LoginPath), nil
		}
		return renderForm(PasswordChangeForm), nil
	}

	return p.loginSuccess(ctx, u, req.BackURL, req.Host, DefaultBackURL)
}

// authenticateViaSources tries each auth source in order. A source failure is
// logged and skipped, an unreachable directory should not lock out users known
// to later sources.
func (p *AccountsPlugin) authenticateViaSources(ctx context.Context, login, password string) (*AuthSourceAccount, string, error) {
	for _, s := range p.sources {
		acct, err := s.Authenticate(ctx, login, password)
		if err != nil {
			logging.Errorw(ctx, "accounts: auth source failed", "source", s.ID(), "error", err)
			continue
		}
		if acct != nil {
			return acct, s.ID(), nil
		}
	}
	return nil, "", nil
}

// createOnTheFly creates an active account for an identity verified by an
// external collaborator. Returns nil when creation lost a uniqueness race.
func (p *AccountsPlugin) createOnTheFly(ctx context.Context, acct *AuthSourceAccount, sourceID string) (*User, error) {
	u := &User{
		Login:        acct.Login,
		Email:        acct.Email,
		Name:         acct.Name,
		Status:       StatusActive,
		AuthSourceID: sourceID,
	}
	fields, err := p.createUser(ctx, u)
	if err != nil {
		return nil, err
	}
	if fields != nil {
		logging.Warnw(ctx, "accounts: on-the-fly creation conflict", "login", acct.Login)
		return nil, nil
	}
	logging.Infow(ctx, "Account created on the fly", "login", u.Login, "authSource", sourceID)
	p.publish(RegisteredEvent, u)
	return u, nil
}

// renderCompletion stashes a partially attributed registration and renders
// the completion form with the known attributes prefilled.
func (p *AccountsPlugin) renderCompletion(ctx context.Context, reg PendingRegistration) *Outcome {
	key := p.pending.Put(reg)
	logging.Infow(ctx, "Incomplete external registration, rendering completion form",
		"login", reg.Login, "identity", reg.Identity, "authSource", reg.AuthSourceID)
	out := renderForm(RegisterForm)
	out.PendingKey = key
	out.Data = map[string]string{"name": reg.Name, "email": reg.Email}
	return out
}

func (p *AccountsPlugin) loginSuccess(ctx context.Context, u *User, backURL, host, fallback string) (*Outcome, error) {
	token, err := p.IssueSessionToken(u)
	if err != nil {
		return nil, err
	}
	p.publish(LoginEvent, u)
	out := redirectTo(SanitizeBackURL(backURL, host, fallback))
	out.Token = token
	return out, nil
}

// Authorize validates the session token presented with a request and enforces
// the forced password change gate: while the flag is set, every request other
// than the password change submission is bounced, to the change form when the
// user may self-serve, otherwise to the login page.
func (p *AccountsPlugin) Authorize(ctx context.Context, token string) (*Session, *Outcome, error) {
	session, err := p.ParseSessionToken(token)
	if err != nil {
		return nil, redirectTo(LoginPath), nil
	}
	u, err := p.FindUser(ctx, session.Login)
	if err != nil {
		return nil, nil, err
	}
	if u == nil || !u.Active() {
		return nil, redirectTo(LoginPath), nil
	}
	if u.ForcePasswordChange {
		if !u.ChangePasswordAllowed() {
			return nil, redirectTo(LoginPath), nil
		}
		return nil, renderForm(PasswordChangeForm), nil
	}
	return &session, nil, nil
}

// ShowRegister decides whether to render the registration form. When a
// pending external payload exists the completion form is rendered with the
// provider's attributes prefilled, regardless of the registration mode. With
// self-registration disabled the visitor is sent home.
func (p *AccountsPlugin) ShowRegister(ctx context.Context, pendingKey string) *Outcome {
	if pendingKey != "" {
		if reg, ok := p.pending.Peek(pendingKey); ok {
			out := renderForm(RegisterForm)
			out.PendingKey = pendingKey
			out.Data = map[string]string{"name": reg.Name, "email": reg.Email}
			return out
		}
	}
	if Decide(p.RegistrationMode(), OriginForm) == RejectRegistration {
		return redirectTo(HomePath)
	}
	return renderForm(RegisterForm)
}

// Register processes a registration form submission. Submissions carrying a
// pending key complete a stashed external identity and follow the external
// origin rules; plain submissions follow the active registration mode.
func (p *AccountsPlugin) Register(ctx context.Context, req *RegisterRequest) (*Outcome, error) {
	logging.Track(ctx, "accounts.register", req.Login)

	if req.PendingKey != "" {
		return p.completePending(ctx, req)
	}

	mode := p.RegistrationMode()
	decision := Decide(mode, OriginForm)
	if decision == RejectRegistration {
		logging.Info(ctx, "Registration rejected, self-registration disabled")
		return redirectTo(HomePath), nil
	}

	if fields := validateRegistration(req); len(fields) > 0 {
		return &Outcome{Render: RegisterForm, Fields: fields}, nil
	}

	hashed, err := p.hasher.Generate([]byte(req.Password))
	if err != nil {
		return nil, err
	}
	u := &User{
		Login:          req.Login,
		Email:          req.Email,
		Name:           req.Name,
		HashedPassword: hashed,
	}

	switch decision {
	case ActivateNow:
		u.Status = StatusActive
	default:
		u.Status = StatusPending
	}

	fields, err := p.createUser(ctx, u)
	if err != nil {
		return nil, err
	}
	if fields != nil {
		return &Outcome{Render: RegisterForm, Fields: fields}, nil
	}
	p.publish(RegisteredEvent, u)

	switch decision {
	case ActivateNow:
		logging.Infow(ctx, "Account registered and activated", "login", u.Login)
		return p.loginSuccess(ctx, u, "", "", FirstLoginPath)

	case PendingEmailActivation:
		token := NewRegistrationToken(u.Login, p.activationTTL)
		if err := p.store.Upsert(ctx, token); err != nil {
			return nil, err
		}
		if err := p.notifier.SendActivationToken(ctx, u.Email, token); err != nil {
			// Fire and forget, the account exists and the token can be resent.
			logging.Errorw(ctx, "accounts: activation notification failed", "login", u.Login, "error", err)
		}
		logging.Infow(ctx, "Account registered, email activation pending", "login", u.Login)
		return redirectTo(LoginPath), nil

	default:
		logging.Infow(ctx, "Account registered, awaiting approval", "login", u.Login)
		return redirectTo(LoginPath), nil
	}
}

// completePending finishes a registration that started with a partially
// attributed external login. The stashed identity or auth source reference is
// attached to the new account and the external origin rules apply, the
// account activates immediately. Directory logins land on the account page,
// provider logins on the first login page.
func (p *AccountsPlugin) completePending(ctx context.Context, req *RegisterRequest) (*Outcome, error) {
	reg, ok := p.pending.Take(req.PendingKey)
	if !ok {
		logging.Infow(ctx, "Registration completion with unknown or expired key")
		return redirectTo(LoginPath), nil
	}

	email := req.Email
	if email == "" {
		email = reg.Email
	}
	name := req.Name
	if name == "" {
		name = reg.Name
	}
	login := req.Login
	if login == "" {
		login = reg.Login
	}
	if login == "" {
		login = email
	}
	if login == "" || email == "" {
		key := p.pending.Put(reg)
		out := &Outcome{Render: RegisterForm, PendingKey: key}
		if email == "" {
			out.withField("email", "can not be blank")
		}
		return out, nil
	}

	u := &User{
		Login:        login,
		Email:        email,
		Name:         name,
		Status:       StatusActive,
		Identity:     reg.Identity,
		AuthSourceID: reg.AuthSourceID,
	}
	fields, err := p.createUser(ctx, u)
	if err != nil {
		return nil, err
	}
	if fields != nil {
		// Keep the verified registration available for another attempt.
		key := p.pending.Put(reg)
		return &Outcome{Render: RegisterForm, Fields: fields, PendingKey: key}, nil
	}

	logging.Infow(ctx, "External registration completed", "login", u.Login,
		"identity", u.Identity, "authSource", u.AuthSourceID)
	p.publish(RegisteredEvent, u)
	if reg.AuthSourceID != "" {
		return p.loginSuccess(ctx, u, "", "", AccountPath)
	}
	return p.loginSuccess(ctx, u, "", "", FirstLoginPath)
}

// OmniauthCallback handles a successful identity provider exchange. Known
// identities log in; complete new payloads create an account on the fly,
// which is permitted even when self-registration is disabled; incomplete
// payloads are stashed and the completion form rendered.
func (p *AccountsPlugin) OmniauthCallback(ctx context.Context, hash AuthHash, backURL, host string) (*Outcome, error) {
	logging.Track(ctx, "accounts.provider", hash.Provider)

	if err := hash.Validate(); err != nil {
		logging.Warnw(ctx, "Malformed identity provider payload", "error", err)
		return redirectTo(LoginPath), nil
	}

	u, err := p.findUserByIdentity(ctx, hash.IdentityRef())
	if err != nil {
		return nil, err
	}
	if u != nil {
		if !u.Active() {
			logging.Infow(ctx, "External login for inactive account", "login", u.Login)
			return redirectTo(LoginPath), nil
		}
		if u.ForcePasswordChange && !u.ChangePasswordAllowed() {
			return redirectTo(LoginPath), nil
		}
		return p.loginSuccess(ctx, u, backURL, host, DefaultBackURL)
	}

	pending := PendingRegistration{
		Name:     hash.DisplayName(),
		Email:    hash.Email,
		Identity: hash.IdentityRef(),
	}
	if !hash.Complete() {
		return p.renderCompletion(ctx, pending), nil
	}

	u = &User{
		Login:    hash.Email,
		Email:    hash.Email,
		Name:     hash.DisplayName(),
		Status:   StatusActive,
		Identity: hash.IdentityRef(),
	}
	fields, err := p.createUser(ctx, u)
	if err != nil {
		return nil, err
	}
	if fields != nil {
		key := p.pending.Put(pending)
		return &Outcome{Render: RegisterForm, Fields: fields, PendingKey: key}, nil
	}

	logging.Infow(ctx, "Account created from external identity", "login", u.Login, "identity", u.Identity)
	p.publish(RegisteredEvent, u)
	return p.loginSuccess(ctx, u, backURL, host, FirstLoginPath)
}

// OmniauthFailure handles a failed or aborted identity provider exchange.
// Never treated as an anonymous login, the user lands back on the login page.
func (p *AccountsPlugin) OmniauthFailure(ctx context.Context, provider string) *Outcome {
	logging.Warnw(ctx, "External authentication failed", "provider", provider)
	return redirectTo(LoginPath)
}

// ChangePassword processes a password change submission. Accounts whose
// credentials are externally managed are bounced to the login page without
// any mutation, even when the change was forced.
func (p *AccountsPlugin) ChangePassword(ctx context.Context, req *ChangePasswordRequest) (*Outcome, error) {
	u, err := p.FindUser(ctx, req.Login)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return redirectTo(LoginPath), nil
	}
	if !u.ChangePasswordAllowed() {
		logging.Warnw(ctx, "Password change not permitted", "login", u.Login)
		return redirectTo(LoginPath), nil
	}
	if p.hasher.Compare(u.HashedPassword, []byte(req.Current)) != nil {
		return renderForm(PasswordChangeForm).withField("current", "is invalid"), nil
	}
	if req.New == "" {
		return renderForm(PasswordChangeForm).withField("new", "can not be blank"), nil
	}
	if req.New != req.Confirmation {
		return renderForm(PasswordChangeForm).withField("confirmation", "does not match"), nil
	}

	hashed, err := p.hasher.Generate([]byte(req.New))
	if err != nil {
		return nil, err
	}
	u.HashedPassword = hashed
	u.ForcePasswordChange = false
	if err := p.store.Update(ctx, u); err != nil {
		return nil, err
	}
	logging.Infow(ctx, "Password changed", "login", u.Login)
	return redirectTo(AccountPath), nil
}

// Activate redeems a registration token, transitioning the account from
// pending to active and consuming the token. Invalid and expired tokens land
// on the login page without any mutation.
func (p *AccountsPlugin) Activate(ctx context.Context, tokenValue string) (*Outcome, error) {
	var tokens []RegistrationToken
	if err := p.store.List(ctx, &tokens, &RegistrationToken{Value: tokenValue}); err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		logging.Infow(ctx, "Activation with unknown token")
		return redirectTo(LoginPath), nil
	}
	token := &tokens[0]
	if token.Action != ActionRegister || token.Expired() {
		logging.Infow(ctx, "Activation with stale token", "login", token.Login)
		return redirectTo(LoginPath), nil
	}

	u, err := p.FindUser(ctx, token.Login)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return redirectTo(LoginPath), nil
	}
	if u.Status == StatusPending {
		u.Status = StatusActive
		if err := p.store.Update(ctx, u); err != nil {
			return nil, err
		}
		p.publish(ActivatedEvent, u)
		logging.Infow(ctx, "Account activated", "login", u.Login)
	}
	if err := p.store.Delete(ctx, token); err != nil {
		return nil, err
	}
	return redirectTo(LoginPath), nil
}

func validateRegistration(req *RegisterRequest) map[string]string {
	fields := map[string]string{}
	if req.Login == "" {
		fields["login"] = "can not be blank"
	}
	if req.Email == "" {
		fields["email"] = "can not be blank"
	}
	if req.Password == "" {
		fields["password"] = "can not be blank"
	}
	return fields
}
