// Package accounts implements user accounts: login with local or external
// credentials, self-registration governed by a global registration mode,
// email activation tokens, forced password changes, and session tokens.
//
// ### Configuration:
//
// |----------------------------------|----------------------------------|
// | Env                              | YAML                             |
// |----------------------------------|----------------------------------|
// | OP__ACCOUNTS__SELF_REGISTRATION  | accounts.selfRegistration        |
// | OP__ACCOUNTS__SIGNING_KEY        | accounts.signingKey              |
// | OP__ACCOUNTS__EXPIRATION         | accounts.expiration              |
// | OP__ACCOUNTS__ACTIVATION_EXPIRATION | accounts.activationExpiration |
// | OP__ACCOUNTS__PENDING_EXPIRATION | accounts.pendingExpiration       |
// |----------------------------------|----------------------------------|
package accounts

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"github.com/aakritigupta/openproject"
	"github.com/aakritigupta/openproject/plugins/email"
	"github.com/aakritigupta/openproject/plugins/eventbus"
	"github.com/aakritigupta/openproject/plugins/storage"
	"github.com/aakritigupta/openproject/plugins/templates"
)

// Constant name for identifying the accounts plugin.
const PluginName = "accounts"

func init() {
	openproject.RegisterConfigKeys(
		openproject.ConfigKeyInfo{
			Key:         "accounts.selfRegistration",
			Description: "Registration policy: disabled, email, manual, or automatic",
			Type:        "string",
			Default:     "manual",
		},
		openproject.ConfigKeyInfo{
			Key:         "accounts.signingKey",
			Description: "JWT signing key for session tokens",
			Type:        "string",
		},
		openproject.ConfigKeyInfo{
			Key:         "accounts.expiration",
			Description: "How long session tokens should be valid for",
			Type:        "duration",
			Default:     "24h",
		},
		openproject.ConfigKeyInfo{
			Key:         "accounts.activationExpiration",
			Description: "How long registration tokens should be valid for",
			Type:        "duration",
			Default:     "24h",
		},
		openproject.ConfigKeyInfo{
			Key:         "accounts.pendingExpiration",
			Description: "How long stashed incomplete identity payloads are kept",
			Type:        "duration",
			Default:     "30m",
		},
	)
}

// AccountsOption allows configuration of the AccountsPlugin.
type AccountsOption func(*AccountsPlugin)

// WithSigningKey sets the signing key to use when signing session tokens.
func WithSigningKey(signingKey []byte) AccountsOption {
	return func(p *AccountsPlugin) {
		p.signingKey = signingKey
	}
}

// WithExpiration sets the expiration to use when signing session tokens.
func WithExpiration(expiration time.Duration) AccountsOption {
	return func(p *AccountsPlugin) {
		p.sessionExpiration = expiration
	}
}

// WithRegistrationMode fixes the registration mode, overriding configuration.
func WithRegistrationMode(mode RegistrationMode) AccountsOption {
	return func(p *AccountsPlugin) {
		p.modeOverride = &mode
	}
}

// WithHasher sets a custom password hasher.
func WithHasher(h Hasher) AccountsOption {
	return func(p *AccountsPlugin) {
		p.hasher = h
	}
}

// WithAuthSource adds an external auth source consulted when a login does not
// match a local password. Sources are tried in registration order.
func WithAuthSource(s AuthSource) AccountsOption {
	return func(p *AccountsPlugin) {
		p.sources = append(p.sources, s)
	}
}

// WithNotifier sets a custom notifier for registration tokens.
func WithNotifier(n Notifier) AccountsOption {
	return func(p *AccountsPlugin) {
		p.notifier = n
	}
}

// Plugin returns a new AccountsPlugin.
func Plugin(opts ...AccountsOption) *AccountsPlugin {
	openproject.EnsureConfigDefaults()

	signingKey := openproject.ConfigString("accounts.signingKey")
	if signingKey == "" {
		signingKey = randomSigningKey()
		log.Println("⚠️  WARNING: Using randomly generated session signing key. " +
			"Sessions will be invalidated on server restart. " +
			"Set OP__ACCOUNTS__SIGNING_KEY or accounts.signingKey in openproject.yaml for production.")
	}

	p := &AccountsPlugin{
		signingKey:        []byte(signingKey),
		sessionExpiration: openproject.ConfigMustDuration("accounts.expiration"),
		activationTTL:     openproject.ConfigMustDuration("accounts.activationExpiration"),
		hasher:            DefaultHasher,
		pending:           NewPendingStore(openproject.ConfigMustDuration("accounts.pendingExpiration")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func randomSigningKey() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate random signing key: " + err.Error())
	}
	return hex.EncodeToString(key)
}

// AccountsPlugin manages user accounts and their sessions.
type AccountsPlugin struct {
	store    storage.Store
	bus      eventbus.EventBus
	notifier Notifier
	hasher   Hasher
	sources  []AuthSource
	pending  *PendingStore

	signingKey        []byte
	sessionExpiration time.Duration
	activationTTL     time.Duration
	modeOverride      *RegistrationMode
}

// From openproject.Plugin.
func (p *AccountsPlugin) Name() string {
	return PluginName
}

// From openproject.DependentPlugin.
func (p *AccountsPlugin) Deps() []string {
	return []string{storage.PluginName}
}

// From openproject.OptionalDependentPlugin.
func (p *AccountsPlugin) OptDeps() []string {
	return []string{eventbus.PluginName, email.PluginName, templates.PluginName}
}

// From openproject.InitializablePlugin.
func (p *AccountsPlugin) Init(ctx context.Context, r *openproject.Registry) error {
	sp := r.Get(storage.PluginName).(*storage.StoragePlugin)
	p.store = sp
	if err := sp.InitModel(&User{}); err != nil {
		return err
	}
	if err := sp.InitModel(&RegistrationToken{}); err != nil {
		return err
	}

	if bp, ok := r.Get(eventbus.PluginName).(*eventbus.EventBusPlugin); ok && bp != nil {
		p.bus = bp
	}

	if p.notifier == nil {
		ep, _ := r.Get(email.PluginName).(*email.EmailPlugin)
		tp, _ := r.Get(templates.PluginName).(*templates.TemplatePlugin)
		if ep != nil && tp != nil {
			p.notifier = &emailNotifier{
				emailer:  ep,
				renderer: tp,
				baseURL:  openproject.ConfigString("address"),
			}
		} else {
			p.notifier = NopNotifier{}
		}
	}
	return nil
}

// RegistrationMode returns the active registration policy. Read from
// configuration on every call so administrative changes take effect without a
// restart, unless fixed via WithRegistrationMode.
func (p *AccountsPlugin) RegistrationMode() RegistrationMode {
	if p.modeOverride != nil {
		return *p.modeOverride
	}
	mode, err := ParseRegistrationMode(openproject.ConfigString("accounts.selfRegistration"))
	if err != nil {
		return ModeDisabled
	}
	return mode
}

func (p *AccountsPlugin) publish(topic string, u *User) {
	if p.bus != nil {
		p.bus.Publish(topic, AccountEvent{Login: u.Login, Email: u.Email})
	}
}
