package accounts

import (
	"context"

	"github.com/aakritigupta/openproject/errors"
	"github.com/aakritigupta/openproject/plugins/email"
	"github.com/aakritigupta/openproject/plugins/templates"
	"google.golang.org/grpc/codes"
	"gopkg.in/gomail.v2"
)

// Notifier delivers registration tokens out-of-band. Sending is
// fire-and-forget from the registration flow's perspective, a failed
// notification does not roll back the created account.
type Notifier interface {
	SendActivationToken(ctx context.Context, address string, token *RegistrationToken) error
}

// NopNotifier drops notifications. Used when no email plugin is registered.
type NopNotifier struct{}

func (NopNotifier) SendActivationToken(ctx context.Context, address string, token *RegistrationToken) error {
	return nil
}

// emailNotifier renders the activation email through the templates plugin and
// delivers it via the email plugin. Templates: "accounts_activation_subject"
// and "accounts_activation", the latter receives ActivationURL and Expiration.
type emailNotifier struct {
	emailer  *email.EmailPlugin
	renderer *templates.TemplatePlugin
	baseURL  string
}

func (n *emailNotifier) SendActivationToken(ctx context.Context, address string, token *RegistrationToken) error {
	subject, err := n.renderer.Render(ctx, "accounts_activation_subject", nil)
	if err != nil {
		return err
	}
	body, err := n.renderer.Render(ctx, "accounts_activation", map[string]interface{}{
		"ActivationURL": n.baseURL + "/account/activate?token=" + token.Value,
		"Expiration":    token.ExpiresAt,
	})
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("To", address)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	if err := n.emailer.Send(ctx, m); err != nil {
		return errors.Codef(codes.Internal, "accounts: activation email failed: %v", err)
	}
	return nil
}
