package accounts

// Topics published to the eventbus when one is registered.
const (
	LoginEvent      = "accounts.login"
	RegisteredEvent = "accounts.registered"
	ActivatedEvent  = "accounts.activated"
)

// AccountEvent is the payload published for account lifecycle events.
type AccountEvent struct {
	Login string
	Email string
}
