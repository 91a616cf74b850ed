package goAccount

import (
	"context"

	"github.com/MrEthical07/goAccount/account"
	internalflows "github.com/MrEthical07/goAccount/internal/flows"
)

// Account model re-exported from the account package.
type (
	User       = account.User
	Role       = account.Role
	Permission = account.Permission
	LogEntry   = account.LogEntry
	LogKind    = account.LogKind

	// AccountStore is the transactional persistence port.
	AccountStore = account.Store
	// AccountTx is one flow's view of the store.
	AccountTx = account.Tx
)

// RegisterInput carries the registration form.
type RegisterInput = internalflows.RegisterInput

// MailMessage is a templated email handed to a [Notifier].
type MailMessage struct {
	Subject    string         `json:"subject"`
	Template   string         `json:"template"`
	Recipients []string       `json:"recipients"`
	Data       map[string]any `json:"data,omitempty"`
}

// Notifier renders and delivers templated mail. The engine calls it from a
// background goroutine; a returned error is logged and counted, never
// surfaced to the flow.
type Notifier interface {
	Send(ctx context.Context, msg MailMessage) error
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(ctx context.Context, msg MailMessage) error

func (f NotifierFunc) Send(ctx context.Context, msg MailMessage) error {
	return f(ctx, msg)
}
