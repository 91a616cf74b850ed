package notify

import (
	"context"

	"github.com/MrEthical07/goAccount/logging"
)

// Email is a rendered message ready for delivery.
type Email struct {
	From    string   `json:"from,omitempty"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Mailer delivers rendered email.
type Mailer interface {
	Deliver(ctx context.Context, email Email) error
}

// LogMailer writes each message to a logger instead of sending it.
type LogMailer struct {
	logger   logging.Logger
	withBody bool
}

// NewLogMailer returns a mailer that logs recipients and subject, plus the
// rendered body when withBody is set.
func NewLogMailer(logger logging.Logger, withBody bool) *LogMailer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &LogMailer{logger: logger, withBody: withBody}
}

func (m *LogMailer) Deliver(ctx context.Context, email Email) error {
	args := []any{"to", email.To, "subject", email.Subject}
	if m.withBody {
		args = append(args, "html", email.HTML)
	}
	m.logger.Info(ctx, "mail", args...)
	return nil
}
