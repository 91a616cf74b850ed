package notify

import (
	"context"
	"errors"
	"fmt"

	goAccount "github.com/MrEthical07/goAccount"
)

// Notifier renders engine mail and hands it to a Mailer. It implements
// goAccount.Notifier.
type Notifier struct {
	renderer *Renderer
	mailer   Mailer
	from     string
}

// NewNotifier wires a renderer to a mailer. from is stamped on every message.
func NewNotifier(renderer *Renderer, mailer Mailer, from string) (*Notifier, error) {
	if renderer == nil {
		return nil, errors.New("notify: renderer required")
	}
	if mailer == nil {
		return nil, errors.New("notify: mailer required")
	}
	return &Notifier{renderer: renderer, mailer: mailer, from: from}, nil
}

// Send renders msg.Template with msg.Data and delivers the result.
func (n *Notifier) Send(ctx context.Context, msg goAccount.MailMessage) error {
	if len(msg.Recipients) == 0 {
		return errors.New("notify: message has no recipients")
	}

	html, err := n.renderer.Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}

	if err := n.mailer.Deliver(ctx, Email{
		From:    n.from,
		To:      append([]string(nil), msg.Recipients...),
		Subject: msg.Subject,
		HTML:    html,
	}); err != nil {
		return fmt.Errorf("notify: deliver %s: %w", msg.Template, err)
	}
	return nil
}
