package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goAccount "github.com/MrEthical07/goAccount"
)

type recordingMailer struct {
	sent []Email
	err  error
}

func (m *recordingMailer) Deliver(_ context.Context, email Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func newTestNotifier(t *testing.T, mailer Mailer) *Notifier {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	n, err := NewNotifier(r, mailer, "no-reply@example.com")
	require.NoError(t, err)
	return n
}

func TestNotifierRendersAndDelivers(t *testing.T) {
	mailer := &recordingMailer{}
	n := newTestNotifier(t, mailer)

	err := n.Send(context.Background(), goAccount.MailMessage{
		Subject:    "Registration",
		Template:   "register.html",
		Recipients: []string{"jane@example.com"},
		Data:       map[string]any{"token": "tok-1", "name": "Jane"},
	})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	got := mailer.sent[0]
	assert.Equal(t, "no-reply@example.com", got.From)
	assert.Equal(t, []string{"jane@example.com"}, got.To)
	assert.Equal(t, "Registration", got.Subject)
	assert.Contains(t, got.HTML, "tok-1")
}

func TestNotifierErrors(t *testing.T) {
	boom := errors.New("smtp down")
	n := newTestNotifier(t, &recordingMailer{err: boom})
	ctx := context.Background()

	err := n.Send(ctx, goAccount.MailMessage{Template: "register.html"})
	assert.Error(t, err, "no recipients")

	err = n.Send(ctx, goAccount.MailMessage{Template: "nope.html", Recipients: []string{"a@x.com"}})
	assert.ErrorIs(t, err, ErrUnknownTemplate)

	err = n.Send(ctx, goAccount.MailMessage{Template: "register.html", Recipients: []string{"a@x.com"}})
	assert.ErrorIs(t, err, boom)

	_, err = NewNotifier(nil, &recordingMailer{}, "")
	assert.Error(t, err)
}

func TestLogMailer(t *testing.T) {
	m := NewLogMailer(nil, true)
	assert.NoError(t, m.Deliver(context.Background(), Email{To: []string{"a@x.com"}, Subject: "s"}))
}

func goAccountMessage(to string) goAccount.MailMessage {
	return goAccount.MailMessage{
		Subject:    "Forgot password",
		Template:   "request_password_reset.html",
		Recipients: []string{to},
		Data:       map[string]any{"token": "tok"},
	}
}
