package goAccount

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goAccount/store/memstore"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.SigningMethod = "hs256"
	cfg.Token.PrivateKey = testSecret
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.BcryptCost = 4
	cfg.Metrics.Enabled = true
	return cfg
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type captureNotifier struct {
	msgs chan MailMessage
	err  error
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{msgs: make(chan MailMessage, 64)}
}

func (n *captureNotifier) Send(ctx context.Context, msg MailMessage) error {
	select {
	case n.msgs <- msg:
	case <-ctx.Done():
		return ctx.Err()
	}
	return n.err
}

func (n *captureNotifier) next(t *testing.T) MailMessage {
	t.Helper()
	select {
	case msg := <-n.msgs:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for mail")
		return MailMessage{}
	}
}

type testEnv struct {
	engine   *Engine
	store    *memstore.Store
	notifier *captureNotifier
	clock    *testClock
	events   *ChannelSink
}

func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	env := &testEnv{
		store:    memstore.New(),
		notifier: newCaptureNotifier(),
		clock:    newTestClock(),
		events:   NewChannelSink(64),
	}

	engine, err := New().
		WithConfig(cfg).
		WithAccountStore(env.store).
		WithNotifier(env.notifier).
		WithEventSink(env.events).
		WithClock(env.clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	env.engine = engine

	return env
}

func (env *testEnv) nextEvent(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-env.events.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}

// registerConfirmed registers and confirms an account, draining the mail
// and events the two flows produce.
func (env *testEnv) registerConfirmed(t *testing.T, email, pw string) *User {
	t.Helper()
	ctx := context.Background()

	res, err := env.engine.Register(ctx, RegisterInput{Email: email, Password: pw, FirstName: "Jane", LastName: "Doe"})
	if err != nil || !res.OK() {
		t.Fatalf("Register: res=%+v err=%v", res, err)
	}
	mail := env.notifier.next(t)
	env.nextEvent(t)

	res, err = env.engine.Confirm(ctx, mail.Data["token"].(string))
	if err != nil || !res.OK() {
		t.Fatalf("Confirm: res=%+v err=%v", res, err)
	}
	env.nextEvent(t)

	var user *User
	_ = env.store.WithinTx(ctx, func(ctx context.Context, tx AccountTx) error {
		u, err := tx.FindByEmail(ctx, email)
		if err != nil {
			t.Fatalf("FindByEmail: %v", err)
		}
		user = u
		return nil
	})
	return user
}

func expectResult(t *testing.T, res Result, err error, code int, msg string, sentinel error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected infrastructure error: %v", err)
	}
	if res.Code != code || res.Message != msg {
		t.Fatalf("expected %d %q, got %d %q", code, msg, res.Code, res.Message)
	}
	if sentinel == nil && res.Err() != nil {
		t.Fatalf("expected no error, got %v", res.Err())
	}
	if sentinel != nil && !errors.Is(res.Err(), sentinel) {
		t.Fatalf("expected %v, got %v", sentinel, res.Err())
	}
}
