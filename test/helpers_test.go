package test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/MrEthical07/goAccount/store/memstore"
	"github.com/MrEthical07/goAccount/store/sqlstore"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testConfig() goAccount.Config {
	cfg := goAccount.DefaultConfig()
	cfg.Token.SigningMethod = "hs256"
	cfg.Token.PrivateKey = testSecret
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

// storeFactories lists every AccountStore the engine must behave the same on.
func storeFactories() map[string]func(t *testing.T) goAccount.AccountStore {
	return map[string]func(t *testing.T) goAccount.AccountStore{
		"memstore": func(*testing.T) goAccount.AccountStore { return memstore.New() },
		"sqlite": func(t *testing.T) goAccount.AccountStore {
			ctx := context.Background()
			s, err := sqlstore.Open(ctx, sqlstore.SQLite, "file:"+filepath.Join(t.TempDir(), "accounts.db"))
			if err != nil {
				t.Fatalf("sqlstore.Open failed: %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			if err := s.Migrate(ctx); err != nil {
				t.Fatalf("Migrate failed: %v", err)
			}
			return s
		},
	}
}

type mailbox chan goAccount.MailMessage

func (m mailbox) Send(_ context.Context, msg goAccount.MailMessage) error {
	m <- msg
	return nil
}

func (m mailbox) token(t *testing.T) string {
	t.Helper()
	select {
	case msg := <-m:
		tok, _ := msg.Data["token"].(string)
		if tok == "" {
			t.Fatalf("mail %q carries no token", msg.Subject)
		}
		return tok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mail")
		return ""
	}
}

func newEngine(t *testing.T, store goAccount.AccountStore, cfg goAccount.Config) (*goAccount.Engine, mailbox) {
	t.Helper()
	mail := make(mailbox, 64)
	engine, err := goAccount.New().WithConfig(cfg).WithAccountStore(store).WithNotifier(mail).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, mail
}

func mustResult(t *testing.T, res goAccount.Result, err error, code int) goAccount.Result {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Code != code {
		t.Fatalf("expected code %d, got %d (%q)", code, res.Code, res.Message)
	}
	return res
}
