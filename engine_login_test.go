package goAccount

import (
	"context"
	"testing"

	"github.com/MrEthical07/goAccount/jwt"
	"github.com/MrEthical07/goAccount/password"
)

const msgIncorrect = "Incorrect email or password."

func TestLoginIssuesAccessToken(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := WithClientIP(context.Background(), "203.0.113.7")
	u := env.registerConfirmed(t, "jane@example.com", "pw")
	if err := env.store.SetRoles(u.ID, []Role{{Name: "admin"}, {Name: "staff"}}); err != nil {
		t.Fatalf("SetRoles: %v", err)
	}

	res, err := env.engine.Login(ctx, "jane@example.com", "pw")
	expectResult(t, res, err, 200, "", nil)
	if res.AccessToken == "" {
		t.Fatalf("expected access token")
	}

	tok, err := env.engine.codec.Parse(res.AccessToken)
	if err != nil {
		t.Fatalf("Parse access token: %v", err)
	}
	if tok.Subject != "jane@example.com" {
		t.Fatalf("expected subject to be the email, got %q", tok.Subject)
	}
	roles := tok.Claims.Roles()
	if len(roles) != 2 || roles[0] != "admin" || roles[1] != "staff" {
		t.Fatalf("unexpected roles claim: %v", roles)
	}
	if tok.Claims.Scoped() {
		t.Fatalf("access token must not carry a scope flag")
	}

	ev := env.nextEvent(t)
	if ev.Name != EventUserLoggedIn || ev.User == nil || ev.User.Email != "jane@example.com" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.IP != "203.0.113.7" {
		t.Fatalf("expected client IP on event, got %q", ev.IP)
	}
	if ev.User.PasswordHash != "" {
		t.Fatalf("event leaked password hash")
	}

	var logs []LogEntry
	_ = env.store.WithinTx(ctx, func(ctx context.Context, tx AccountTx) error {
		logs, err = tx.Logs(ctx, u.ID)
		return err
	})
	if len(logs) != 2 || logs[1].Kind != "login" {
		t.Fatalf("expected confirmed + login log entries, got %+v", logs)
	}
}

func TestLoginRejectionsAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.registerConfirmed(t, "jane@example.com", "pw")

	res, err := env.engine.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "pw", FirstName: "Bob"})
	if err != nil || !res.OK() {
		t.Fatalf("Register bob: %+v %v", res, err)
	}

	cases := []struct {
		name, email, pw string
		kind            ResultKind
	}{
		{"unknown email", "nobody@example.com", "pw", KindAuthFailed},
		{"unconfirmed", "bob@example.com", "pw", KindAuthFailed},
		{"wrong password", "jane@example.com", "nope", KindAuthFailed},
		{"empty password", "jane@example.com", "", KindAuthFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := env.engine.Login(ctx, tc.email, tc.pw)
			expectResult(t, res, err, 404, msgIncorrect, ErrAuthFailed)
			if res.AccessToken != "" {
				t.Fatalf("rejected login returned a token")
			}
		})
	}

	if got := env.engine.MetricsSnapshot().Counters[MetricLoginFailure]; got != uint64(len(cases)) {
		t.Fatalf("expected %d login failures, got %d", len(cases), got)
	}
}

func TestLoginUpgradesLegacyBcryptHash(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Password.AcceptLegacyBcrypt = true
		cfg.Password.UpgradeOnLogin = true
	})
	ctx := context.Background()
	u := env.registerConfirmed(t, "jane@example.com", "pw")

	legacy, err := password.NewBcrypt(4)
	if err != nil {
		t.Fatalf("NewBcrypt: %v", err)
	}
	legacyHash, err := legacy.Hash("pw")
	if err != nil {
		t.Fatalf("bcrypt hash: %v", err)
	}
	_ = env.store.WithinTx(ctx, func(ctx context.Context, tx AccountTx) error {
		u.PasswordHash = legacyHash
		return tx.Update(ctx, u)
	})

	res, err := env.engine.Login(ctx, "jane@example.com", "pw")
	expectResult(t, res, err, 200, "", nil)

	var stored string
	_ = env.store.WithinTx(ctx, func(ctx context.Context, tx AccountTx) error {
		cur, err := tx.FindByID(ctx, u.ID)
		stored = cur.PasswordHash
		return err
	})
	if stored == legacyHash || legacy.Recognizes(stored) {
		t.Fatalf("expected hash to be upgraded to argon2id, got %q", stored)
	}
	if got := env.engine.MetricsSnapshot().Counters[MetricPasswordHashUpgraded]; got != 1 {
		t.Fatalf("expected one upgrade, got %d", got)
	}

	res, err = env.engine.Login(ctx, "jane@example.com", "pw")
	expectResult(t, res, err, 200, "", nil)
}

func TestLoginWithUnrecognizedHashIsRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	u := env.registerConfirmed(t, "jane@example.com", "pw")

	_ = env.store.WithinTx(ctx, func(ctx context.Context, tx AccountTx) error {
		u.PasswordHash = "plaintext"
		return tx.Update(ctx, u)
	})

	res, err := env.engine.Login(ctx, "jane@example.com", "plaintext")
	expectResult(t, res, err, 404, msgIncorrect, ErrAuthFailed)
}

func TestUserDetail(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.registerConfirmed(t, "jane@example.com", "pw")

	res, err := env.engine.Login(ctx, "jane@example.com", "pw")
	expectResult(t, res, err, 200, "", nil)

	detail, err := env.engine.UserDetail(ctx, res.AccessToken)
	expectResult(t, detail, err, 200, "", nil)
	if detail.User == nil || detail.User.Email != "jane@example.com" || detail.User.Name != "Jane Doe" {
		t.Fatalf("unexpected user %+v", detail.User)
	}
	if detail.User.PasswordHash != "" {
		t.Fatalf("user detail leaked password hash")
	}

	bad, err := env.engine.UserDetail(ctx, "garbage")
	expectResult(t, bad, err, 401, "Invalid token.", ErrInvalidToken)

	scoped, err := env.engine.codec.Issue("jane@example.com", jwt.Claims{jwt.ClaimPasswordReset: true}, jwt.NoExpiry)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	bad, err = env.engine.UserDetail(ctx, scoped)
	expectResult(t, bad, err, 401, "Invalid token.", ErrInvalidToken)

	ghost, err := env.engine.codec.Issue("ghost@example.com", nil, jwt.NoExpiry)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	missing, err := env.engine.UserDetail(ctx, ghost)
	expectResult(t, missing, err, 404, "User not found.", ErrUserNotFound)
}
