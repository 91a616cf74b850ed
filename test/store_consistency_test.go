package test

import (
	"context"
	"net/http"
	"testing"

	goAccount "github.com/MrEthical07/goAccount"
)

// TestStoresAgreeOnLifecycle drives the full account lifecycle against
// every store and expects identical results.
func TestStoresAgreeOnLifecycle(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			engine, mail := newEngine(t, factory(t), testConfig())

			in := goAccount.RegisterInput{Email: "a@x.com", Password: "pw1", FirstName: "Jane", LastName: "Doe"}
			res, err := engine.Register(ctx, in)
			mustResult(t, res, err, http.StatusOK)
			confirmToken := mail.token(t)

			res, err = engine.Register(ctx, in)
			mustResult(t, res, err, http.StatusForbidden)
			if res.Message != "Email already exists." {
				t.Fatalf("unexpected duplicate message %q", res.Message)
			}

			res, err = engine.Login(ctx, "a@x.com", "pw1")
			mustResult(t, res, err, http.StatusNotFound)

			res, err = engine.Confirm(ctx, confirmToken)
			mustResult(t, res, err, http.StatusOK)
			res, err = engine.Confirm(ctx, confirmToken)
			mustResult(t, res, err, http.StatusForbidden)

			res, err = engine.Login(ctx, "a@x.com", "pw1")
			access := mustResult(t, res, err, http.StatusOK).AccessToken

			res, err = engine.UserDetail(ctx, access)
			mustResult(t, res, err, http.StatusOK)
			if res.User.Name != "Jane Doe" || res.User.PasswordHash != "" {
				t.Fatalf("unexpected user view %+v", res.User)
			}

			res, err = engine.RequestPasswordReset(ctx, "a@x.com")
			mustResult(t, res, err, http.StatusOK)
			resetToken := mail.token(t)

			res, err = engine.VerifyResetToken(ctx, resetToken)
			mustResult(t, res, err, http.StatusOK)
			res, err = engine.CompletePasswordReset(ctx, resetToken, "pw2")
			mustResult(t, res, err, http.StatusOK)

			res, err = engine.Login(ctx, "a@x.com", "pw1")
			mustResult(t, res, err, http.StatusNotFound)
			res, err = engine.Login(ctx, "a@x.com", "pw2")
			mustResult(t, res, err, http.StatusOK)

			res, err = engine.RequestPasswordReset(ctx, "missing@x.com")
			mustResult(t, res, err, http.StatusNotFound)
		})
	}
}

func TestStoresAgreeOnAuditLog(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			engine, mail := newEngine(t, store, testConfig())

			res, err := engine.Register(ctx, goAccount.RegisterInput{Email: "b@x.com", Password: "pw", FirstName: "B"})
			mustResult(t, res, err, http.StatusOK)
			res, err = engine.Confirm(ctx, mail.token(t))
			mustResult(t, res, err, http.StatusOK)
			res, err = engine.Login(ctx, "b@x.com", "pw")
			mustResult(t, res, err, http.StatusOK)
			res, err = engine.Login(ctx, "b@x.com", "wrong")
			mustResult(t, res, err, http.StatusNotFound)

			var kinds []goAccount.LogKind
			err = store.WithinTx(ctx, func(ctx context.Context, tx goAccount.AccountTx) error {
				u, err := tx.FindByEmail(ctx, "b@x.com")
				if err != nil {
					return err
				}
				logs, err := tx.Logs(ctx, u.ID)
				if err != nil {
					return err
				}
				for _, l := range logs {
					kinds = append(kinds, l.Kind)
				}
				return nil
			})
			if err != nil {
				t.Fatalf("read logs: %v", err)
			}
			if len(kinds) != 2 {
				t.Fatalf("expected confirm and login entries, got %v", kinds)
			}
		})
	}
}
