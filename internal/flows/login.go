package flows

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrEthical07/goAccount/account"
	"github.com/MrEthical07/goAccount/jwt"
)

// RunLogin authenticates email and password. Every rejection yields the
// same outcome so callers cannot tell which check failed.
func RunLogin(ctx context.Context, email, password string, deps Deps) (Outcome, error) {
	normalizeDeps(&deps)
	if !deps.ready() {
		return Outcome{}, deps.Errors.EngineNotReady
	}

	rejected := failure(KindAuthFailed, http.StatusNotFound, MsgIncorrectCredentials, deps.Errors.AuthFailed)

	var (
		user  *account.User
		token string
	)
	err := deps.Store.WithinTx(ctx, func(ctx context.Context, tx account.Tx) error {
		u, err := tx.FindByEmail(ctx, email)
		if errors.Is(err, account.ErrUserNotFound) {
			return errRejected
		}
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if !u.Confirmed {
			return errRejected
		}

		ok, err := deps.VerifyPassword(password, u.PasswordHash)
		if err != nil {
			deps.Warn(ctx, "stored password hash cannot be verified", "user_id", u.ID, "error", err)
			return errRejected
		}
		if !ok {
			return errRejected
		}

		if deps.UpgradeOnLogin && deps.NeedsUpgrade != nil {
			if err := upgradeHash(ctx, tx, u, password, deps); err != nil {
				return err
			}
		}

		now := deps.Now()
		if err := tx.AppendLog(ctx, account.LogEntry{UserID: u.ID, Kind: account.LogLogin, At: now}); err != nil {
			return fmt.Errorf("append login log: %w", err)
		}

		token, err = deps.IssueToken(u.Email, jwt.Claims{jwt.ClaimRoles: u.RoleNames()}, jwt.NoExpiry)
		if err != nil {
			return fmt.Errorf("issue access token: %w", err)
		}
		user = u
		return nil
	})
	if errors.Is(err, errRejected) {
		deps.MetricInc(deps.Metrics.LoginFailure)
		return rejected, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.Publish(ctx, deps.Events.LoggedIn, user.Public())

	out := success("")
	out.AccessToken = token
	return out, nil
}

// upgradeHash rehashes password when the stored encoding is outdated.
// A hashing failure leaves the old hash in place.
func upgradeHash(ctx context.Context, tx account.Tx, u *account.User, password string, deps Deps) error {
	needs, err := deps.NeedsUpgrade(u.PasswordHash)
	if err != nil || !needs {
		return nil
	}

	upgraded, err := deps.HashPassword(password)
	if err != nil {
		deps.Warn(ctx, "password hash upgrade failed", "user_id", u.ID, "error", err)
		return nil
	}

	u.PasswordHash = upgraded
	if err := tx.Update(ctx, u); err != nil {
		return fmt.Errorf("store upgraded hash: %w", err)
	}
	deps.MetricInc(deps.Metrics.PasswordHashUpgraded)
	return nil
}
