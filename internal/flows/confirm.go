package flows

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrEthical07/goAccount/account"
	"github.com/MrEthical07/goAccount/jwt"
)

// RunConfirm flips a registered account to confirmed. Every failure,
// including an already-confirmed account, yields the same invalid-token
// outcome.
func RunConfirm(ctx context.Context, token string, deps Deps) (Outcome, error) {
	normalizeDeps(&deps)
	if !deps.ready() {
		return Outcome{}, deps.Errors.EngineNotReady
	}

	invalid := func(kind Kind) (Outcome, error) {
		deps.MetricInc(deps.Metrics.ConfirmFailure)
		return failure(kind, http.StatusForbidden, MsgInvalidToken, deps.Errors.InvalidToken), nil
	}

	tok, err := deps.ParseToken(token)
	if err != nil {
		return invalid(tokenKind(err))
	}
	if !tok.Claims.Flag(jwt.ClaimRegistration) {
		return invalid(KindClaimMismatch)
	}

	var (
		kind Kind
		user *account.User
	)
	err = deps.Store.WithinTx(ctx, func(ctx context.Context, tx account.Tx) error {
		u, err := tx.FindByID(ctx, tok.Subject)
		if errors.Is(err, account.ErrUserNotFound) {
			kind = KindNotFound
			return errRejected
		}
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if u.Confirmed {
			kind = KindConflict
			return errRejected
		}

		now := deps.Now()
		u.Confirmed = true
		u.ConfirmedAt = &now
		if err := tx.Update(ctx, u); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if err := tx.AppendLog(ctx, account.LogEntry{UserID: u.ID, Kind: account.LogConfirmed, At: now}); err != nil {
			return fmt.Errorf("append confirmation log: %w", err)
		}
		user = u
		return nil
	})
	if errors.Is(err, errRejected) {
		return invalid(kind)
	}
	if err != nil {
		return Outcome{}, err
	}

	deps.MetricInc(deps.Metrics.ConfirmSuccess)
	deps.Publish(ctx, deps.Events.Confirmed, user.Public())

	return success(MsgConfirmed), nil
}

func tokenKind(err error) Kind {
	if errors.Is(err, jwt.ErrExpired) {
		return KindExpired
	}
	return KindMalformed
}
