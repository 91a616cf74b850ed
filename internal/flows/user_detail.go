package flows

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrEthical07/goAccount/account"
)

// RunUserDetail resolves a login access token to the account it names.
// Scoped registration or reset tokens are not access tokens.
func RunUserDetail(ctx context.Context, token string, deps Deps) (Outcome, error) {
	normalizeDeps(&deps)
	if !deps.ready() {
		return Outcome{}, deps.Errors.EngineNotReady
	}

	invalid := func(kind Kind) (Outcome, error) {
		deps.MetricInc(deps.Metrics.UserDetailFailure)
		return failure(kind, http.StatusUnauthorized, MsgInvalidToken, deps.Errors.InvalidToken), nil
	}

	tok, err := deps.ParseToken(token)
	if err != nil {
		return invalid(tokenKind(err))
	}
	if tok.Claims.Scoped() || tok.Subject == "" {
		return invalid(KindClaimMismatch)
	}

	var user *account.User
	err = deps.Store.WithinTx(ctx, func(ctx context.Context, tx account.Tx) error {
		u, err := tx.FindByEmail(ctx, tok.Subject)
		if errors.Is(err, account.ErrUserNotFound) {
			return errRejected
		}
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		user = u
		return nil
	})
	if errors.Is(err, errRejected) {
		deps.MetricInc(deps.Metrics.UserDetailFailure)
		return failure(KindNotFound, http.StatusNotFound, MsgUserNotFound, deps.Errors.UserNotFound), nil
	}
	if err != nil {
		return Outcome{}, err
	}

	deps.MetricInc(deps.Metrics.UserDetailSuccess)
	out := success("")
	out.User = user.Public()
	return out, nil
}
