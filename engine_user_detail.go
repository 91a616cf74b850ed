package goAccount

import (
	"context"

	internalflows "github.com/MrEthical07/goAccount/internal/flows"
)

// UserDetail resolves a login access token to the account it was issued
// for. The returned User never carries the password hash.
func (e *Engine) UserDetail(ctx context.Context, accessToken string) (Result, error) {
	return e.run(ctx, "user_detail", func(deps internalflows.Deps) (internalflows.Outcome, error) {
		return internalflows.RunUserDetail(ctx, accessToken, deps)
	})
}
