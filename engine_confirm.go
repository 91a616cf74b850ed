package goAccount

import (
	"context"

	internalflows "github.com/MrEthical07/goAccount/internal/flows"
)

// Confirm marks the account named by a registration token as confirmed.
// A token that is malformed, expired, not a registration token, names no
// account or names an already confirmed account yields 403 "Invalid token.".
func (e *Engine) Confirm(ctx context.Context, token string) (Result, error) {
	return e.run(ctx, "confirm", func(deps internalflows.Deps) (internalflows.Outcome, error) {
		return internalflows.RunConfirm(ctx, token, deps)
	})
}
