package goAccount

import (
	"context"

	internalflows "github.com/MrEthical07/goAccount/internal/flows"
)

// Register creates an unconfirmed account and mails a confirmation token
// to it. Rejections come back as 403 results: missing email first, then a
// taken email, then a blank display name or password.
func (e *Engine) Register(ctx context.Context, in RegisterInput) (Result, error) {
	return e.run(ctx, "register", func(deps internalflows.Deps) (internalflows.Outcome, error) {
		return internalflows.RunRegister(ctx, in, deps)
	})
}
