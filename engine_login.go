package goAccount

import (
	"context"

	internalflows "github.com/MrEthical07/goAccount/internal/flows"
)

// Login authenticates a confirmed account by email and password and
// returns an access token carrying the account's role names.
//
// Unknown email, unconfirmed account and wrong password all produce the
// same 404 "Incorrect email or password." result. The error return is
// reserved for store or signing failures.
func (e *Engine) Login(ctx context.Context, email, password string) (Result, error) {
	return e.run(ctx, "login", func(deps internalflows.Deps) (internalflows.Outcome, error) {
		return internalflows.RunLogin(ctx, email, password, deps)
	})
}
