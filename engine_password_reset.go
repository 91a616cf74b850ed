package goAccount

import (
	"context"

	internalflows "github.com/MrEthical07/goAccount/internal/flows"
)

// RequestPasswordReset mails a reset token valid for
// PasswordReset.TokenTTL. An unknown email is reported as 404.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (Result, error) {
	return e.run(ctx, "request_password_reset", func(deps internalflows.Deps) (internalflows.Outcome, error) {
		return internalflows.RunRequestPasswordReset(ctx, email, deps)
	})
}

// VerifyResetToken reports whether a reset token is usable without
// changing anything: 200 valid, 401 invalid, 403 expired.
func (e *Engine) VerifyResetToken(ctx context.Context, token string) (Result, error) {
	return e.run(ctx, "verify_reset_token", func(deps internalflows.Deps) (internalflows.Outcome, error) {
		return internalflows.RunVerifyResetToken(ctx, token, deps)
	})
}

// CompletePasswordReset stores a new password for the account named by a
// reset token. Token failures map as in [Engine.VerifyResetToken]; a
// missing account or blank password yields 404.
//
// Unless PasswordReset.SingleUse is set, a reset token stays usable until
// it expires.
func (e *Engine) CompletePasswordReset(ctx context.Context, token, password string) (Result, error) {
	return e.run(ctx, "complete_password_reset", func(deps internalflows.Deps) (internalflows.Outcome, error) {
		return internalflows.RunCompletePasswordReset(ctx, token, password, deps)
	})
}
