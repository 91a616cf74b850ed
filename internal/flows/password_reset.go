package flows

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrEthical07/goAccount/account"
	"github.com/MrEthical07/goAccount/jwt"
	"github.com/MrEthical07/goAccount/password"
)

// RunRequestPasswordReset issues a time-limited reset token for email and
// mails it. Unlike login, an unknown email is reported as such.
func RunRequestPasswordReset(ctx context.Context, email string, deps Deps) (Outcome, error) {
	normalizeDeps(&deps)
	if !deps.ready() {
		return Outcome{}, deps.Errors.EngineNotReady
	}

	if email == "" {
		deps.MetricInc(deps.Metrics.ResetRequestRejected)
		return failure(KindValidation, http.StatusForbidden, MsgEmailRequired, deps.Errors.EmailRequired), nil
	}

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

		claims := jwt.Claims{jwt.ClaimPasswordReset: true}
		if deps.SingleUseReset {
			claims[jwt.ClaimPasswordPrint] = passwordFingerprint(u.PasswordHash)
		}
		token, err = deps.IssueToken(u.ID, claims, deps.ResetTTL)
		if err != nil {
			return fmt.Errorf("issue reset token: %w", err)
		}

		entry := account.LogEntry{UserID: u.ID, Kind: account.LogPasswordResetRequested, At: deps.Now()}
		if err := tx.AppendLog(ctx, entry); err != nil {
			return fmt.Errorf("append reset request log: %w", err)
		}
		user = u
		return nil
	})
	if errors.Is(err, errRejected) {
		deps.MetricInc(deps.Metrics.ResetRequestRejected)
		return failure(KindNotFound, http.StatusNotFound, MsgUserNotFound, deps.Errors.UserNotFound), nil
	}
	if err != nil {
		return Outcome{}, err
	}

	deps.MetricInc(deps.Metrics.ResetRequestSuccess)
	deps.SendMail(ctx, Mail{
		Subject:    ResetSubject,
		Template:   ResetTemplate,
		Recipients: []string{user.Email},
		Data:       mailData(user, token),
	})
	deps.Publish(ctx, deps.Events.ResetRequested, user.Public())

	return success(MsgResetRequested), nil
}

// RunVerifyResetToken validates a reset token without mutating anything.
// Valid, invalid and expired stay distinguishable.
func RunVerifyResetToken(ctx context.Context, token string, deps Deps) (Outcome, error) {
	normalizeDeps(&deps)
	if !deps.ready() {
		return Outcome{}, deps.Errors.EngineNotReady
	}

	tok, out, ok := parseResetToken(token, deps)
	if !ok {
		deps.MetricInc(deps.Metrics.ResetVerifyFailure)
		return out, nil
	}

	err := deps.Store.WithinTx(ctx, func(ctx context.Context, tx account.Tx) error {
		u, err := tx.FindByID(ctx, tok.Subject)
		if errors.Is(err, account.ErrUserNotFound) {
			out = invalidResetToken(KindNotFound, deps)
			return errRejected
		}
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if !fingerprintMatches(tok, u, deps) {
			out = invalidResetToken(KindClaimMismatch, deps)
			return errRejected
		}
		return nil
	})
	if errors.Is(err, errRejected) {
		deps.MetricInc(deps.Metrics.ResetVerifyFailure)
		return out, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	deps.MetricInc(deps.Metrics.ResetVerifySuccess)
	return success(MsgValidToken), nil
}

// RunCompletePasswordReset sets a new password for the account named by a
// valid reset token. A missing account and a blank password share the
// not-found outcome.
func RunCompletePasswordReset(ctx context.Context, token, newPassword string, deps Deps) (Outcome, error) {
	normalizeDeps(&deps)
	if !deps.ready() {
		return Outcome{}, deps.Errors.EngineNotReady
	}

	tok, out, ok := parseResetToken(token, deps)
	if !ok {
		deps.MetricInc(deps.Metrics.ResetCompleteFailure)
		return out, nil
	}

	notFound := func(kind Kind) Outcome {
		return failure(kind, http.StatusNotFound, MsgUserNotFound, deps.Errors.UserNotFound)
	}

	var user *account.User
	err := deps.Store.WithinTx(ctx, func(ctx context.Context, tx account.Tx) error {
		u, err := tx.FindByID(ctx, tok.Subject)
		if errors.Is(err, account.ErrUserNotFound) {
			out = notFound(KindNotFound)
			return errRejected
		}
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if !fingerprintMatches(tok, u, deps) {
			out = invalidResetToken(KindClaimMismatch, deps)
			return errRejected
		}
		if newPassword == "" {
			out = notFound(KindValidation)
			return errRejected
		}

		hash, err := deps.HashPassword(newPassword)
		if errors.Is(err, password.ErrPasswordTooLong) {
			out = notFound(KindValidation)
			return errRejected
		}
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
		if err := tx.Update(ctx, u); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		entry := account.LogEntry{UserID: u.ID, Kind: account.LogPasswordSet, At: deps.Now()}
		if err := tx.AppendLog(ctx, entry); err != nil {
			return fmt.Errorf("append password set log: %w", err)
		}
		user = u
		return nil
	})
	if errors.Is(err, errRejected) {
		deps.MetricInc(deps.Metrics.ResetCompleteFailure)
		return out, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	deps.MetricInc(deps.Metrics.ResetCompleteSuccess)
	deps.Publish(ctx, deps.Events.ResetCompleted, user.Public())

	return success(MsgPasswordChanged), nil
}

// parseResetToken applies the checks shared by both reset-token flows:
// expired is 403, malformed or wrongly scoped is 401.
func parseResetToken(token string, deps Deps) (*jwt.Token, Outcome, bool) {
	tok, err := deps.ParseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return nil, failure(KindExpired, http.StatusForbidden, MsgTokenExpired, deps.Errors.TokenExpired), false
		}
		return nil, invalidResetToken(KindMalformed, deps), false
	}
	if !tok.Claims.Flag(jwt.ClaimPasswordReset) {
		return nil, invalidResetToken(KindClaimMismatch, deps), false
	}
	return tok, Outcome{}, true
}

func invalidResetToken(kind Kind, deps Deps) Outcome {
	return failure(kind, http.StatusUnauthorized, MsgInvalidToken, deps.Errors.InvalidToken)
}

// fingerprintMatches binds single-use reset tokens to the password hash
// they were issued against. Tokens without a fingerprint pass unless the
// engine requires one.
func fingerprintMatches(tok *jwt.Token, u *account.User, deps Deps) bool {
	got, ok := tok.Claims.String(jwt.ClaimPasswordPrint)
	if !ok {
		return !deps.SingleUseReset
	}
	want := passwordFingerprint(u.PasswordHash)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func passwordFingerprint(encodedHash string) string {
	sum := sha256.Sum256([]byte(encodedHash))
	return base64.RawURLEncoding.EncodeToString(sum[:12])
}
