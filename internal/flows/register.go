package flows

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrEthical07/goAccount/account"
	"github.com/MrEthical07/goAccount/jwt"
	"github.com/MrEthical07/goAccount/password"
)

// Mail subjects and templates.
const (
	RegistrationSubject  = "Registration"
	RegistrationTemplate = "register.html"
	ResetSubject         = "Forgot password"
	ResetTemplate        = "request_password_reset.html"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// RunRegister creates an unconfirmed account and mails a confirmation
// token. Checks run in order and the first failure wins: email present,
// email unused, display name and password present.
func RunRegister(ctx context.Context, in RegisterInput, deps Deps) (Outcome, error) {
	normalizeDeps(&deps)
	if !deps.ready() {
		return Outcome{}, deps.Errors.EngineNotReady
	}

	if in.Email == "" {
		deps.MetricInc(deps.Metrics.RegisterRejected)
		return failure(KindValidation, http.StatusForbidden, MsgEmailRequired, deps.Errors.EmailRequired), nil
	}

	var (
		out   Outcome
		user  *account.User
		token string
	)
	err := deps.Store.WithinTx(ctx, func(ctx context.Context, tx account.Tx) error {
		_, err := tx.FindByEmail(ctx, in.Email)
		switch {
		case err == nil:
			out = failure(KindConflict, http.StatusForbidden, MsgEmailExists, deps.Errors.EmailExists)
			return errRejected
		case !errors.Is(err, account.ErrUserNotFound):
			return fmt.Errorf("find user: %w", err)
		}

		name := account.DisplayName(in.FirstName, in.LastName)
		if name == "" || in.Password == "" {
			out = failure(KindValidation, http.StatusForbidden, MsgMissingFields, deps.Errors.MissingFields)
			return errRejected
		}

		hash, err := deps.HashPassword(in.Password)
		if errors.Is(err, password.ErrPasswordTooLong) {
			out = failure(KindValidation, http.StatusForbidden, MsgMissingFields, deps.Errors.MissingFields)
			return errRejected
		}
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		u := &account.User{
			Email:        in.Email,
			PasswordHash: hash,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Name:         name,
			RegisteredAt: deps.Now(),
		}
		if err := tx.Create(ctx, u); err != nil {
			if errors.Is(err, account.ErrEmailExists) {
				out = failure(KindConflict, http.StatusForbidden, MsgEmailExists, deps.Errors.EmailExists)
				return errRejected
			}
			return fmt.Errorf("create user: %w", err)
		}

		token, err = deps.IssueToken(u.ID, jwt.Claims{jwt.ClaimRegistration: true}, jwt.NoExpiry)
		if err != nil {
			return fmt.Errorf("issue registration token: %w", err)
		}
		user = u
		return nil
	})
	if errors.Is(err, errRejected) {
		deps.MetricInc(deps.Metrics.RegisterRejected)
		return out, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	deps.MetricInc(deps.Metrics.RegisterSuccess)
	deps.SendMail(ctx, Mail{
		Subject:    RegistrationSubject,
		Template:   RegistrationTemplate,
		Recipients: []string{user.Email},
		Data:       mailData(user, token),
	})
	deps.Publish(ctx, deps.Events.Registered, user.Public())

	return success(MsgRegistered), nil
}

func mailData(u *account.User, token string) map[string]any {
	return map[string]any{
		"token":      token,
		"email":      u.Email,
		"name":       u.Name,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
	}
}
