package goAccount

import (
	"errors"

	"github.com/MrEthical07/goAccount/account"
)

var (
	// ErrEngineNotReady is returned when an Engine was not built through Builder.
	ErrEngineNotReady = errors.New("engine not ready")

	// ErrAuthFailed is the single login rejection: unknown email, unconfirmed
	// account and wrong password all map to it.
	ErrAuthFailed = errors.New("incorrect email or password")
	// ErrEmailRequired rejects a request without an email.
	ErrEmailRequired = errors.New("email required")
	// ErrEmailExists rejects registration of a taken email.
	ErrEmailExists = account.ErrEmailExists
	// ErrMissingFields rejects registration without a display name or password.
	ErrMissingFields = errors.New("username and password are required")
	// ErrInvalidToken covers malformed, wrongly scoped and unusable tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is surfaced only by the reset-token flows.
	ErrTokenExpired = errors.New("token expired")
	// ErrUserNotFound reports a missing account where the flow reveals it.
	ErrUserNotFound = account.ErrUserNotFound

	// ErrNotifierRequired is returned by Build without a Notifier.
	ErrNotifierRequired = errors.New("notifier required")
	// ErrStoreRequired is returned by Build without an AccountStore.
	ErrStoreRequired = errors.New("account store required")
)
