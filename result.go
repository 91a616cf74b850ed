package goAccount

import internalflows "github.com/MrEthical07/goAccount/internal/flows"

// ResultKind records the cause a flow detected. Several kinds may share
// one client-visible Code and Message.
type ResultKind int

const (
	KindOK            = ResultKind(internalflows.KindOK)
	KindMalformed     = ResultKind(internalflows.KindMalformed)
	KindExpired       = ResultKind(internalflows.KindExpired)
	KindClaimMismatch = ResultKind(internalflows.KindClaimMismatch)
	KindValidation    = ResultKind(internalflows.KindValidation)
	KindNotFound      = ResultKind(internalflows.KindNotFound)
	KindConflict      = ResultKind(internalflows.KindConflict)
	KindAuthFailed    = ResultKind(internalflows.KindAuthFailed)
)

func (k ResultKind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindMalformed:
		return "malformed"
	case KindExpired:
		return "expired"
	case KindClaimMismatch:
		return "claim_mismatch"
	case KindValidation:
		return "validation_failed"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuthFailed:
		return "auth_failed"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of a flow: a status code and message pair,
// plus an access token (login) or a user view (user detail) on success.
type Result struct {
	Kind        ResultKind
	Code        int
	Message     string
	AccessToken string
	User        *User

	err error
}

// OK reports whether the flow succeeded.
func (r Result) OK() bool {
	return r.Kind == KindOK && r.err == nil
}

// Err returns the sentinel for a failed flow (ErrAuthFailed,
// ErrInvalidToken, ...) or nil on success.
func (r Result) Err() error {
	return r.err
}

func resultFromOutcome(o internalflows.Outcome) Result {
	return Result{
		Kind:        ResultKind(o.Kind),
		Code:        o.Code,
		Message:     o.Message,
		AccessToken: o.AccessToken,
		User:        o.User,
		err:         o.Err,
	}
}
