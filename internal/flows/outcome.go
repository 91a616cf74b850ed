package flows

import (
	"errors"
	"net/http"

	"github.com/MrEthical07/goAccount/account"
)

// Kind classifies why a flow ended the way it did. It records the detected
// cause; Code and Message carry what the caller is allowed to see.
type Kind int

const (
	KindOK Kind = iota
	KindMalformed
	KindExpired
	KindClaimMismatch
	KindValidation
	KindNotFound
	KindConflict
	KindAuthFailed
)

// Client-visible messages.
const (
	MsgIncorrectCredentials = "Incorrect email or password."
	MsgRegistered           = "Successful registration."
	MsgEmailRequired        = "Email required."
	MsgEmailExists          = "Email already exists."
	MsgMissingFields        = "Username and password are required."
	MsgConfirmed            = "Confirmed."
	MsgInvalidToken         = "Invalid token."
	MsgResetRequested       = "A password reset request has been sent."
	MsgUserNotFound         = "User not found."
	MsgValidToken           = "Valid token."
	MsgTokenExpired         = "Token expired."
	MsgPasswordChanged      = "Successfully change password."
)

// Outcome is the tagged result of one flow call.
type Outcome struct {
	Kind        Kind
	Code        int
	Message     string
	AccessToken string
	User        *account.User
	Err         error
}

// OK reports whether the flow succeeded.
func (o Outcome) OK() bool {
	return o.Kind == KindOK && o.Code == http.StatusOK
}

func success(message string) Outcome {
	return Outcome{Kind: KindOK, Code: http.StatusOK, Message: message}
}

func failure(kind Kind, code int, message string, err error) Outcome {
	return Outcome{Kind: kind, Code: code, Message: message, Err: err}
}

// errRejected rolls a transaction back after a flow decided to reject the
// request. The outcome itself travels in a captured variable.
var errRejected = errors.New("flows: request rejected")
