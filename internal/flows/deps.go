package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goAccount/account"
	"github.com/MrEthical07/goAccount/jwt"
)

// Mail is a templated message queued for asynchronous delivery.
type Mail struct {
	Subject    string
	Template   string
	Recipients []string
	Data       map[string]any
}

// Metrics maps flow outcomes to engine metric ids.
type Metrics struct {
	LoginSuccess         int
	LoginFailure         int
	RegisterSuccess      int
	RegisterRejected     int
	ConfirmSuccess       int
	ConfirmFailure       int
	ResetRequestSuccess  int
	ResetRequestRejected int
	ResetVerifySuccess   int
	ResetVerifyFailure   int
	ResetCompleteSuccess int
	ResetCompleteFailure int
	UserDetailSuccess    int
	UserDetailFailure    int
	PasswordHashUpgraded int
}

// Events names the lifecycle events published after commit.
type Events struct {
	LoggedIn       string
	Registered     string
	Confirmed      string
	ResetRequested string
	ResetCompleted string
}

// Errors maps client-visible outcomes to engine sentinels.
type Errors struct {
	EngineNotReady error
	AuthFailed     error
	EmailRequired  error
	EmailExists    error
	MissingFields  error
	InvalidToken   error
	TokenExpired   error
	UserNotFound   error
}

// Deps is everything a flow needs. The engine builds one per call.
type Deps struct {
	Store account.Store

	IssueToken     func(subject string, claims jwt.Claims, ttl time.Duration) (string, error)
	ParseToken     func(token string) (*jwt.Token, error)
	HashPassword   func(password string) (string, error)
	VerifyPassword func(password, encodedHash string) (bool, error)
	NeedsUpgrade   func(encodedHash string) (bool, error)
	Now            func() time.Time

	ResetTTL       time.Duration
	UpgradeOnLogin bool
	SingleUseReset bool

	SendMail  func(ctx context.Context, mail Mail)
	Publish   func(ctx context.Context, event string, user *account.User)
	MetricInc func(id int)
	Warn      func(ctx context.Context, msg string, args ...any)

	Metrics Metrics
	Events  Events
	Errors  Errors
}

func normalizeDeps(deps *Deps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.SendMail == nil {
		deps.SendMail = func(context.Context, Mail) {}
	}
	if deps.Publish == nil {
		deps.Publish = func(context.Context, string, *account.User) {}
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(context.Context, string, ...any) {}
	}
	if deps.Errors.EngineNotReady == nil {
		deps.Errors.EngineNotReady = errors.New("engine not ready")
	}
}

func (d *Deps) ready() bool {
	return d.Store != nil && d.IssueToken != nil && d.ParseToken != nil &&
		d.HashPassword != nil && d.VerifyPassword != nil
}
