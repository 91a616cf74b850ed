package goAccount

import (
	"context"
	"time"

	"github.com/MrEthical07/goAccount/account"
	"github.com/MrEthical07/goAccount/internal/dispatch"
	internalflows "github.com/MrEthical07/goAccount/internal/flows"
	"github.com/MrEthical07/goAccount/jwt"
	"github.com/MrEthical07/goAccount/logging"
	"github.com/MrEthical07/goAccount/password"
)

// Engine runs the account lifecycle flows. Build it with [Builder]; every
// method is safe for concurrent use.
type Engine struct {
	config   Config
	store    AccountStore
	codec    *jwt.Codec
	hasher   password.Hasher
	notifier Notifier
	mail     *dispatch.Dispatcher[MailMessage]
	bus      *EventBus
	metrics  *Metrics
	logger   logging.Logger
	now      func() time.Time

	deps internalflows.Deps
}

// Close stops accepting mail and events and waits for queued ones to be
// delivered. Flows called after Close still run but deliver nothing.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.mail.Close()
	e.bus.Close()
}

// Events returns the bus for late subscriptions.
func (e *Engine) Events() *EventBus {
	if e == nil {
		return nil
	}
	return e.bus
}

// EventsDropped returns how many events were discarded under backpressure.
func (e *Engine) EventsDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.bus.Dropped()
}

// MailDropped returns how many messages were discarded under backpressure.
func (e *Engine) MailDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.mail.Dropped()
}

// MetricsSnapshot copies the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

type flowFunc func(deps internalflows.Deps) (internalflows.Outcome, error)

// run executes one flow and converts its outcome. Infrastructure errors
// are logged here and returned unchanged.
func (e *Engine) run(ctx context.Context, name string, fn flowFunc) (Result, error) {
	if e == nil || e.store == nil || e.codec == nil {
		return Result{}, ErrEngineNotReady
	}

	start := time.Now()
	out, err := fn(e.deps)
	e.metrics.Observe(MetricFlowLatency, time.Since(start))
	if err != nil {
		e.logger.Error(ctx, "flow failed", "flow", name, "error", err)
		return Result{}, err
	}

	res := resultFromOutcome(out)
	e.logger.Debug(ctx, "flow completed", "flow", name, "code", res.Code, "kind", res.Kind.String())
	return res, nil
}

func (e *Engine) sendMail(ctx context.Context, m internalflows.Mail) {
	msg := MailMessage{
		Subject:    m.Subject,
		Template:   m.Template,
		Recipients: m.Recipients,
		Data:       m.Data,
	}
	if !e.mail.Emit(ctx, msg) {
		e.logger.Warn(ctx, "mail not queued", "template", msg.Template)
	}
}

func (e *Engine) deliverMail(ctx context.Context, msg MailMessage) {
	if e.config.Notifications.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Notifications.SendTimeout)
		defer cancel()
	}

	if err := e.notifier.Send(ctx, msg); err != nil {
		e.metrics.Inc(MetricMailFailed)
		e.logger.Warn(ctx, "mail delivery failed", "template", msg.Template, "error", err)
		return
	}
	e.metrics.Inc(MetricMailSent)
}

func (e *Engine) publish(ctx context.Context, name string, user *account.User) {
	e.bus.Publish(ctx, Event{
		Name:      EventName(name),
		Timestamp: e.now().UTC(),
		User:      user,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
	})
}

func (e *Engine) flowDeps() internalflows.Deps {
	return internalflows.Deps{
		Store: e.store,

		IssueToken:     e.codec.Issue,
		ParseToken:     e.codec.Parse,
		HashPassword:   e.hasher.Hash,
		VerifyPassword: e.hasher.Verify,
		NeedsUpgrade:   e.hasher.NeedsUpgrade,
		Now:            e.now,

		ResetTTL:       e.config.PasswordReset.TokenTTL,
		UpgradeOnLogin: e.config.Password.UpgradeOnLogin,
		SingleUseReset: e.config.PasswordReset.SingleUse,

		SendMail: e.sendMail,
		Publish:  e.publish,
		MetricInc: func(id int) {
			e.metrics.Inc(MetricID(id))
		},
		Warn: e.logger.Warn,

		Metrics: internalflows.Metrics{
			LoginSuccess:         int(MetricLoginSuccess),
			LoginFailure:         int(MetricLoginFailure),
			RegisterSuccess:      int(MetricRegisterSuccess),
			RegisterRejected:     int(MetricRegisterRejected),
			ConfirmSuccess:       int(MetricConfirmSuccess),
			ConfirmFailure:       int(MetricConfirmFailure),
			ResetRequestSuccess:  int(MetricPasswordResetRequest),
			ResetRequestRejected: int(MetricPasswordResetRequestRejected),
			ResetVerifySuccess:   int(MetricPasswordResetVerifySuccess),
			ResetVerifyFailure:   int(MetricPasswordResetVerifyFailure),
			ResetCompleteSuccess: int(MetricPasswordResetConfirmSuccess),
			ResetCompleteFailure: int(MetricPasswordResetConfirmFailure),
			UserDetailSuccess:    int(MetricUserDetailSuccess),
			UserDetailFailure:    int(MetricUserDetailFailure),
			PasswordHashUpgraded: int(MetricPasswordHashUpgraded),
		},
		Events: internalflows.Events{
			LoggedIn:       string(EventUserLoggedIn),
			Registered:     string(EventUserRegistration),
			Confirmed:      string(EventConfirmedUser),
			ResetRequested: string(EventForgotPassword),
			ResetCompleted: string(EventResetPassword),
		},
		Errors: internalflows.Errors{
			EngineNotReady: ErrEngineNotReady,
			AuthFailed:     ErrAuthFailed,
			EmailRequired:  ErrEmailRequired,
			EmailExists:    ErrEmailExists,
			MissingFields:  ErrMissingFields,
			InvalidToken:   ErrInvalidToken,
			TokenExpired:   ErrTokenExpired,
			UserNotFound:   ErrUserNotFound,
		},
	}
}
