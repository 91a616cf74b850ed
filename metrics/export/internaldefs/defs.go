package internaldefs

import (
	goAccount "github.com/MrEthical07/goAccount"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   goAccount.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for exporters.
type HistogramDef struct {
	ID   goAccount.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in rendering order.
var CounterDefs = []CounterDef{
	{ID: goAccount.MetricLoginSuccess, Name: "goaccount_login_success_total", Help: "Logins that issued an access token."},
	{ID: goAccount.MetricLoginFailure, Name: "goaccount_login_failure_total", Help: "Rejected logins."},
	{ID: goAccount.MetricRegisterSuccess, Name: "goaccount_register_success_total", Help: "Created accounts."},
	{ID: goAccount.MetricRegisterRejected, Name: "goaccount_register_rejected_total", Help: "Registrations refused by validation or duplicate email."},
	{ID: goAccount.MetricConfirmSuccess, Name: "goaccount_confirm_success_total", Help: "Confirmed accounts."},
	{ID: goAccount.MetricConfirmFailure, Name: "goaccount_confirm_failure_total", Help: "Rejected confirmation tokens."},
	{ID: goAccount.MetricPasswordResetRequest, Name: "goaccount_password_reset_request_total", Help: "Issued password reset tokens."},
	{ID: goAccount.MetricPasswordResetRequestRejected, Name: "goaccount_password_reset_request_rejected_total", Help: "Reset requests for a missing or unknown email."},
	{ID: goAccount.MetricPasswordResetVerifySuccess, Name: "goaccount_password_reset_verify_success_total", Help: "Reset tokens reported valid."},
	{ID: goAccount.MetricPasswordResetVerifyFailure, Name: "goaccount_password_reset_verify_failure_total", Help: "Reset tokens reported invalid or expired."},
	{ID: goAccount.MetricPasswordResetConfirmSuccess, Name: "goaccount_password_reset_confirm_success_total", Help: "Completed password resets."},
	{ID: goAccount.MetricPasswordResetConfirmFailure, Name: "goaccount_password_reset_confirm_failure_total", Help: "Rejected password reset completions."},
	{ID: goAccount.MetricUserDetailSuccess, Name: "goaccount_user_detail_success_total", Help: "Resolved access tokens."},
	{ID: goAccount.MetricUserDetailFailure, Name: "goaccount_user_detail_failure_total", Help: "Rejected access tokens."},
	{ID: goAccount.MetricPasswordHashUpgraded, Name: "goaccount_password_hash_upgraded_total", Help: "Password hashes rewritten on login."},
	{ID: goAccount.MetricMailSent, Name: "goaccount_mail_sent_total", Help: "Messages accepted by the notifier."},
	{ID: goAccount.MetricMailFailed, Name: "goaccount_mail_failed_total", Help: "Messages the notifier failed to send."},
	{ID: goAccount.MetricEventHandlerFailure, Name: "goaccount_event_handler_failure_total", Help: "Event subscriber errors and panics."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goAccount.MetricFlowLatency, Name: "goaccount_flow_latency_seconds", Help: "Wall time of one engine flow call."},
}

// Names of the dispatcher backpressure counters.
const (
	EventsDroppedName = "goaccount_events_dropped_total"
	EventsDroppedHelp = "Events dropped because the event queue was full."
	MailDroppedName   = "goaccount_mail_dropped_total"
	MailDroppedHelp   = "Mail messages dropped because the mail queue was full."
)

// HistogramBounds are the upper bounds, in seconds, of the latency buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix spells HistogramBounds for instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to exactly eight buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
