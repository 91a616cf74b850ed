// Package notify implements the engine's mail port.
//
// A [Notifier] renders a goAccount.MailMessage with pongo2 templates and
// hands the resulting [Email] to a [Mailer]. Two mailers ship here:
// [LogMailer] writes messages to the structured log, and [RedisQueue]
// pushes them onto a Redis list for an out-of-process delivery worker,
// which pulls them back with [RedisQueue.Consume].
//
// The default templates, register.html and request_password_reset.html,
// are embedded; [WithTemplateDir] loads overrides from disk.
package notify
