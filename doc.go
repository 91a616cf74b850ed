// Package goAccount provides an account-lifecycle engine: registration,
// email confirmation, credential login and password reset, all mediated by
// signed, single-purpose tokens.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goAccount is the public surface. It exposes [Engine], [Builder], [Config],
// [Result] and the event and mail value types. Flow orchestration lives in
// internal/flows; persistence is reached only through [AccountStore]; mail
// goes out through a [Notifier]; observers subscribe on the [EventBus].
//
// # What this package must NOT do
//
//   - Evaluate roles or permissions. They are copied into login tokens only.
//   - Fail a flow because mail delivery or an event subscriber failed.
//   - Import any sub-package that re-imports goAccount (no import cycles).
package goAccount
