// Package flows contains pure-function orchestrators for every account
// lifecycle operation.
//
// Each flow function (RunLogin, RunRegister, RunConfirm, ...) accepts a
// [Deps] value and returns an [Outcome] plus an error reserved for
// infrastructure failures. All reads and writes of one call go through a
// single account.Store transaction; mail and events are handed off only
// after that transaction commits.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goAccount (to avoid import cycles).
//   - Turn a mail or event failure into a flow failure.
package flows
