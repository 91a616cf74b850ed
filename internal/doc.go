// Package internal groups helpers that are private to goAccount.
//
// # Sub-packages
//
//   - dispatch: bounded async queue used for mail delivery and events
//   - flows: pure-function orchestrators for every Engine operation
//   - serverconfig: layered file, env and flag configuration for the server binary
//   - server: wiring of store, mail, events and HTTP for the server binary
//
// # What this package must NOT do
//
//   - Export types that appear in the public goAccount API.
//   - Be imported by any package outside the goAccount module.
package internal
