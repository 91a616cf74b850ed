// Package jwt issues and parses the signed, claim-bearing tokens used by the
// account lifecycle flows.
//
// A token carries a subject, a free-form claim set and an optional expiry.
// [Codec.Parse] separates the two failure kinds callers care about:
// [ErrMalformed] for anything structurally or cryptographically wrong and
// [ErrExpired] for a correctly signed token whose exp is in the past.
//
// # What this package must NOT do
//
//   - Decide which flow a token belongs to (scoping flags are read by the engine).
//   - Perform I/O.
package jwt
