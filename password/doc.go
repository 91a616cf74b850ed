// Package password hashes and verifies account passwords.
//
// # Output format
//
// [Argon2] encodes hashes in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Bcrypt] produces standard $2a$ modular-crypt strings. [Chain] combines
// them so that stores holding older bcrypt hashes keep verifying while new
// hashes use Argon2id; NeedsUpgrade tells the caller to rehash on the next
// successful login.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive hashes.
//   - Enforce password policy beyond rejecting the empty string.
//   - Log plaintext passwords or hash parameters at runtime.
package password
