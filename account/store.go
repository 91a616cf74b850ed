package account

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound is returned by lookups that match no account.
	ErrUserNotFound = errors.New("account: user not found")
	// ErrEmailExists is returned by Create when the email is taken.
	ErrEmailExists = errors.New("account: email already exists")
)

// Store runs fn inside one transaction. fn's nil return commits; any error
// rolls back and is returned unchanged.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the per-flow view of the store. Reads made through a Tx lock the
// returned user rows until the transaction ends.
type Tx interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// Create persists u. An empty ID is assigned by the store.
	Create(ctx context.Context, u *User) error
	// Update persists the mutable fields of u: names, password hash and
	// confirmation state. Roles are not written.
	Update(ctx context.Context, u *User) error
	AppendLog(ctx context.Context, entry LogEntry) error
	Logs(ctx context.Context, userID string) ([]LogEntry, error)
}
