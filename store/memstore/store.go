// Package memstore is a thread-safe in-memory account.Store for tests and
// local development.
//
// Transactions are fully serialized: WithinTx holds one store-wide lock
// for the duration of fn. Writes are staged on the transaction and applied
// only when fn returns nil.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/MrEthical07/goAccount/account"
)

// Store keeps accounts, roles and logs in maps guarded by one mutex.
type Store struct {
	mu sync.Mutex

	byID    map[string]*account.User
	byEmail map[string]string
	logs    map[string][]account.LogEntry
}

var _ account.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		byID:    make(map[string]*account.User),
		byEmail: make(map[string]string),
		logs:    make(map[string][]account.LogEntry),
	}
}

// WithinTx runs fn against a staged view of the store and commits the
// staged writes when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx account.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{
		store:   s,
		users:   make(map[string]*account.User),
		byEmail: make(map[string]string),
	}
	if err := fn(ctx, t); err != nil {
		return err
	}
	t.commit()
	return nil
}

// SetRoles replaces the roles attached to userID.
func (s *Store) SetRoles(userID string, roles []account.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[userID]
	if !ok {
		return account.ErrUserNotFound
	}
	cp := (&account.User{Roles: roles}).Clone()
	u.Roles = cp.Roles
	return nil
}

// Len returns the number of stored accounts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

type tx struct {
	store   *Store
	users   map[string]*account.User
	byEmail map[string]string
	logs    []account.LogEntry
}

func (t *tx) lookup(id string) (*account.User, bool) {
	if u, ok := t.users[id]; ok {
		return u, true
	}
	u, ok := t.store.byID[id]
	return u, ok
}

func (t *tx) FindByEmail(ctx context.Context, email string) (*account.User, error) {
	id, ok := t.byEmail[email]
	if !ok {
		id, ok = t.store.byEmail[email]
	}
	if !ok {
		return nil, account.ErrUserNotFound
	}
	return t.FindByID(ctx, id)
}

func (t *tx) FindByID(_ context.Context, id string) (*account.User, error) {
	u, ok := t.lookup(id)
	if !ok {
		return nil, account.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (t *tx) Create(_ context.Context, u *account.User) error {
	if _, ok := t.byEmail[u.Email]; ok {
		return account.ErrEmailExists
	}
	if _, ok := t.store.byEmail[u.Email]; ok {
		return account.ErrEmailExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	t.users[u.ID] = u.Clone()
	t.byEmail[u.Email] = u.ID
	return nil
}

func (t *tx) Update(_ context.Context, u *account.User) error {
	current, ok := t.lookup(u.ID)
	if !ok {
		return account.ErrUserNotFound
	}
	next := u.Clone()
	next.Email = current.Email
	next.Roles = current.Clone().Roles
	t.users[u.ID] = next
	return nil
}

func (t *tx) AppendLog(_ context.Context, entry account.LogEntry) error {
	if _, ok := t.lookup(entry.UserID); !ok {
		return account.ErrUserNotFound
	}
	t.logs = append(t.logs, entry)
	return nil
}

func (t *tx) Logs(_ context.Context, userID string) ([]account.LogEntry, error) {
	if _, ok := t.lookup(userID); !ok {
		return nil, account.ErrUserNotFound
	}
	out := append([]account.LogEntry(nil), t.store.logs[userID]...)
	for _, e := range t.logs {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (t *tx) commit() {
	for id, u := range t.users {
		t.store.byID[id] = u
	}
	for email, id := range t.byEmail {
		t.store.byEmail[email] = id
	}
	for _, e := range t.logs {
		t.store.logs[e.UserID] = append(t.store.logs[e.UserID], e)
	}
}
