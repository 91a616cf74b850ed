package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/goAccount/account"
)

func createUser(t *testing.T, s *Store, email string) *account.User {
	t.Helper()
	u := &account.User{Email: email, PasswordHash: "h", Name: "Jane Doe", RegisteredAt: time.Now()}
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx account.Tx) error {
		return tx.Create(ctx, u)
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	return u
}

func TestCreateAndFind(t *testing.T) {
	s := New()
	u := createUser(t, s, "a@x.com")

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx account.Tx) error {
		byEmail, err := tx.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		byID, err := tx.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", byID.Email)

		_, err = tx.FindByEmail(ctx, "missing@x.com")
		assert.ErrorIs(t, err, account.ErrUserNotFound)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestCreateDuplicateEmail(t *testing.T) {
	s := New()
	createUser(t, s, "a@x.com")

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx account.Tx) error {
		return tx.Create(ctx, &account.User{Email: "a@x.com"})
	})
	assert.ErrorIs(t, err, account.ErrEmailExists)
	assert.Equal(t, 1, s.Len())
}

func TestRollbackDiscardsStagedWrites(t *testing.T) {
	s := New()
	u := createUser(t, s, "a@x.com")
	boom := errors.New("boom")

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx account.Tx) error {
		cur, err := tx.FindByID(ctx, u.ID)
		require.NoError(t, err)
		cur.Confirmed = true
		require.NoError(t, tx.Update(ctx, cur))
		require.NoError(t, tx.AppendLog(ctx, account.LogEntry{UserID: u.ID, Kind: account.LogConfirmed, At: time.Now()}))
		require.NoError(t, tx.Create(ctx, &account.User{Email: "b@x.com"}))

		staged, err := tx.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, staged.Confirmed, "reads see staged writes")
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = s.WithinTx(context.Background(), func(ctx context.Context, tx account.Tx) error {
		cur, err := tx.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.False(t, cur.Confirmed)

		logs, err := tx.Logs(ctx, u.ID)
		require.NoError(t, err)
		assert.Empty(t, logs)

		_, err = tx.FindByEmail(ctx, "b@x.com")
		assert.ErrorIs(t, err, account.ErrUserNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestReturnedUsersAreCopies(t *testing.T) {
	s := New()
	u := createUser(t, s, "a@x.com")
	require.NoError(t, s.SetRoles(u.ID, []account.Role{{Name: "admin"}}))

	_ = s.WithinTx(context.Background(), func(ctx context.Context, tx account.Tx) error {
		cur, _ := tx.FindByID(ctx, u.ID)
		cur.Roles[0].Name = "mutated"
		cur.Confirmed = true
		return nil
	})

	_ = s.WithinTx(context.Background(), func(ctx context.Context, tx account.Tx) error {
		cur, err := tx.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"admin"}, cur.RoleNames())
		assert.False(t, cur.Confirmed)
		return nil
	})
}

func TestUpdateKeepsEmailAndRoles(t *testing.T) {
	s := New()
	u := createUser(t, s, "a@x.com")
	require.NoError(t, s.SetRoles(u.ID, []account.Role{{Name: "staff"}}))

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx account.Tx) error {
		return tx.Update(ctx, &account.User{ID: u.ID, Email: "other@x.com", PasswordHash: "new"})
	})
	require.NoError(t, err)

	_ = s.WithinTx(context.Background(), func(ctx context.Context, tx account.Tx) error {
		cur, err := tx.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, "new", cur.PasswordHash)
		assert.Equal(t, []string{"staff"}, cur.RoleNames())
		return nil
	})
}

func TestUnknownUserWrites(t *testing.T) {
	s := New()
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx account.Tx) error {
		assert.ErrorIs(t, tx.Update(ctx, &account.User{ID: "nope"}), account.ErrUserNotFound)
		assert.ErrorIs(t, tx.AppendLog(ctx, account.LogEntry{UserID: "nope"}), account.ErrUserNotFound)
		_, err := tx.Logs(ctx, "nope")
		assert.ErrorIs(t, err, account.ErrUserNotFound)
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, s.SetRoles("nope", nil), account.ErrUserNotFound)
}

func TestCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithinTx(ctx, func(context.Context, account.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestConcurrentTransactionsSerialize(t *testing.T) {
	s := New()
	u := createUser(t, s, "a@x.com")

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = s.WithinTx(context.Background(), func(ctx context.Context, tx account.Tx) error {
				return tx.AppendLog(ctx, account.LogEntry{UserID: u.ID, Kind: account.LogLogin, At: time.Now()})
			})
		}()
	}
	wg.Wait()

	_ = s.WithinTx(context.Background(), func(ctx context.Context, tx account.Tx) error {
		logs, err := tx.Logs(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, logs, workers)
		return nil
	})
}
