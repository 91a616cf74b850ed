package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goAccount/account"
)

const userColumns = `id, email, password_hash, first_name, last_name, name, confirmed, registered_at, confirmed_at`

type tx struct {
	db    DBTX
	store *Store
}

func (t *tx) FindByEmail(ctx context.Context, email string) (*account.User, error) {
	return t.findUser(ctx, "email", email)
}

func (t *tx) FindByID(ctx context.Context, id string) (*account.User, error) {
	return t.findUser(ctx, "id", id)
}

func (t *tx) findUser(ctx context.Context, column, value string) (*account.User, error) {
	query := t.store.rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?` + t.store.lockSuffix())

	var (
		u           account.User
		confirmedAt sql.NullTime
	)
	err := t.db.QueryRowContext(ctx, query, value).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Name,
		&u.Confirmed, &u.RegisteredAt, &confirmedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.RegisteredAt = u.RegisteredAt.UTC()
	if confirmedAt.Valid {
		at := confirmedAt.Time.UTC()
		u.ConfirmedAt = &at
	}

	roles, err := t.roles(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles

	return &u, nil
}

func (t *tx) roles(ctx context.Context, userID string) ([]account.Role, error) {
	query := t.store.rebind(`SELECT r.name, p.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		LEFT JOIN role_permissions rp ON rp.role_id = r.id
		LEFT JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = ?
		ORDER BY r.name, p.name`)

	rows, err := t.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var roles []account.Role
	for rows.Next() {
		var (
			role string
			perm sql.NullString
		)
		if err := rows.Scan(&role, &perm); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if len(roles) == 0 || roles[len(roles)-1].Name != role {
			roles = append(roles, account.Role{Name: role})
		}
		if perm.Valid {
			last := &roles[len(roles)-1]
			last.Permissions = append(last.Permissions, account.Permission{Name: perm.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return roles, nil
}

func (t *tx) Create(ctx context.Context, u *account.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	query := t.store.rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := t.db.ExecContext(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Name,
		u.Confirmed, u.RegisteredAt.UTC(), nullTime(u.ConfirmedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return account.ErrEmailExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (t *tx) Update(ctx context.Context, u *account.User) error {
	query := t.store.rebind(`UPDATE users
		SET password_hash = ?, first_name = ?, last_name = ?, name = ?, confirmed = ?, confirmed_at = ?
		WHERE id = ?`)
	res, err := t.db.ExecContext(ctx, query,
		u.PasswordHash, u.FirstName, u.LastName, u.Name, u.Confirmed, nullTime(u.ConfirmedAt), u.ID,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (t *tx) AppendLog(ctx context.Context, entry account.LogEntry) error {
	query := t.store.rebind(`INSERT INTO logs (user_id, kind, created_at)
		SELECT id, ?, ? FROM users WHERE id = ?`)
	res, err := t.db.ExecContext(ctx, query, string(entry.Kind), entry.At.UTC(), entry.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (t *tx) Logs(ctx context.Context, userID string) ([]account.LogEntry, error) {
	if err := t.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := t.db.QueryContext(ctx, t.store.rebind(`SELECT kind, created_at FROM logs WHERE user_id = ? ORDER BY id`), userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []account.LogEntry
	for rows.Next() {
		var (
			kind string
			at   time.Time
		)
		if err := rows.Scan(&kind, &at); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, account.LogEntry{UserID: userID, Kind: account.LogKind(kind), At: at.UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (t *tx) requireUser(ctx context.Context, userID string) error {
	var one int
	err := t.db.QueryRowContext(ctx, t.store.rebind(`SELECT 1 FROM users WHERE id = ?`), userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return account.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ensureNamed returns the id of the row called name in table, inserting it
// first when absent. table is always a package constant.
func (t *tx) ensureNamed(ctx context.Context, table, name string) (int64, error) {
	if _, err := t.db.ExecContext(ctx, t.store.rebind(
		`INSERT INTO `+table+` (name) VALUES (?) ON CONFLICT (name) DO NOTHING`), name); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	var id int64
	if err := t.db.QueryRowContext(ctx, t.store.rebind(
		`SELECT id FROM `+table+` WHERE name = ?`), name).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return account.ErrUserNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
