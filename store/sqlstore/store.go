package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/MrEthical07/goAccount/account"
)

// Dialect selects SQL flavour and driver.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func (d Dialect) driverName() (string, error) {
	switch d {
	case Postgres:
		return "pgx", nil
	case SQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("sqlstore: unsupported dialect %q", d)
	}
}

// DBTX is the query surface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements account.Store on a *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ account.Store = (*Store)(nil)

// New wraps an open database. The caller keeps ownership of db.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Open connects to dsn with the driver for dialect and pings it.
// SQLite connections are limited to one so that writers serialize.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	driver, err := dialect.driverName()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlstore: enable foreign keys: %w", err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: ping: %w", err)
	}

	return New(db, dialect), nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithinTx runs fn inside one database transaction. It commits when fn
// returns nil and rolls back otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx account.Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db error: begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if err = fn(ctx, &tx{db: sqlTx, store: s}); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("db error: commit: %w", err)
	}
	return nil
}

// GrantRole attaches role, creating it and its permissions when missing.
func (s *Store) GrantRole(ctx context.Context, userID, role string, permissions ...string) error {
	return s.WithinTx(ctx, func(ctx context.Context, atx account.Tx) error {
		t := atx.(*tx)
		if err := t.requireUser(ctx, userID); err != nil {
			return err
		}

		roleID, err := t.ensureNamed(ctx, "roles", role)
		if err != nil {
			return err
		}
		if _, err := t.db.ExecContext(ctx, s.rebind(
			`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?) ON CONFLICT DO NOTHING`),
			userID, roleID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		for _, p := range permissions {
			permID, err := t.ensureNamed(ctx, "permissions", p)
			if err != nil {
				return err
			}
			if _, err := t.db.ExecContext(ctx, s.rebind(
				`INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?) ON CONFLICT DO NOTHING`),
				roleID, permID); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
}

// rebind rewrites '?' placeholders to '$1..$n' for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *Store) lockSuffix() string {
	if s.dialect == Postgres {
		return " FOR UPDATE"
	}
	return ""
}
