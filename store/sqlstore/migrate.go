package sqlstore

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// gooseUpContext is a seam for tests.
var gooseUpContext = func(ctx context.Context, s *Store, dir string) error {
	return goose.UpContext(ctx, s.db, dir)
}

// Migrate applies every pending migration for the store's dialect.
func (s *Store) Migrate(ctx context.Context) error {
	var gooseDialect string
	switch s.dialect {
	case Postgres:
		gooseDialect = "pgx"
	case SQLite:
		gooseDialect = "sqlite3"
	default:
		return fmt.Errorf("sqlstore: unsupported dialect %q", s.dialect)
	}

	sub, err := fs.Sub(migrations, "migrations/"+string(s.dialect))
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(sub)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}

	if err := gooseUpContext(ctx, s, "."); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}
