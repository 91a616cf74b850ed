// Package sqlstore is a database/sql implementation of account.Store for
// PostgreSQL (through the pgx stdlib driver) and SQLite (through the
// pure-Go modernc driver).
//
// Schema lives in embedded goose migrations, one directory per dialect;
// call [Store.Migrate] before first use. Queries are written with '?'
// placeholders and rebound to '$n' for PostgreSQL.
package sqlstore
