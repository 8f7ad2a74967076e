// Package bunx provides the console's local database handle. Browser
// sessions are the only thing persisted, so SQLite is the sole dialect.
package bunx

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // SQLite driver
)

// NewDB opens a Bun database over SQLite at the given DSN. Use
// "file::memory:?cache=shared" for an ephemeral store.
func NewDB(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite tolerates many readers but only one writer; serialize access
	// through a single connection.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func Close(db *bun.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
