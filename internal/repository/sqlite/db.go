// Package sqlite implements the storage ports on an embedded SQLite database
// through the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DSN options every connection needs: enforced foreign keys, a busy timeout,
// write transactions that take the lock up front and sortable UTC timestamps.
var dsnDefaults = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_txlock=immediate",
	"_time_format=sqlite",
}

// Open opens the database at dsn (a file path, "file:" URI or ":memory:").
// The pool is limited to one connection, so transactions are serialized.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", withDefaults(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func withDefaults(dsn string) string {
	var opts []string
	for _, opt := range dsnDefaults {
		key, _, _ := strings.Cut(opt, "=")
		if key != "_pragma" && strings.Contains(dsn, key+"=") {
			continue
		}
		if key == "_pragma" && strings.Contains(dsn, opt) {
			continue
		}
		opts = append(opts, opt)
	}
	if len(opts) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(opts, "&")
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func utc(t time.Time) time.Time {
	return t.UTC()
}

func newID() string {
	return uuid.NewString()
}

type rowScanner interface {
	Scan(dest ...any) error
}
