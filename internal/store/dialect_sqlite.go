package store

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDialect implements Dialect for sqlite, used by the local cache and
// as a zero-setup primary store in development.
type SQLiteDialect struct{}

func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

func (d *SQLiteDialect) DSN(config DialectConfig) string {
	return config.Path + "?_journal_mode=WAL&_busy_timeout=5000"
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	return query
}

func (d *SQLiteDialect) CreateTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			doc_key TEXT NOT NULL,
			doc TEXT NOT NULL,
			dirty INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (collection, doc_key)
		)
	`
}

func (d *SQLiteDialect) UpsertQuery() string {
	return `
		INSERT INTO documents (collection, doc_key, doc, dirty, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, doc_key) DO UPDATE SET
			doc = excluded.doc,
			dirty = excluded.dirty,
			updated_at = excluded.updated_at
	`
}

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	// sqlite handles one writer; avoid lock contention from the pool
	db.SetMaxOpenConns(1)
	return nil
}
