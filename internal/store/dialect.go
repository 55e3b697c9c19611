package store

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect captures the database-specific pieces of the SQL document backend.
type Dialect interface {
	// DriverName returns the driver name for sql.Open.
	DriverName() string

	// DSN returns the data source name for the connection.
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (? to $1 for postgres).
	RewriteQuery(query string) string

	// CreateTableQuery returns the documents table DDL.
	CreateTableQuery() string

	// UpsertQuery returns the insert-or-update statement for a document.
	UpsertQuery() string

	// ConfigureConnection applies any database-specific connection settings.
	ConfigureConnection(db *sql.DB) error
}

// DialectConfig holds connection parameters.
type DialectConfig struct {
	// For sqlite
	Path string

	// For postgres/mysql
	URL string
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
