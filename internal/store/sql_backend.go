package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLBackend implements Backend over a database/sql connection with a
// dialect-specific documents table. The same type serves as the primary
// store (postgres/mysql) and the local cache (sqlite).
type SQLBackend struct {
	db      *sql.DB
	dialect Dialect
	name    string
}

// OpenSQLBackend connects, verifies and migrates a document store.
func OpenSQLBackend(name string, dialect Dialect, config DialectConfig) (*SQLBackend, error) {
	db, err := sql.Open(dialect.DriverName(), dialect.DSN(config))
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", name, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s backend: %w", name, err)
	}
	if err := dialect.ConfigureConnection(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure %s backend: %w", name, err)
	}
	b := &SQLBackend{db: db, dialect: dialect, name: name}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s backend: %w", name, err)
	}
	return b, nil
}

func (b *SQLBackend) migrate() error {
	_, err := b.db.Exec(b.dialect.CreateTableQuery())
	return err
}

// Close closes the underlying connection.
func (b *SQLBackend) Close() error {
	return b.db.Close()
}

// Name identifies the backend in log lines.
func (b *SQLBackend) Name() string {
	return b.name
}

// Put inserts or replaces a document and clears any dirty flag.
func (b *SQLBackend) Put(ctx context.Context, collection, key string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, key, err)
	}
	query := b.dialect.RewriteQuery(b.dialect.UpsertQuery())
	if _, err := b.db.ExecContext(ctx, query, collection, key, string(raw), 0, time.Now().UTC()); err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, key, err)
	}
	return nil
}

// Get returns the document fields, or (nil, nil) when the key is absent.
func (b *SQLBackend) Get(ctx context.Context, collection, key string) (map[string]any, error) {
	query := b.dialect.RewriteQuery(
		`SELECT doc FROM documents WHERE collection = ? AND doc_key = ?`)
	var raw string
	err := b.db.QueryRowContext(ctx, query, collection, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", collection, key, err)
	}
	return fields, nil
}

// Delete removes a document. Deleting an absent key is not an error.
func (b *SQLBackend) Delete(ctx context.Context, collection, key string) error {
	query := b.dialect.RewriteQuery(
		`DELETE FROM documents WHERE collection = ? AND doc_key = ?`)
	if _, err := b.db.ExecContext(ctx, query, collection, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	return nil
}

// Query returns every document in a collection, optionally narrowed by a
// top-level field equality filter. Filtering happens after decoding because
// documents are schemaless JSON and the filter must behave identically on
// every dialect.
func (b *SQLBackend) Query(ctx context.Context, collection string, filter *Filter) ([]Document, error) {
	query := b.dialect.RewriteQuery(
		`SELECT doc_key, doc, dirty, updated_at FROM documents WHERE collection = ?`)
	rows, err := b.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			key       string
			raw       string
			dirty     int
			updatedAt time.Time
		)
		if err := rows.Scan(&key, &raw, &dirty, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			// a corrupt row degrades to a skipped document, not a failed query
			continue
		}
		if filter != nil && !matchesFilter(fields, filter) {
			continue
		}
		docs = append(docs, Document{
			Collection: collection,
			Key:        key,
			Fields:     fields,
			Dirty:      dirty != 0,
			UpdatedAt:  updatedAt,
		})
	}
	return docs, rows.Err()
}

func matchesFilter(fields map[string]any, filter *Filter) bool {
	v, ok := fields[filter.Field]
	if !ok {
		return false
	}
	return fmt.Sprint(v) == filter.Value
}

// MarkDirty flags a document for reconciliation after a failed primary write.
func (b *SQLBackend) MarkDirty(ctx context.Context, collection, key string) error {
	query := b.dialect.RewriteQuery(
		`UPDATE documents SET dirty = 1 WHERE collection = ? AND doc_key = ?`)
	if _, err := b.db.ExecContext(ctx, query, collection, key); err != nil {
		return fmt.Errorf("mark dirty %s/%s: %w", collection, key, err)
	}
	return nil
}

// ListDirty returns the documents awaiting replay to the primary store.
func (b *SQLBackend) ListDirty(ctx context.Context, collection string) ([]Document, error) {
	docs, err := b.Query(ctx, collection, nil)
	if err != nil {
		return nil, err
	}
	var dirty []Document
	for _, d := range docs {
		if d.Dirty {
			dirty = append(dirty, d)
		}
	}
	return dirty, nil
}

// ClearDirty unflags a document after a successful replay.
func (b *SQLBackend) ClearDirty(ctx context.Context, collection, key string) error {
	query := b.dialect.RewriteQuery(
		`UPDATE documents SET dirty = 0 WHERE collection = ? AND doc_key = ?`)
	if _, err := b.db.ExecContext(ctx, query, collection, key); err != nil {
		return fmt.Errorf("clear dirty %s/%s: %w", collection, key, err)
	}
	return nil
}

// Collections returns the distinct collection names present in the backend.
func (b *SQLBackend) Collections(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT collection FROM documents`
	rows, err := b.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
