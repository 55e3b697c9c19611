// Package store implements the dual-backend persistence layer: a primary
// networked document store over SQL, a local sqlite fallback cache, and the
// session-store abstraction that hides the legacy/canonical collection split
// from callers.
package store

import (
	"context"
	"time"
)

// Collection names. Sessions historically lived under CollectionLegacySessions
// before the rename; reads and deletes still consult both.
const (
	CollectionUsers          = "User"
	CollectionSessions       = "GameSession"
	CollectionLegacySessions = "gameSessions"
	CollectionAnswers        = "UserAnswer"
	CollectionMeta           = "meta"
)

// Document is one stored record with its addressing metadata.
type Document struct {
	Collection string         `json:"collection"`
	Key        string         `json:"key"`
	Fields     map[string]any `json:"fields"`
	Dirty      bool           `json:"dirty"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// Filter is an optional equality match on a top-level document field.
type Filter struct {
	Field string
	Value string
}

// Backend is the contract both the primary store and the local cache
// implement. Get returns (nil, nil) when the key does not exist; an error
// means the backend itself failed, which callers treat differently.
type Backend interface {
	Put(ctx context.Context, collection, key string, fields map[string]any) error
	Get(ctx context.Context, collection, key string) (map[string]any, error)
	Delete(ctx context.Context, collection, key string) error
	Query(ctx context.Context, collection string, filter *Filter) ([]Document, error)
	Name() string
}

// DirtyMarker is implemented by backends that can flag a document for later
// reconciliation after a failed primary write.
type DirtyMarker interface {
	MarkDirty(ctx context.Context, collection, key string) error
	ListDirty(ctx context.Context, collection string) ([]Document, error)
	ClearDirty(ctx context.Context, collection, key string) error
}
