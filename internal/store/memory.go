package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// MemoryBackend is an in-process Backend used by tests and as a stand-in
// when no database is available. Documents are deep-copied on the way in and
// out so callers never share maps with the store.
type MemoryBackend struct {
	mu   sync.Mutex
	name string
	docs map[string]map[string]Document

	// FailPuts, FailGets, FailDeletes and FailQueries make every
	// corresponding call return Err, simulating an unreachable primary.
	FailPuts    bool
	FailGets    bool
	FailDeletes bool
	FailQueries bool
	Err         error
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend(name string) *MemoryBackend {
	return &MemoryBackend{
		name: name,
		docs: make(map[string]map[string]Document),
	}
}

// Name implements Backend.
func (b *MemoryBackend) Name() string {
	return b.name
}

// Put implements Backend.
func (b *MemoryBackend) Put(ctx context.Context, collection, key string, fields map[string]any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailPuts {
		return b.Err
	}
	if b.docs[collection] == nil {
		b.docs[collection] = make(map[string]Document)
	}
	b.docs[collection][key] = Document{
		Collection: collection,
		Key:        key,
		Fields:     copyFields(fields),
		UpdatedAt:  time.Now().UTC(),
	}
	return nil
}

// Get implements Backend.
func (b *MemoryBackend) Get(ctx context.Context, collection, key string) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailGets {
		return nil, b.Err
	}
	doc, ok := b.docs[collection][key]
	if !ok {
		return nil, nil
	}
	return copyFields(doc.Fields), nil
}

// Delete implements Backend.
func (b *MemoryBackend) Delete(ctx context.Context, collection, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailDeletes {
		return b.Err
	}
	delete(b.docs[collection], key)
	return nil
}

// Query implements Backend.
func (b *MemoryBackend) Query(ctx context.Context, collection string, filter *Filter) ([]Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailQueries {
		return nil, b.Err
	}
	keys := make([]string, 0, len(b.docs[collection]))
	for key := range b.docs[collection] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var out []Document
	for _, key := range keys {
		doc := b.docs[collection][key]
		if filter != nil && StringField(doc.Fields, filter.Field, "") != filter.Value {
			continue
		}
		doc.Fields = copyFields(doc.Fields)
		out = append(out, doc)
	}
	return out, nil
}

// MarkDirty implements DirtyMarker.
func (b *MemoryBackend) MarkDirty(ctx context.Context, collection, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc, ok := b.docs[collection][key]
	if !ok {
		return nil
	}
	doc.Dirty = true
	b.docs[collection][key] = doc
	return nil
}

// ListDirty implements DirtyMarker.
func (b *MemoryBackend) ListDirty(ctx context.Context, collection string) ([]Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Document
	for _, doc := range b.docs[collection] {
		if doc.Dirty {
			doc.Fields = copyFields(doc.Fields)
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// ClearDirty implements DirtyMarker.
func (b *MemoryBackend) ClearDirty(ctx context.Context, collection, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc, ok := b.docs[collection][key]
	if !ok {
		return nil
	}
	doc.Dirty = false
	b.docs[collection][key] = doc
	return nil
}

// copyFields round-trips through JSON, which also normalizes numbers and
// times to the shapes documents have after any real backend.
func copyFields(fields map[string]any) map[string]any {
	raw, err := json.Marshal(fields)
	if err != nil {
		out := make(map[string]any, len(fields))
		for k, v := range fields {
			out[k] = v
		}
		return out
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return fields
	}
	return out
}
