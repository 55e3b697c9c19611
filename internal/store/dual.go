package store

import (
	"context"
	"log"
)

// DualStore routes every operation through the primary backend with the
// local cache as fallback. Writes go primary-first but always land in the
// local cache, so a network outage never loses a learner's progress; a
// failed primary write marks the cached copy dirty for later replay by the
// sync command.
type DualStore struct {
	primary Backend
	local   Backend
}

// NewDualStore pairs a primary backend with its local fallback cache.
func NewDualStore(primary, local Backend) *DualStore {
	return &DualStore{primary: primary, local: local}
}

// Local exposes the cache backend for reconciliation tooling.
func (s *DualStore) Local() Backend {
	return s.local
}

// Primary exposes the primary backend for reconciliation tooling.
func (s *DualStore) Primary() Backend {
	return s.primary
}

// Put writes to the primary first, then always to the local cache. A primary
// failure is logged and flagged, never returned: the game must not block on
// the network. Only a local cache failure is an error.
func (s *DualStore) Put(ctx context.Context, collection, key string, fields map[string]any) error {
	primaryErr := s.primary.Put(ctx, collection, key, fields)
	if primaryErr != nil {
		log.Printf("Warning: %s put %s/%s failed, keeping local copy: %v",
			s.primary.Name(), collection, key, primaryErr)
	}

	if err := s.local.Put(ctx, collection, key, fields); err != nil {
		return err
	}
	if primaryErr != nil {
		if marker, ok := s.local.(DirtyMarker); ok {
			if err := marker.MarkDirty(ctx, collection, key); err != nil {
				log.Printf("Warning: mark dirty %s/%s: %v", collection, key, err)
			}
		}
	}
	return nil
}

// Get reads from the primary; on error or not-found it falls back to the
// local cache. Returns (nil, nil) only when both are empty.
func (s *DualStore) Get(ctx context.Context, collection, key string) (map[string]any, error) {
	fields, err := s.primary.Get(ctx, collection, key)
	if err != nil {
		log.Printf("Warning: %s get %s/%s failed, using local cache: %v",
			s.primary.Name(), collection, key, err)
	} else if fields != nil {
		return fields, nil
	}
	return s.local.Get(ctx, collection, key)
}

// Delete removes the document from both backends, best-effort. The document
// counts as deleted once the local copy is gone; a failed remote delete is
// swallowed, not retried.
func (s *DualStore) Delete(ctx context.Context, collection, key string) error {
	if err := s.primary.Delete(ctx, collection, key); err != nil {
		log.Printf("Warning: %s delete %s/%s failed: %v",
			s.primary.Name(), collection, key, err)
	}
	return s.local.Delete(ctx, collection, key)
}

// Query lists from the primary, falling back to the local cache on error or
// an empty result set.
func (s *DualStore) Query(ctx context.Context, collection string, filter *Filter) ([]Document, error) {
	docs, err := s.primary.Query(ctx, collection, filter)
	if err != nil {
		log.Printf("Warning: %s query %s failed, using local cache: %v",
			s.primary.Name(), collection, err)
	} else if len(docs) > 0 {
		return docs, nil
	}
	return s.local.Query(ctx, collection, filter)
}

// Name implements Backend.
func (s *DualStore) Name() string {
	return "dual(" + s.primary.Name() + "," + s.local.Name() + ")"
}
