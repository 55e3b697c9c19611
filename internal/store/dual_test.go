package store

import (
	"context"
	"errors"
	"testing"
)

var errBackendDown = errors.New("backend unreachable")

func TestDualStorePutPrimaryFailureKeepsLocalCopy(t *testing.T) {
	primary := NewMemoryBackend("primary")
	primary.FailPuts = true
	primary.Err = errBackendDown
	local := NewMemoryBackend("local")
	dual := NewDualStore(primary, local)
	ctx := context.Background()

	if err := dual.Put(ctx, CollectionSessions, "s1", map[string]any{"totalScore": 120}); err != nil {
		t.Fatalf("Put returned error despite healthy local cache: %v", err)
	}

	fields, err := local.Get(ctx, CollectionSessions, "s1")
	if err != nil || fields == nil {
		t.Fatalf("local copy missing after primary failure: fields=%v err=%v", fields, err)
	}

	dirty, err := local.ListDirty(ctx, CollectionSessions)
	if err != nil {
		t.Fatalf("ListDirty: %v", err)
	}
	if len(dirty) != 1 || dirty[0].Key != "s1" {
		t.Errorf("expected s1 flagged dirty, got %v", dirty)
	}
}

func TestDualStorePutHealthyPrimaryIsNotDirty(t *testing.T) {
	primary := NewMemoryBackend("primary")
	local := NewMemoryBackend("local")
	dual := NewDualStore(primary, local)
	ctx := context.Background()

	if err := dual.Put(ctx, CollectionSessions, "s1", map[string]any{"totalScore": 120}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	fields, err := primary.Get(ctx, CollectionSessions, "s1")
	if err != nil || fields == nil {
		t.Fatalf("primary copy missing: fields=%v err=%v", fields, err)
	}
	dirty, err := local.ListDirty(ctx, CollectionSessions)
	if err != nil {
		t.Fatalf("ListDirty: %v", err)
	}
	if len(dirty) != 0 {
		t.Errorf("expected no dirty documents, got %v", dirty)
	}
}

func TestDualStoreGetFallsBackOnPrimaryError(t *testing.T) {
	primary := NewMemoryBackend("primary")
	local := NewMemoryBackend("local")
	ctx := context.Background()
	if err := local.Put(ctx, CollectionUsers, "u1", map[string]any{"name": "สมชาย"}); err != nil {
		t.Fatalf("seed local: %v", err)
	}
	primary.FailGets = true
	primary.Err = errBackendDown
	dual := NewDualStore(primary, local)

	fields, err := dual.Get(ctx, CollectionUsers, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fields == nil || fields["name"] != "สมชาย" {
		t.Errorf("expected local copy, got %v", fields)
	}
}

func TestDualStoreGetFallsBackOnPrimaryMiss(t *testing.T) {
	primary := NewMemoryBackend("primary")
	local := NewMemoryBackend("local")
	ctx := context.Background()
	if err := local.Put(ctx, CollectionUsers, "u1", map[string]any{"name": "สมชาย"}); err != nil {
		t.Fatalf("seed local: %v", err)
	}
	dual := NewDualStore(primary, local)

	fields, err := dual.Get(ctx, CollectionUsers, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fields == nil {
		t.Fatal("expected local fallback on a primary miss")
	}
}

func TestDualStoreGetBothEmpty(t *testing.T) {
	dual := NewDualStore(NewMemoryBackend("primary"), NewMemoryBackend("local"))

	fields, err := dual.Get(context.Background(), CollectionUsers, "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fields != nil {
		t.Errorf("expected (nil, nil) for missing document, got %v", fields)
	}
}

func TestDualStoreQueryFallsBackOnEmptyPrimary(t *testing.T) {
	primary := NewMemoryBackend("primary")
	local := NewMemoryBackend("local")
	ctx := context.Background()
	if err := local.Put(ctx, CollectionSessions, "s1", map[string]any{"studentId": "a"}); err != nil {
		t.Fatalf("seed local: %v", err)
	}
	dual := NewDualStore(primary, local)

	docs, err := dual.Query(ctx, CollectionSessions, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected 1 local document, got %d", len(docs))
	}
}

func TestDualStoreQueryPrefersPrimaryResults(t *testing.T) {
	primary := NewMemoryBackend("primary")
	local := NewMemoryBackend("local")
	ctx := context.Background()
	if err := primary.Put(ctx, CollectionSessions, "p1", map[string]any{"studentId": "a"}); err != nil {
		t.Fatalf("seed primary: %v", err)
	}
	if err := local.Put(ctx, CollectionSessions, "l1", map[string]any{"studentId": "a"}); err != nil {
		t.Fatalf("seed local: %v", err)
	}
	dual := NewDualStore(primary, local)

	docs, err := dual.Query(ctx, CollectionSessions, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 1 || docs[0].Key != "p1" {
		t.Errorf("expected only the primary document, got %v", docs)
	}
}

func TestDualStoreDeleteSurvivesPrimaryFailure(t *testing.T) {
	primary := NewMemoryBackend("primary")
	local := NewMemoryBackend("local")
	ctx := context.Background()
	if err := local.Put(ctx, CollectionSessions, "s1", map[string]any{}); err != nil {
		t.Fatalf("seed local: %v", err)
	}
	primary.FailDeletes = true
	primary.Err = errBackendDown
	dual := NewDualStore(primary, local)

	if err := dual.Delete(ctx, CollectionSessions, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	fields, err := local.Get(ctx, CollectionSessions, "s1")
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if fields != nil {
		t.Errorf("local copy survived delete: %v", fields)
	}
}
