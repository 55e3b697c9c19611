package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"khamboran/internal/config"
	"khamboran/internal/store"
)

// Replays documents the server could only write to the local cache back into
// the primary store. Run it once the primary is reachable again.
func main() {
	collection := flag.String("collection", "", "only sync this collection (default: all)")
	dryRun := flag.Bool("dry-run", false, "list dirty documents without writing")
	flag.Parse()

	cfg := config.Load()

	primary, err := openPrimary(cfg)
	if err != nil {
		log.Fatalf("Failed to open primary store: %v", err)
	}
	defer primary.Close()

	local, err := store.OpenSQLBackend("local", store.NewSQLiteDialect(), store.DialectConfig{Path: cfg.CachePath})
	if err != nil {
		log.Fatalf("Failed to open local cache: %v", err)
	}
	defer local.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	collections := []string{*collection}
	if *collection == "" {
		collections, err = local.Collections(ctx)
		if err != nil {
			log.Fatalf("Failed to list collections: %v", err)
		}
	}

	var synced, failed int
	for _, coll := range collections {
		docs, err := local.ListDirty(ctx, coll)
		if err != nil {
			log.Printf("Warning: list dirty documents in %s: %v", coll, err)
			continue
		}
		for _, doc := range docs {
			if *dryRun {
				log.Printf("Would sync %s/%s (updated %s)", doc.Collection, doc.Key, doc.UpdatedAt.Format(time.RFC3339))
				synced++
				continue
			}
			if err := primary.Put(ctx, doc.Collection, doc.Key, doc.Fields); err != nil {
				log.Printf("Warning: sync %s/%s: %v", doc.Collection, doc.Key, err)
				failed++
				continue
			}
			if err := local.ClearDirty(ctx, doc.Collection, doc.Key); err != nil {
				log.Printf("Warning: clear dirty flag on %s/%s: %v", doc.Collection, doc.Key, err)
			}
			synced++
		}
	}

	if *dryRun {
		log.Printf("Dry run complete: %d document(s) pending", synced)
		return
	}
	log.Printf("Sync complete: %d synced, %d failed", synced, failed)
}

// openPrimary picks the dialect for the configured database type.
func openPrimary(cfg *config.Config) (*store.SQLBackend, error) {
	switch cfg.DatabaseType {
	case "sqlite", "":
		return store.OpenSQLBackend("primary", store.NewSQLiteDialect(), store.DialectConfig{Path: cfg.DatabasePath})
	case "postgres":
		return store.OpenSQLBackend("primary", store.NewPostgresDialect(), store.DialectConfig{URL: cfg.DatabaseURL})
	case "mysql":
		return store.OpenSQLBackend("primary", store.NewMySQLDialect(), store.DialectConfig{URL: cfg.DatabaseURL})
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DatabaseType)
	}
}
