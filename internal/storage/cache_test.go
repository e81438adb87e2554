package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeRecords(t *testing.T, path string, texts ...string) {
	t.Helper()
	records := make([]chunkRecord, len(texts))
	for i, text := range texts {
		records[i] = chunkRecord{Text: text, Filename: "doc.pdf", Embedding: []float32{1, 0}}
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
}

func TestCachedStore_ServesFromMemoryUntilInvalidated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.json")
	writeRecords(t, path, "original")
	store := NewCachedStore(NewFileStore(path))
	ctx := context.Background()

	chunks, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0].Text != "original" {
		t.Fatalf("unexpected first load: %+v", chunks)
	}

	// Replace the artifact on disk; the cache must keep serving the old data.
	writeRecords(t, path, "replaced", "second")
	chunks, err = store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0].Text != "original" {
		t.Errorf("cache should serve stale data before invalidation, got %+v", chunks)
	}

	store.Invalidate()
	chunks, err = store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 || chunks[0].Text != "replaced" {
		t.Errorf("post-invalidation load should see new artifact, got %+v", chunks)
	}
}

func TestCachedStore_DoesNotCacheErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.json")
	store := NewCachedStore(NewFileStore(path))
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Load() error = %v, want ErrStoreUnavailable", err)
	}

	writeRecords(t, path, "now present")
	chunks, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() after artifact appears: %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("loaded %d chunks, want 1", len(chunks))
	}
}

func TestCachedStore_InvalidateBeforeLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.json")
	writeRecords(t, path, "a")
	store := NewCachedStore(NewFileStore(path))

	store.Invalidate()
	chunks, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Errorf("loaded %d chunks, want 1", len(chunks))
	}
}

func TestCachedStore_StatsReadThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.json")
	writeRecords(t, path, "a", "b")
	store := NewCachedStore(NewFileStore(path))

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Chunks != 2 {
		t.Errorf("Chunks = %d, want 2", stats.Chunks)
	}
}
