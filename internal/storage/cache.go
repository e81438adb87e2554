package storage

import (
	"context"
	"sync"

	"github.com/umoja/ujenzi/internal/models"
)

// CachedStore wraps a Store and serves Load from memory after the first
// success. Invalidate drops the cache so the next Load reads through again;
// server watch mode calls it when the artifact file changes. Callers must
// treat the returned chunk slice as read-only, since loads share it.
type CachedStore struct {
	inner Store

	mu     sync.RWMutex
	chunks []models.KnowledgeChunk
	loaded bool
}

// NewCachedStore wraps inner with an invalidation-based cache.
func NewCachedStore(inner Store) *CachedStore {
	return &CachedStore{inner: inner}
}

// Load returns the cached chunks, reading through to the underlying store
// on the first call or after Invalidate. Errors are not cached; a failed
// read-through leaves the next Load to retry.
func (s *CachedStore) Load(ctx context.Context) ([]models.KnowledgeChunk, error) {
	s.mu.RLock()
	if s.loaded {
		chunks := s.chunks
		s.mu.RUnlock()
		return chunks, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.chunks, nil
	}
	chunks, err := s.inner.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.chunks = chunks
	s.loaded = true
	return chunks, nil
}

// Invalidate drops the cached chunks.
func (s *CachedStore) Invalidate() {
	s.mu.Lock()
	s.chunks = nil
	s.loaded = false
	s.mu.Unlock()
}

// Stats delegates to the underlying store; sizes come from disk, not the cache.
func (s *CachedStore) Stats(ctx context.Context) (models.StoreStats, error) {
	return s.inner.Stats(ctx)
}
