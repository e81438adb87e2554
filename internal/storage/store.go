// Package storage loads the precomputed knowledge base from its persisted artifact.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/umoja/ujenzi/internal/models"
)

// ErrStoreUnavailable marks a missing or corrupt knowledge-base artifact.
// Load failures are surfaced, never absorbed: an empty knowledge base would
// silently degrade every downstream answer.
var ErrStoreUnavailable = errors.New("knowledge base unavailable")

// Store provides read access to the knowledge base.
type Store interface {
	// Load returns all chunks in artifact order.
	Load(ctx context.Context) ([]models.KnowledgeChunk, error)
	// Stats reports chunk count, unique source count, and artifact size.
	Stats(ctx context.Context) (models.StoreStats, error)
}

// chunkRecord mirrors one record of the knowledge-base artifact as written
// by the ingestion pipeline. The store consumes text, filename, and
// embedding; type, index, and metadata travel with the artifact for other
// consumers.
type chunkRecord struct {
	Text      string          `json:"text"`
	Type      string          `json:"type"`
	Filename  string          `json:"filename"`
	Index     int             `json:"index"`
	Metadata  json.RawMessage `json:"metadata"`
	Embedding []float32       `json:"embedding"`
}

// FileStore reads the knowledge base from its JSON artifact on every Load,
// so each query sees the latest ingested data without needing an
// invalidation signal. Wrap it in a CachedStore to trade that freshness
// for fewer disk reads.
type FileStore struct {
	path string
}

// NewFileStore creates a store reading from the artifact at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and decodes the artifact, returning chunks in artifact order.
// Read, decode, and dimensionality failures wrap ErrStoreUnavailable.
func (s *FileStore) Load(ctx context.Context) ([]models.KnowledgeChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStoreUnavailable, s.path, err)
	}

	var records []chunkRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrStoreUnavailable, s.path, err)
	}

	chunks := make([]models.KnowledgeChunk, len(records))
	dims := -1
	for i, rec := range records {
		if dims < 0 {
			dims = len(rec.Embedding)
		} else if len(rec.Embedding) != dims {
			// Mixed dimensionality makes every similarity comparison
			// undefined, so the whole artifact is rejected as corrupt.
			return nil, fmt.Errorf("%w: record %d has embedding dimension %d, expected %d",
				ErrStoreUnavailable, i, len(rec.Embedding), dims)
		}
		chunks[i] = models.KnowledgeChunk{
			Text:      rec.Text,
			Source:    rec.Filename,
			Embedding: rec.Embedding,
		}
	}
	return chunks, nil
}

// Stats loads the artifact and reports chunk count, unique source count,
// and artifact size in bytes.
func (s *FileStore) Stats(ctx context.Context) (models.StoreStats, error) {
	chunks, err := s.Load(ctx)
	if err != nil {
		return models.StoreStats{}, err
	}
	sources := make(map[string]struct{}, len(chunks))
	for _, c := range chunks {
		sources[c.Source] = struct{}{}
	}
	bytes, err := DiskUsageBytes(s.path)
	if err != nil {
		return models.StoreStats{}, fmt.Errorf("artifact size: %w", err)
	}
	return models.StoreStats{
		Chunks:        len(chunks),
		UniqueSources: len(sources),
		ArtifactBytes: bytes,
	}, nil
}
