// Package models defines core data structures for knowledge chunks, answers, and images.
package models

// KnowledgeChunk is one retrievable unit of the knowledge base: a text passage
// paired with its origin document and embedding vector. Chunks are immutable
// once loaded; the store they belong to is replaced wholesale, never edited.
type KnowledgeChunk struct {
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	Embedding []float32 `json:"-"`
}

// RankedResult pairs a chunk with its similarity score for one query.
// Index is the chunk's position in the loaded store; equal scores keep
// ascending Index order so rankings are deterministic.
type RankedResult struct {
	Chunk KnowledgeChunk `json:"chunk"`
	Index int            `json:"index"`
	Score float64        `json:"score"`
}

// StoreStats summarizes a loaded knowledge base.
type StoreStats struct {
	Chunks        int   `json:"chunks"`
	UniqueSources int   `json:"unique_sources"`
	ArtifactBytes int64 `json:"artifact_bytes"`
}
