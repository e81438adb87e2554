// Package llm adapts the hosted embedding and completion services behind
// small provider interfaces so pipeline components can substitute test doubles.
package llm

import (
	"context"
	"errors"
)

// ErrEmbeddingFailed marks a failed query-embedding request. Embedding is a
// required stage; the caller surfaces this instead of answering from nothing.
var ErrEmbeddingFailed = errors.New("embedding request failed")

// EmbeddingProvider produces vector embeddings for text. The provider must
// be backed by the same model that produced the knowledge-base embeddings.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// CompletionProvider produces a text completion from a system persona and
// a user prompt.
type CompletionProvider interface {
	Complete(ctx context.Context, system, user string, temperature float32) (string, error)
}
