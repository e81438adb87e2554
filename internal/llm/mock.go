package llm

import (
	"context"
	"math"
)

// MockEmbedder is a deterministic embedding provider for tests. It returns a
// fixed-dimension unit vector derived from the text hash so the same text
// always gets the same embedding. Vectors, when set, pins specific texts to
// specific embeddings so a test can control ranking outcomes exactly.
type MockEmbedder struct {
	dimensions int

	Vectors map[string][]float32
	Err     error
}

// NewMockEmbedder returns an embedder producing deterministic embeddings of
// the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns the pinned vector for text when one is set, otherwise a
// deterministic hash-derived unit vector.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	if v, ok := e.Vectors[text]; ok {
		return v, nil
	}
	h := hashString(text)
	emb := make([]float32, e.dimensions)
	for i := range emb {
		emb[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
	}
	normalizeL2(emb)
	return emb, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// MockCompleter is a deterministic completion provider for tests. Reply, if
// set, builds the response from the prompts; otherwise Text is returned.
// The Last* fields record the most recent call for assertions.
type MockCompleter struct {
	Text  string
	Err   error
	Reply func(system, user string) string

	LastSystem      string
	LastUser        string
	LastTemperature float32
}

// Complete records the call and returns the configured response.
func (m *MockCompleter) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	m.LastSystem = system
	m.LastUser = user
	m.LastTemperature = temperature
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != nil {
		return m.Reply(system, user), nil
	}
	return m.Text, nil
}

func hashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}

func normalizeL2(x []float32) {
	var sum float32
	for _, v := range x {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range x {
		x[i] *= norm
	}
}
