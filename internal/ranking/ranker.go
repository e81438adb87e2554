// Package ranking scores knowledge chunks against a query embedding by
// cosine similarity. Ranking is a pure function of its inputs: identical
// query, chunks, and topK always produce the identical result sequence.
package ranking

import (
	"math"
	"sort"

	"github.com/umoja/ujenzi/internal/models"
)

// CosineSimilarity returns the cosine of the angle between a and b, with
// float64 accumulation. A zero-norm vector on either side, or a length
// mismatch, makes the similarity undefined; math.Inf(-1) is returned so a
// malformed embedding sorts to the bottom instead of aborting the ranking.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(-1)
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return math.Inf(-1)
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores every chunk against the query embedding and returns the topK
// highest scoring, in descending score order. Equal scores keep original
// chunk order (earlier index wins). topK <= 0 returns an empty slice;
// topK beyond the chunk count returns all chunks ranked.
func Rank(query []float32, chunks []models.KnowledgeChunk, topK int) []models.RankedResult {
	if topK <= 0 || len(chunks) == 0 {
		return []models.RankedResult{}
	}

	results := make([]models.RankedResult, len(chunks))
	for i, chunk := range chunks {
		results[i] = models.RankedResult{
			Chunk: chunk,
			Index: i,
			Score: CosineSimilarity(query, chunk.Embedding),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results
}
