package rag

import (
	"math"
	"sort"

	"learning_server/core/domain"
)

// DefaultTopK is the number of chunks kept for document retrieval.
const DefaultTopK = 3

// ChunkVector pairs a chunk with its embedding.
type ChunkVector struct {
	Chunk  domain.Chunk
	Vector domain.EmbeddingVector
}

// CosineSimilarity returns dot(a,b)/(|a||b|). It is 0 when either vector has
// zero norm or the dimensions differ.
func CosineSimilarity(a, b domain.EmbeddingVector) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, sim))
}

// Rank scores every chunk against query, highest similarity first. Equal
// scores keep chunk index order.
func Rank(query domain.EmbeddingVector, chunks []ChunkVector) []domain.RankedChunk {
	ranked := make([]domain.RankedChunk, 0, len(chunks))
	for _, cv := range chunks {
		ranked = append(ranked, domain.RankedChunk{
			Chunk:      cv.Chunk,
			Similarity: CosineSimilarity(query, cv.Vector),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Similarity != ranked[j].Similarity {
			return ranked[i].Similarity > ranked[j].Similarity
		}
		return ranked[i].Chunk.Index < ranked[j].Chunk.Index
	})
	return ranked
}

// SelectTopK returns the first k entries. Non-positive k means DefaultTopK.
func SelectTopK(ranked []domain.RankedChunk, k int) []domain.RankedChunk {
	if k <= 0 {
		k = DefaultTopK
	}
	if len(ranked) < k {
		k = len(ranked)
	}
	return ranked[:k]
}
