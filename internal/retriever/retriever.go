// Package retriever ranks stored chunks against a query vector. The only
// implementation is an exact brute-force scan, which is the right design
// for a single small corpus; an indexed variant would have to live behind
// the same interface.
package retriever

import (
	"context"
	"math"
	"sort"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"studyrag/internal/model"
)

// ChunkSource yields every chunk that has an embedding, in a stable order.
type ChunkSource interface {
	ListWithEmbeddings(ctx context.Context) ([]model.Chunk, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, queryVec []float32, topK int) ([]model.RetrievedChunk, error)
}

type BruteForce struct {
	source ChunkSource
}

func NewBruteForce(source ChunkSource) *BruteForce {
	return &BruteForce{source: source}
}

// Retrieve scores every stored chunk with cosine similarity (as a 0-100
// percentage), sorts descending with ties keeping store order, and
// truncates to topK. Anti-correlated chunks score 0, same as the
// zero-norm case; the reported percentage never goes negative. An empty
// store returns an empty result, not an error.
func (r *BruteForce) Retrieve(ctx context.Context, queryVec []float32, topK int) ([]model.RetrievedChunk, error) {
	chunks, err := r.source.ListWithEmbeddings(ctx)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	scored := make([]model.RetrievedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		sim := cosineSimilarity(queryVec, chunk.Embedding)
		if sim < 0 {
			sim = 0
		}
		scored = append(scored, model.RetrievedChunk{
			Chunk:      chunk,
			Similarity: sim * 100,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if topK < len(scored) {
		scored = scored[:topK]
	}
	logutil.GetLogger(ctx).Debug("retrieval ranked",
		zap.Int("corpus", len(chunks)),
		zap.Int("returned", len(scored)),
	)
	return scored, nil
}

// cosineSimilarity is computed in float64 for stability. Mismatched
// lengths or a zero-norm side score 0 rather than erroring.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
