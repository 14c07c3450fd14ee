package model

import "math"

// RetrievedChunk pairs a chunk with its similarity to a query vector.
// Similarity is kept unrounded for ranking; SimilarityPercent is the
// 2-decimal form used in responses.
type RetrievedChunk struct {
	Chunk
	Similarity float64
}

func (r RetrievedChunk) SimilarityPercent() float64 {
	return math.Round(r.Similarity*100) / 100
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type Answer struct {
	Text    string
	Sources []RetrievedChunk
	Usage   TokenUsage
}
