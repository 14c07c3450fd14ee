package ai

import (
	"context"
	"fmt"
	"math"
	"strings"

	appErr "studyrag/internal/pkg/errors"
)

type unitEmbedder struct {
	provider IEmbedProvider
	model    string
	dim      int
	maxChars int
}

// NewEmbedder binds a provider to a model and enforces the embedding
// contract: blank input is rejected, over-long input is silently truncated
// to maxChars, output has exactly dim components and unit L2 norm.
func NewEmbedder(p IEmbedProvider, modelName string, dim int, maxChars int) IEmbedder {
	return &unitEmbedder{provider: p, model: modelName, dim: dim, maxChars: maxChars}
}

func (e *unitEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	prepared, err := e.prepare(text)
	if err != nil {
		return nil, err
	}
	vec, err := e.provider.Embed(ctx, e.model, prepared, taskType)
	if err != nil {
		return nil, err
	}
	return e.finish(vec)
}

func (e *unitEmbedder) EmbedMany(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	prepared := make([]string, 0, len(texts))
	for _, text := range texts {
		p, err := e.prepare(text)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, p)
	}
	if len(prepared) == 0 {
		return nil, nil
	}
	vecs, err := e.provider.EmbedBatch(ctx, e.model, prepared, taskType)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(prepared) {
		return nil, fmt.Errorf("embed batch returned %d vectors for %d inputs", len(vecs), len(prepared))
	}
	out := make([][]float32, 0, len(vecs))
	for _, vec := range vecs {
		normalized, err := e.finish(vec)
		if err != nil {
			return nil, err
		}
		out = append(out, normalized)
	}
	return out, nil
}

func (e *unitEmbedder) ModelName() string {
	return e.model
}

func (e *unitEmbedder) Dimension() int {
	return e.dim
}

func (e *unitEmbedder) prepare(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: cannot embed blank text", appErr.ErrEmptyInput)
	}
	if e.maxChars > 0 {
		runes := []rune(text)
		if len(runes) > e.maxChars {
			text = string(runes[:e.maxChars])
		}
	}
	return text, nil
}

func (e *unitEmbedder) finish(vec []float32) ([]float32, error) {
	if e.dim > 0 && len(vec) != e.dim {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), e.dim)
	}
	return Normalize(vec), nil
}

// Normalize scales vec to unit L2 norm so that cosine similarity reduces
// to a dot product. A zero vector is returned unchanged.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
