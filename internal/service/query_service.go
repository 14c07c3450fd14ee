package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"studyrag/internal/ai"
	"studyrag/internal/composer"
	"studyrag/internal/model"
	appErr "studyrag/internal/pkg/errors"
	"studyrag/internal/retriever"
)

const (
	minTopK = 1
	maxTopK = 20
)

type QueryTimings struct {
	EmbeddingMs int64 `json:"embedding_ms"`
	SearchMs    int64 `json:"search_ms"`
	LlmMs       int64 `json:"llm_ms"`
}

type QueryResult struct {
	Answer      *model.Answer
	HasContext  bool
	TotalTimeMs int64
	Timings     QueryTimings
}

// QueryService runs the query pipeline: embed the question, rank stored
// chunks, compose a grounded answer. Validation happens before any
// model call so invalid input costs nothing.
type QueryService struct {
	embedder    ai.IEmbedder
	retriever   retriever.Retriever
	composer    *composer.Composer
	defaultTopK int
}

func NewQueryService(embedder ai.IEmbedder, r retriever.Retriever, c *composer.Composer, defaultTopK int) *QueryService {
	return &QueryService{
		embedder:    embedder,
		retriever:   r,
		composer:    c,
		defaultTopK: defaultTopK,
	}
}

// Answer responds to question. topK overrides the configured default when
// non-nil and must fall in [1, 20].
func (s *QueryService) Answer(ctx context.Context, question string, topK *int) (*QueryResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is required", appErr.ErrValidation)
	}
	k := s.defaultTopK
	if topK != nil {
		if *topK < minTopK || *topK > maxTopK {
			return nil, fmt.Errorf("%w: top_k must be in [%d, %d]", appErr.ErrValidation, minTopK, maxTopK)
		}
		k = *topK
	}

	total := time.Now()
	var timings QueryTimings

	start := time.Now()
	queryVec, err := s.embedder.Embed(ctx, question, ai.TaskQuery)
	timings.EmbeddingMs = time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	start = time.Now()
	retrieved, err := s.retriever.Retrieve(ctx, queryVec, k)
	timings.SearchMs = time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", appErr.ErrStorage, err)
	}

	start = time.Now()
	answer, err := s.composer.Compose(ctx, question, retrieved)
	timings.LlmMs = time.Since(start).Milliseconds()
	if err != nil {
		return nil, err
	}

	logutil.GetLogger(ctx).Info("query answered",
		zap.Int("top_k", k),
		zap.Int("sources", len(answer.Sources)),
		zap.Int64("embedding_ms", timings.EmbeddingMs),
		zap.Int64("search_ms", timings.SearchMs),
		zap.Int64("llm_ms", timings.LlmMs),
	)

	return &QueryResult{
		Answer:      answer,
		HasContext:  len(answer.Sources) > 0,
		TotalTimeMs: time.Since(total).Milliseconds(),
		Timings:     timings,
	}, nil
}
