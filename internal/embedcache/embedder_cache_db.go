package embedcache

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"studyrag/internal/ai"
	"studyrag/internal/model"
	"studyrag/internal/repo"
)

// WrapDBCacheToEmbedder persists embeddings in the embedding_cache table
// so they survive restarts. Cache write failures are logged, never fatal.
func WrapDBCacheToEmbedder(e ai.IEmbedder, cacheRepo *repo.EmbeddingCacheRepo) ai.IEmbedder {
	if e == nil || cacheRepo == nil {
		return e
	}
	return &dbEmbedder{next: e, repo: cacheRepo}
}

type dbEmbedder struct {
	next ai.IEmbedder
	repo *repo.EmbeddingCacheRepo
}

func (d *dbEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	_, contentHash, modelName := buildCacheKey(d.next.ModelName(), taskType, text)
	values, ok, err := d.repo.Get(ctx, modelName, taskType, contentHash)
	if err != nil {
		return nil, err
	}
	if ok {
		logutil.GetLogger(ctx).Debug("embedding cache hit (db)", zap.String("task_type", taskType))
		return values, nil
	}
	res, err := d.next.Embed(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	d.save(ctx, modelName, taskType, contentHash, res)
	return res, nil
}

func (d *dbEmbedder) EmbedMany(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		_, contentHash, modelName := buildCacheKey(d.next.ModelName(), taskType, text)
		values, ok, err := d.repo.Get(ctx, modelName, taskType, contentHash)
		if err != nil {
			return nil, err
		}
		if ok {
			out[i] = values
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}
	vecs, err := d.next.EmbedMany(ctx, missing, taskType)
	if err != nil {
		return nil, err
	}
	for j, vec := range vecs {
		i := missingIdx[j]
		out[i] = vec
		_, contentHash, modelName := buildCacheKey(d.next.ModelName(), taskType, texts[i])
		d.save(ctx, modelName, taskType, contentHash, vec)
	}
	return out, nil
}

func (d *dbEmbedder) save(ctx context.Context, modelName, taskType, contentHash string, values []float32) {
	err := d.repo.Save(ctx, &model.EmbeddingCache{
		ModelName:   modelName,
		TaskType:    taskType,
		ContentHash: contentHash,
		Embedding:   values,
		Ctime:       time.Now().Unix(),
	})
	if err != nil {
		logutil.GetLogger(ctx).Warn("failed to cache embedding", zap.Error(err))
	}
}

func (d *dbEmbedder) ModelName() string {
	return d.next.ModelName()
}

func (d *dbEmbedder) Dimension() int {
	return d.next.Dimension()
}
