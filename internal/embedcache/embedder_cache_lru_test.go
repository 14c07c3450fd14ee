package embedcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"studyrag/internal/ai"
)

type countingEmbedder struct {
	embedCalls int
	manyCalls  int
	dim        int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	c.embedCalls++
	vec := make([]float32, c.dim)
	vec[0] = 1
	return vec, nil
}

func (c *countingEmbedder) EmbedMany(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	c.manyCalls++
	out := make([][]float32, 0, len(texts))
	for range texts {
		vec := make([]float32, c.dim)
		vec[0] = 1
		out = append(out, vec)
	}
	return out, nil
}

func (c *countingEmbedder) ModelName() string { return "test-model" }
func (c *countingEmbedder) Dimension() int    { return c.dim }

func TestLruEmbedder_SecondCallHitsCache(t *testing.T) {
	backend := &countingEmbedder{dim: 4}
	e := WrapLruCacheToEmbedder(backend, 16, time.Minute)

	first, err := e.Embed(context.Background(), "hello", ai.TaskQuery)
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), "hello", ai.TaskQuery)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, backend.embedCalls)
}

func TestLruEmbedder_TaskTypeIsPartOfKey(t *testing.T) {
	backend := &countingEmbedder{dim: 4}
	e := WrapLruCacheToEmbedder(backend, 16, time.Minute)

	_, err := e.Embed(context.Background(), "hello", ai.TaskQuery)
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), "hello", ai.TaskDocument)
	require.NoError(t, err)
	require.Equal(t, 2, backend.embedCalls)
}

func TestLruEmbedder_EmbedManyOnlyFetchesMisses(t *testing.T) {
	backend := &countingEmbedder{dim: 4}
	e := WrapLruCacheToEmbedder(backend, 16, time.Minute)

	_, err := e.Embed(context.Background(), "a", ai.TaskDocument)
	require.NoError(t, err)

	vecs, err := e.EmbedMany(context.Background(), []string{"a", "b"}, ai.TaskDocument)
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	// "a" came from cache; only "b" went to the backend batch.
	require.Equal(t, 1, backend.manyCalls)
	require.Equal(t, 1, backend.embedCalls)
}

func TestLruEmbedder_CachedVectorIsIsolated(t *testing.T) {
	backend := &countingEmbedder{dim: 4}
	e := WrapLruCacheToEmbedder(backend, 16, time.Minute)

	first, err := e.Embed(context.Background(), "hello", ai.TaskQuery)
	require.NoError(t, err)
	first[0] = 99

	second, err := e.Embed(context.Background(), "hello", ai.TaskQuery)
	require.NoError(t, err)
	require.Equal(t, float32(1), second[0])
}

func TestWrapLruCacheToEmbedder_DisabledPassthrough(t *testing.T) {
	backend := &countingEmbedder{dim: 4}
	require.Equal(t, ai.IEmbedder(backend), WrapLruCacheToEmbedder(backend, 0, time.Minute))
	require.Equal(t, ai.IEmbedder(backend), WrapLruCacheToEmbedder(backend, 16, 0))
}
