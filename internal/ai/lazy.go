package ai

import (
	"context"

	"studyrag/internal/pkg/lazy"
)

// lazyEmbedProvider defers provider construction until the first call.
// Local backends pay a heavy model load on init; the lazy handle makes
// sure concurrent first callers share one load and later callers see the
// recorded outcome.
type lazyEmbedProvider struct {
	name   string
	handle *lazy.Handle[IEmbedProvider]
}

func NewLazyEmbedProvider(name string, factory func(ctx context.Context) (IEmbedProvider, error)) IEmbedProvider {
	return &lazyEmbedProvider{name: name, handle: lazy.New(factory)}
}

func (p *lazyEmbedProvider) Name() string {
	return p.name
}

func (p *lazyEmbedProvider) Embed(ctx context.Context, modelName string, text string, taskType string) ([]float32, error) {
	inner, err := p.handle.Get(ctx)
	if err != nil {
		return nil, err
	}
	return inner.Embed(ctx, modelName, text, taskType)
}

func (p *lazyEmbedProvider) EmbedBatch(ctx context.Context, modelName string, texts []string, taskType string) ([][]float32, error) {
	inner, err := p.handle.Get(ctx)
	if err != nil {
		return nil, err
	}
	return inner.EmbedBatch(ctx, modelName, texts, taskType)
}
