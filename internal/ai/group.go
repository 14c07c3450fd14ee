package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type CompleterEntry struct {
	Name      string
	Completer ICompleter
}

type EmbedderEntry struct {
	Name     string
	Embedder IEmbedder
}

// groupCompleter tries each completer in order until one succeeds.
type groupCompleter struct {
	items []CompleterEntry
}

func NewGroupCompleter(items []CompleterEntry) ICompleter {
	if len(items) == 0 {
		return nil
	}
	return &groupCompleter{items: items}
}

func (g *groupCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	var lastErr error
	for i, item := range g.items {
		if item.Completer == nil {
			continue
		}
		res, err := item.Completer.Complete(ctx, req)
		if err == nil {
			return res, nil
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("completer failed", zap.Int("index", i), zap.String("name", item.Name), zap.Error(err))
	}
	if lastErr == nil {
		return nil, fmt.Errorf("completer not configured")
	}
	return nil, lastErr
}

type groupEmbedder struct {
	items []EmbedderEntry
}

func NewGroupEmbedder(items []EmbedderEntry) IEmbedder {
	if len(items) == 0 {
		return nil
	}
	return &groupEmbedder{items: items}
}

func (g *groupEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	var lastErr error
	for i, item := range g.items {
		if item.Embedder == nil {
			continue
		}
		res, err := item.Embedder.Embed(ctx, text, taskType)
		if err == nil {
			return res, nil
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("embedder failed", zap.Int("index", i), zap.String("name", item.Name), zap.Error(err))
	}
	if lastErr == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	return nil, lastErr
}

func (g *groupEmbedder) EmbedMany(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	var lastErr error
	for i, item := range g.items {
		if item.Embedder == nil {
			continue
		}
		res, err := item.Embedder.EmbedMany(ctx, texts, taskType)
		if err == nil {
			return res, nil
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("embedder failed", zap.Int("index", i), zap.String("name", item.Name), zap.Error(err))
	}
	if lastErr == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	return nil, lastErr
}

func (g *groupEmbedder) ModelName() string {
	names := make([]string, 0, len(g.items))
	for _, item := range g.items {
		if item.Name == "" {
			continue
		}
		names = append(names, item.Name)
	}
	return strings.Join(names, "|")
}

func (g *groupEmbedder) Dimension() int {
	for _, item := range g.items {
		if item.Embedder != nil {
			return item.Embedder.Dimension()
		}
	}
	return 0
}
