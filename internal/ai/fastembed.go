package ai

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	fastembed "github.com/anush008/fastembed-go"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type fastembedConfig struct {
	Model     string `json:"model"`
	CacheDir  string `json:"cache_dir"`
	MaxLength int    `json:"max_length"`
}

var fastembedModels = map[string]fastembed.EmbeddingModel{
	"BAAI/bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"BAAI/bge-base-en-v1.5":                  fastembed.BGEBaseENV15,
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
}

// fastembedProvider runs a local ONNX sentence-transformer. Constructed
// through NewLazyEmbedProvider, so the model download/load happens once, on
// the first embedding request.
type fastembedProvider struct {
	model     *fastembed.FlagEmbedding
	modelName string
}

func (p *fastembedProvider) Name() string {
	return "fastembed"
}

func (p *fastembedProvider) Embed(ctx context.Context, modelName string, text string, taskType string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if taskType == TaskQuery {
		return p.model.QueryEmbed(text)
	}
	vecs, err := p.model.PassageEmbed([]string{text}, 1)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *fastembedProvider) EmbedBatch(ctx context.Context, modelName string, texts []string, taskType string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if taskType == TaskQuery {
		out := make([][]float32, 0, len(texts))
		for _, text := range texts {
			vec, err := p.model.QueryEmbed(text)
			if err != nil {
				return nil, err
			}
			out = append(out, vec)
		}
		return out, nil
	}
	return p.model.PassageEmbed(texts, 32)
}

func createFastembedFactory(args interface{}) (IEmbedProvider, error) {
	cfg := &fastembedConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = "BAAI/bge-small-en-v1.5"
	}
	embedModel, ok := fastembedModels[modelName]
	if !ok {
		return nil, fmt.Errorf("unsupported fastembed model: %s", modelName)
	}
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(".", "model_cache")
	}
	maxLength := cfg.MaxLength
	if maxLength == 0 {
		maxLength = 512
	}

	return NewLazyEmbedProvider("fastembed", func(ctx context.Context) (IEmbedProvider, error) {
		logutil.GetLogger(ctx).Info("loading local embedding model",
			zap.String("model", modelName),
			zap.String("cache_dir", cacheDir),
		)
		showProgress := false
		flagEmbed, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
			Model:                embedModel,
			CacheDir:             cacheDir,
			MaxLength:            maxLength,
			ShowDownloadProgress: &showProgress,
		})
		if err != nil {
			return nil, fmt.Errorf("init fastembed: %w", err)
		}
		return &fastembedProvider{model: flagEmbed, modelName: modelName}, nil
	}), nil
}

func init() {
	RegisterEmbed("fastembed", createFastembedFactory)
}
