package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"studyrag/internal/model"
)

var ErrUnavailable = errors.New("ai provider unavailable")

// Task types passed to embedding backends that distinguish between
// indexing and querying.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

type CompletionRequest struct {
	System          string
	Prompt          string
	Temperature     float32
	MaxOutputTokens int
}

type CompletionResult struct {
	Text  string
	Usage model.TokenUsage
}

// IEmbedProvider is a raw embedding backend. Vectors come back as the
// backend produced them; normalization happens in the IEmbedder wrapper.
type IEmbedProvider interface {
	Name() string
	Embed(ctx context.Context, modelName string, text string, taskType string) ([]float32, error)
	EmbedBatch(ctx context.Context, modelName string, texts []string, taskType string) ([][]float32, error)
}

// ICompleteProvider is a raw text-completion backend.
type ICompleteProvider interface {
	Name() string
	Complete(ctx context.Context, modelName string, req CompletionRequest) (*CompletionResult, error)
}

// IEmbedder is the embedding capability used by the pipelines: bound to a
// model, unit-normalized output, fixed dimension.
type IEmbedder interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
	EmbedMany(ctx context.Context, texts []string, taskType string) ([][]float32, error)
	ModelName() string
	Dimension() int
}

// ICompleter is the completion capability used by the answer composer.
type ICompleter interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

type completer struct {
	provider ICompleteProvider
	model    string
}

func NewCompleter(p ICompleteProvider, modelName string) ICompleter {
	return &completer{provider: p, model: modelName}
}

func (c *completer) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	return c.provider.Complete(ctx, c.model, req)
}

type EmbedFactory func(args interface{}) (IEmbedProvider, error)

type CompleteFactory func(args interface{}) (ICompleteProvider, error)

var (
	embedRegistry    = map[string]EmbedFactory{}
	completeRegistry = map[string]CompleteFactory{}
)

func RegisterEmbed(name string, factory EmbedFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	embedRegistry[key] = factory
}

func Register(name string, factory CompleteFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	completeRegistry[key] = factory
}

func NewEmbedProvider(name string, args interface{}) (IEmbedProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.embed_provider is required")
	}
	factory := embedRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported embed provider: %s", name)
	}
	return factory(args)
}

func NewCompleteProvider(name string, args interface{}) (ICompleteProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := completeRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
