package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"studyrag/internal/model"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

type openAIConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

type openAIProvider struct {
	apiKey  string
	baseURL string
}

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIChatMsg `json:"messages"`
	Temperature float32         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Stream      bool            `json:"stream"`
}

type openAIChatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage openAIUsage `json:"usage"`
}

type openAIEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *openAIProvider) Name() string {
	return "openai"
}

func (p *openAIProvider) Complete(ctx context.Context, modelName string, req CompletionRequest) (*CompletionResult, error) {
	if p.apiKey == "" {
		return nil, ErrUnavailable
	}
	messages := make([]openAIChatMsg, 0, 2)
	if req.System != "" {
		messages = append(messages, openAIChatMsg{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIChatMsg{Role: "user", Content: req.Prompt})
	reqBody := openAIChatRequest{
		Model:       modelName,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxOutputTokens,
		Stream:      false,
	}
	var out openAIChatResponse
	if err := p.post(ctx, "/chat/completions", reqBody, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("openai response has no choices")
	}
	return &CompletionResult{
		Text: strings.TrimSpace(out.Choices[0].Message.Content),
		Usage: model.TokenUsage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
		},
	}, nil
}

func (p *openAIProvider) post(ctx context.Context, path string, payload interface{}, dst interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	endpoint := strings.TrimRight(p.baseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("openai request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

type openAIEmbedProvider struct {
	openAIProvider
}

func (p *openAIEmbedProvider) Embed(ctx context.Context, modelName string, text string, taskType string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, modelName, []string{text}, taskType)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *openAIEmbedProvider) EmbedBatch(ctx context.Context, modelName string, texts []string, taskType string) ([][]float32, error) {
	if p.apiKey == "" {
		return nil, ErrUnavailable
	}
	_ = taskType // openai embeddings carry no task hint
	var out openAIEmbedResponse
	if err := p.post(ctx, "/embeddings", openAIEmbedRequest{Model: modelName, Input: texts}, &out); err != nil {
		return nil, err
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(out.Data), len(texts))
	}
	vecs := make([][]float32, 0, len(out.Data))
	for _, item := range out.Data {
		vecs = append(vecs, item.Embedding)
	}
	return vecs, nil
}

func parseOpenAIConfig(args interface{}) (openAIProvider, error) {
	cfg := &openAIConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return openAIProvider{}, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return openAIProvider{apiKey: strings.TrimSpace(cfg.APIKey), baseURL: baseURL}, nil
}

func createOpenAIFactory(args interface{}) (ICompleteProvider, error) {
	provider, err := parseOpenAIConfig(args)
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

func createOpenAIEmbedFactory(args interface{}) (IEmbedProvider, error) {
	provider, err := parseOpenAIConfig(args)
	if err != nil {
		return nil, err
	}
	return &openAIEmbedProvider{openAIProvider: provider}, nil
}

func init() {
	Register("openai", createOpenAIFactory)
	RegisterEmbed("openai", createOpenAIEmbedFactory)
}
