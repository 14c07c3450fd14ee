package composer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"studyrag/internal/ai"
	"studyrag/internal/model"
	appErr "studyrag/internal/pkg/errors"
)

type countingCompleter struct {
	calls      int
	text       string
	err        error
	lastPrompt string
	lastSystem string
}

func (c *countingCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResult, error) {
	c.calls++
	c.lastPrompt = req.Prompt
	c.lastSystem = req.System
	if c.err != nil {
		return nil, c.err
	}
	return &ai.CompletionResult{
		Text:  c.text,
		Usage: model.TokenUsage{PromptTokens: 10, CompletionTokens: 5},
	}, nil
}

func retrievedFixture() []model.RetrievedChunk {
	return []model.RetrievedChunk{
		{Chunk: model.Chunk{ID: "c1", Content: "The mitochondria is the powerhouse of the cell."}, Similarity: 91.234},
		{Chunk: model.Chunk{ID: "c2", Content: "ATP is produced during cellular respiration."}, Similarity: 85.5},
	}
}

func TestCompose_EmptyRetrievalReturnsFallbackWithoutCall(t *testing.T) {
	completer := &countingCompleter{text: "should not be used"}
	c := New(completer, Options{})

	answer, err := c.Compose(context.Background(), "what is ATP?", nil)
	require.NoError(t, err)
	require.Equal(t, FallbackAnswer, answer.Text)
	require.Empty(t, answer.Sources)
	require.Equal(t, 0, completer.calls)
}

func TestCompose_ProseAnswer(t *testing.T) {
	completer := &countingCompleter{text: "  ATP is the energy currency.  "}
	c := New(completer, Options{Temperature: 0.2, MaxOutputTokens: 512})

	answer, err := c.Compose(context.Background(), "what is ATP?", retrievedFixture())
	require.NoError(t, err)
	require.Equal(t, "ATP is the energy currency.", answer.Text)
	require.Len(t, answer.Sources, 2)
	require.Equal(t, 10, answer.Usage.PromptTokens)
	require.Equal(t, 1, completer.calls)

	require.Contains(t, completer.lastPrompt, "CONTEXT:")
	require.Contains(t, completer.lastPrompt, "[Source 1 | similarity 91.23%]")
	require.Contains(t, completer.lastPrompt, "QUESTION:\nwhat is ATP?")
	require.NotEmpty(t, completer.lastSystem)
}

func TestCompose_CompletionErrorWrapped(t *testing.T) {
	completer := &countingCompleter{err: errors.New("upstream 500")}
	c := New(completer, Options{})

	_, err := c.Compose(context.Background(), "what is ATP?", retrievedFixture())
	require.ErrorIs(t, err, appErr.ErrCompletion)
}

func TestCompose_StructuredExtractedFromFencedOutput(t *testing.T) {
	raw := "```json\n{\"type\": \"quiz\", \"data\": [{\"question\": \"What produces ATP?\", \"answer\": \"Cellular respiration\"}]}\n```"
	completer := &countingCompleter{text: raw}
	c := New(completer, Options{})

	answer, err := c.Compose(context.Background(), "quiz me on respiration", retrievedFixture())
	require.NoError(t, err)

	var payload struct {
		Type string `json:"type"`
		Data []struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(answer.Text), &payload))
	require.Equal(t, "quiz", payload.Type)
	require.Len(t, payload.Data, 1)
	require.Equal(t, "What produces ATP?", payload.Data[0].Question)
}

func TestCompose_MalformedStructuredDegradesToRawText(t *testing.T) {
	raw := "Here are your flashcards: question one, answer one."
	completer := &countingCompleter{text: raw}
	c := New(completer, Options{})

	answer, err := c.Compose(context.Background(), "make flashcards from this", retrievedFixture())
	require.NoError(t, err)
	require.Equal(t, raw, answer.Text)
}

func TestCompose_StructuredTypeMismatchDegrades(t *testing.T) {
	raw := `{"type": "quiz", "data": [{"question": "q", "answer": "a"}]}`
	completer := &countingCompleter{text: raw}
	c := New(completer, Options{})

	answer, err := c.Compose(context.Background(), "make flashcards from this", retrievedFixture())
	require.NoError(t, err)
	require.Equal(t, raw, answer.Text)
}

func TestExtractStructured_EmptyDataRejected(t *testing.T) {
	_, ok := extractStructured(`{"type": "quiz", "data": []}`, ModeQuiz)
	require.False(t, ok)
}

func TestExtractStructured_SurroundingProse(t *testing.T) {
	text := `Sure! {"type": "flashcards", "data": [{"question": "q", "answer": "a"}]} Hope that helps.`
	got, ok := extractStructured(text, ModeFlashcards)
	require.True(t, ok)
	require.JSONEq(t, `{"type": "flashcards", "data": [{"question": "q", "answer": "a"}]}`, got)
}
