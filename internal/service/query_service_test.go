package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"studyrag/internal/ai"
	"studyrag/internal/composer"
	"studyrag/internal/extract"
	"studyrag/internal/model"
	appErr "studyrag/internal/pkg/errors"
	"studyrag/internal/retriever"
)

type recordingChunkSource struct {
	chunks []model.Chunk
	err    error
}

func (s *recordingChunkSource) ListWithEmbeddings(ctx context.Context) ([]model.Chunk, error) {
	return s.chunks, s.err
}

type recordingCompleter struct {
	calls int
	text  string
	err   error
}

func (r *recordingCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResult, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &ai.CompletionResult{Text: r.text, Usage: model.TokenUsage{PromptTokens: 3, CompletionTokens: 2}}, nil
}

func newQueryFixture(source *recordingChunkSource, completer *recordingCompleter, embedder *fakeEmbedder) *QueryService {
	c := composer.New(completer, composer.Options{})
	return NewQueryService(embedder, retriever.NewBruteForce(source), c, 5)
}

func intPtr(v int) *int { return &v }

func TestAnswer_ReturnsGroundedAnswer(t *testing.T) {
	source := &recordingChunkSource{chunks: []model.Chunk{
		{ID: "c1", Content: "chunk one", Embedding: ai.Normalize([]float32{1, 0, 0, 0})},
		{ID: "c2", Content: "chunk two", Embedding: ai.Normalize([]float32{0, 1, 0, 0})},
	}}
	completer := &recordingCompleter{text: "grounded answer"}
	svc := newQueryFixture(source, completer, &fakeEmbedder{})

	res, err := svc.Answer(context.Background(), "what is in chunk one?", nil)
	require.NoError(t, err)
	require.Equal(t, "grounded answer", res.Answer.Text)
	require.True(t, res.HasContext)
	require.Len(t, res.Answer.Sources, 2)
	require.Equal(t, 1, completer.calls)
	require.Equal(t, 3, res.Answer.Usage.PromptTokens)
}

func TestAnswer_BlankQuestionRejectedBeforeEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc := newQueryFixture(&recordingChunkSource{}, &recordingCompleter{}, embedder)

	_, err := svc.Answer(context.Background(), "   ", nil)
	require.ErrorIs(t, err, appErr.ErrValidation)
	require.Zero(t, embedder.embedCalls)
}

func TestAnswer_TopKBoundsRejectedBeforeEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc := newQueryFixture(&recordingChunkSource{}, &recordingCompleter{}, embedder)

	_, err := svc.Answer(context.Background(), "question", intPtr(0))
	require.ErrorIs(t, err, appErr.ErrValidation)

	_, err = svc.Answer(context.Background(), "question", intPtr(21))
	require.ErrorIs(t, err, appErr.ErrValidation)

	require.Zero(t, embedder.embedCalls)
}

func TestAnswer_TopKOverrideLimitsSources(t *testing.T) {
	source := &recordingChunkSource{chunks: []model.Chunk{
		{ID: "c1", Content: "a", Embedding: ai.Normalize([]float32{1, 0, 0, 0})},
		{ID: "c2", Content: "b", Embedding: ai.Normalize([]float32{0.9, 0.1, 0, 0})},
		{ID: "c3", Content: "c", Embedding: ai.Normalize([]float32{0.5, 0.5, 0, 0})},
	}}
	completer := &recordingCompleter{text: "answer"}
	svc := newQueryFixture(source, completer, &fakeEmbedder{})

	res, err := svc.Answer(context.Background(), "question", intPtr(1))
	require.NoError(t, err)
	require.Len(t, res.Answer.Sources, 1)
}

func TestAnswer_EmptyCorpusFallsBackWithoutCompletion(t *testing.T) {
	completer := &recordingCompleter{text: "should not run"}
	svc := newQueryFixture(&recordingChunkSource{}, completer, &fakeEmbedder{})

	res, err := svc.Answer(context.Background(), "anything?", nil)
	require.NoError(t, err)
	require.Equal(t, composer.FallbackAnswer, res.Answer.Text)
	require.False(t, res.HasContext)
	require.Zero(t, completer.calls)
}

func TestAnswer_RetrievalErrorIsStorage(t *testing.T) {
	source := &recordingChunkSource{err: errors.New("db gone")}
	svc := newQueryFixture(source, &recordingCompleter{}, &fakeEmbedder{})

	_, err := svc.Answer(context.Background(), "question", nil)
	require.ErrorIs(t, err, appErr.ErrStorage)
}

// letterBagEmbedder embeds text as its normalized letter histogram over
// 'a'..'e', so chunks dominated by different letters get near-orthogonal
// vectors and a chunk's own text embeds closest to itself.
type letterBagEmbedder struct{}

func (letterBagEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	vec := make([]float32, 5)
	for _, r := range text {
		if r >= 'a' && r <= 'e' {
			vec[r-'a']++
		}
	}
	return ai.Normalize(vec), nil
}

func (e letterBagEmbedder) EmbedMany(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := e.Embed(ctx, text, taskType)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (letterBagEmbedder) ModelName() string { return "letter-bag" }
func (letterBagEmbedder) Dimension() int    { return 5 }

func TestIngestThenQuery_SubstringRanksItsChunkFirst(t *testing.T) {
	// 2000 chars in five 450-char letter bands: chunk windows of 500/50
	// land at 0, 450, 900, 1350, 1800, so chunk index 2 covers [900,1400)
	// and is dominated by 'c'.
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		sb.WriteRune(rune('a' + i/450))
	}
	text := sb.String()

	chunks := &fakeChunkStore{failAfter: -1}
	docs := &fakeDocumentStore{}
	registry := extract.NewRegistry(extract.NewPlainExtractor())
	embedder := letterBagEmbedder{}
	ingest := NewIngestService(registry, embedder, docs, chunks, nil, 500, 50)

	res, err := ingest.Ingest(context.Background(), "bands.txt", []byte(text))
	require.NoError(t, err)
	require.Equal(t, 5, res.ChunkCount)

	completer := &recordingCompleter{text: "grounded answer"}
	query := NewQueryService(embedder, retriever.NewBruteForce(chunks), composer.New(completer, composer.Options{}), 5)

	// A verbatim slice from the middle of chunk index 2.
	substring := text[1000:1100]
	got, err := query.Answer(context.Background(), substring, nil)
	require.NoError(t, err)
	require.True(t, got.HasContext)
	require.Equal(t, 2, got.Answer.Sources[0].ChunkIndex)

	// The chunk's own full text is (near) perfectly similar to itself.
	whole := chunks.stored[2].Content
	got, err = query.Answer(context.Background(), whole, nil)
	require.NoError(t, err)
	require.Equal(t, 2, got.Answer.Sources[0].ChunkIndex)
	require.GreaterOrEqual(t, got.Answer.Sources[0].SimilarityPercent(), 99.9)
}

func TestAnswer_CompletionErrorPropagates(t *testing.T) {
	source := &recordingChunkSource{chunks: []model.Chunk{
		{ID: "c1", Content: "a", Embedding: ai.Normalize([]float32{1, 0, 0, 0})},
	}}
	completer := &recordingCompleter{err: errors.New("llm down")}
	svc := newQueryFixture(source, completer, &fakeEmbedder{})

	_, err := svc.Answer(context.Background(), "question", nil)
	require.ErrorIs(t, err, appErr.ErrCompletion)
}
