package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	text string
	err  error
}

func (s *stubCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &CompletionResult{Text: s.text}, nil
}

func TestGroupCompleter_FallsBackInOrder(t *testing.T) {
	g := NewGroupCompleter([]CompleterEntry{
		{Name: "primary", Completer: &stubCompleter{err: errors.New("down")}},
		{Name: "backup", Completer: &stubCompleter{text: "from backup"}},
	})
	res, err := g.Complete(context.Background(), CompletionRequest{Prompt: "q"})
	require.NoError(t, err)
	require.Equal(t, "from backup", res.Text)
}

func TestGroupCompleter_AllFailReturnsLastError(t *testing.T) {
	last := errors.New("also down")
	g := NewGroupCompleter([]CompleterEntry{
		{Name: "a", Completer: &stubCompleter{err: errors.New("down")}},
		{Name: "b", Completer: &stubCompleter{err: last}},
	})
	_, err := g.Complete(context.Background(), CompletionRequest{Prompt: "q"})
	require.ErrorIs(t, err, last)
}

func TestGroupEmbedder_UsesFirstHealthy(t *testing.T) {
	provider := &fakeEmbedProvider{dim: 2}
	healthy := NewEmbedder(provider, "m", 2, 100)
	g := NewGroupEmbedder([]EmbedderEntry{
		{Name: "m", Embedder: healthy},
	})
	vec, err := g.Embed(context.Background(), "text", TaskQuery)
	require.NoError(t, err)
	require.Len(t, vec, 2)
	require.Equal(t, "m", g.ModelName())
	require.Equal(t, 2, g.Dimension())
}

func TestNewGroupCompleter_EmptyIsNil(t *testing.T) {
	require.Nil(t, NewGroupCompleter(nil))
	require.Nil(t, NewGroupEmbedder(nil))
}
