package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "studyrag/internal/pkg/errors"
)

func TestPreprocess_NormalizesNewlines(t *testing.T) {
	input := "  line one\r\nline two\n\n\n\nline three\n\n"
	got := Preprocess(input)
	require.Equal(t, "line one\nline two\n\nline three", got)
}

func TestPreprocess_Idempotent(t *testing.T) {
	input := "a\r\n\r\n\r\nb\n\n\n\n\nc  "
	once := Preprocess(input)
	require.Equal(t, once, Preprocess(once))
}

func TestSplit_WindowLayout(t *testing.T) {
	text := strings.Repeat("a", 2000)
	chunks, err := Split(text, 500, 50)
	require.NoError(t, err)
	require.Len(t, chunks, 5)

	require.Equal(t, 0, chunks[0].StartChar)
	require.Equal(t, 500, chunks[0].EndChar)
	require.Equal(t, 450, chunks[1].StartChar)
	require.Equal(t, 950, chunks[1].EndChar)
	require.Equal(t, 1800, chunks[4].StartChar)
	require.Equal(t, 2000, chunks[4].EndChar)

	for i, chunk := range chunks {
		require.Equal(t, i, chunk.Index)
		require.Equal(t, chunk.EndChar-chunk.StartChar, len([]rune(chunk.Content)))
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	chunks, err := Split("short text", 500, 50)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, "short text", chunks[0].Content)
	require.Equal(t, 0, chunks[0].Index)
}

func TestSplit_ExactMultipleNoEmptyTail(t *testing.T) {
	text := strings.Repeat("b", 500)
	chunks, err := Split(text, 500, 50)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
}

func TestSplit_CoversEveryCharacter(t *testing.T) {
	text := strings.Repeat("x", 1234)
	chunks, err := Split(text, 300, 40)
	require.NoError(t, err)

	covered := make([]bool, len(text))
	for _, chunk := range chunks {
		for i := chunk.StartChar; i < chunk.EndChar; i++ {
			covered[i] = true
		}
	}
	for i, ok := range covered {
		require.True(t, ok, "character %d not covered", i)
	}
}

func TestSplit_OverlapMatchesPreviousTail(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxyz"
	chunks, err := Split(text, 10, 3)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		tail := prev[len(prev)-3:]
		require.True(t, strings.HasPrefix(chunks[i].Content, tail))
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	chunks, err := Split("", 500, 50)
	require.NoError(t, err)
	require.Empty(t, chunks)

	chunks, err = Split("   \n\n  ", 500, 50)
	require.NoError(t, err)
	require.Empty(t, chunks)
}

func TestSplit_InvalidConfig(t *testing.T) {
	_, err := Split("text", 0, 0)
	require.True(t, errors.Is(err, appErr.ErrConfig))

	_, err = Split("text", 100, 100)
	require.True(t, errors.Is(err, appErr.ErrConfig))

	_, err = Split("text", 100, -1)
	require.True(t, errors.Is(err, appErr.ErrConfig))
}

func TestSplit_UnicodeBoundaries(t *testing.T) {
	text := strings.Repeat("界", 25)
	chunks, err := Split(text, 10, 2)
	require.NoError(t, err)
	for _, chunk := range chunks {
		for _, r := range chunk.Content {
			require.Equal(t, '界', r)
		}
	}
}
