package filestore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"studyrag/internal/config"
)

func newLocalForTest(t *testing.T) Store {
	t.Helper()
	store, err := New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)
	return store
}

func TestLocalStore_SaveOpenRoundtrip(t *testing.T) {
	store := newLocalForTest(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "doc-1.pdf", []byte("pdf bytes")))

	reader, err := store.Open(ctx, "doc-1.pdf")
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, []byte("pdf bytes"), data)
}

func TestLocalStore_RejectsTraversalKeys(t *testing.T) {
	store := newLocalForTest(t)
	ctx := context.Background()

	require.Error(t, store.Save(ctx, "../escape.txt", []byte("x")))
	require.Error(t, store.Save(ctx, "", []byte("x")))
	_, err := store.Open(ctx, "../../etc/passwd")
	require.Error(t, err)
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp"})
	require.Error(t, err)
}
