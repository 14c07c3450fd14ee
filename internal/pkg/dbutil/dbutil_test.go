package dbutil

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestFinalize_RebindsPlaceholders(t *testing.T) {
	query, args := Finalize("INSERT INTO documents (id, title) VALUES (?, ?)", []interface{}{"a", "b"})
	require.Equal(t, "INSERT INTO documents (id, title) VALUES ($1, $2)", query)
	require.Equal(t, []interface{}{"a", "b"}, args)
}

func TestIsConflict(t *testing.T) {
	require.True(t, IsConflict(&pq.Error{Code: "23505"}))
	require.False(t, IsConflict(&pq.Error{Code: "23503"}))
	require.False(t, IsConflict(nil))
}
