package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHelpers_MatchWrappedSentinels(t *testing.T) {
	require.True(t, IsValidation(fmt.Errorf("%w: question is required", ErrValidation)))
	require.False(t, IsValidation(ErrStorage))

	require.True(t, IsNotFound(fmt.Errorf("document: %w", ErrNotFound)))
	require.False(t, IsNotFound(ErrConflict))
}
