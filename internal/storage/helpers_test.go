package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestStore creates a store in a temp directory with the table
// layout applied. Cleanup happens automatically via t.Cleanup.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, EnsureLayout(context.Background(), s.DB()))
	return s
}
