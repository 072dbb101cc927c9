package textstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("doc-1", "clause 1. clause 2."))
	text, err := store.Load("doc-1")
	require.NoError(t, err)
	require.Equal(t, "clause 1. clause 2.", text)
}

func TestLoadMissingReturnsErrNotFound(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveOverwrites(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("doc-1", "v1"))
	require.NoError(t, store.Save("doc-1", "v2"))
	text, err := store.Load("doc-1")
	require.NoError(t, err)
	require.Equal(t, "v2", text)
}
