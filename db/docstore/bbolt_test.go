package docstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/meghashyamc/askthat/logger"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BoltStore {
	store, err := New(logger.New(), filepath.Join(t.TempDir(), "docstore.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutAndGetAll(t *testing.T) {
	assert := require.New(t)
	store := newTestStore(t)

	assert.NoError(store.Put("budget.txt", `{"filename":"budget.txt"}`))
	assert.NoError(store.Put("notes.md", `{"filename":"notes.md"}`))

	payloads, err := store.GetAll()
	assert.NoError(err)
	assert.Len(payloads, 2)
	assert.Equal(`{"filename":"budget.txt"}`, payloads["budget.txt"])
}

func TestPutEmptyFilenameRejected(t *testing.T) {
	assert := require.New(t)
	store := newTestStore(t)

	err := store.Put("", "payload")
	assert.Error(err)
	assert.True(errors.Is(err, ErrInvalidKey))
}

func TestClearRemovesAllDocuments(t *testing.T) {
	assert := require.New(t)
	store := newTestStore(t)

	assert.NoError(store.Put("budget.txt", "payload"))
	assert.NoError(store.Clear())

	payloads, err := store.GetAll()
	assert.NoError(err)
	assert.Empty(payloads)
}

func TestMetaRoundTrip(t *testing.T) {
	assert := require.New(t)
	store := newTestStore(t)

	assert.NoError(store.SetMeta("corpus_fingerprint", "abc123"))

	value, err := store.GetMeta("corpus_fingerprint")
	assert.NoError(err)
	assert.Equal("abc123", value)

	_, err = store.GetMeta("missing")
	assert.True(errors.Is(err, ErrNotFound))
}
