package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/meghashyamc/askthat/db/docstore"
	"github.com/meghashyamc/askthat/logger"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRebuildIndexesSupportedFiles(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()

	writeTestFile(t, dir, "notes.txt", "meeting notes about the budget")
	writeTestFile(t, dir, "data.csv", "item,price\nwidget,10\n")
	writeTestFile(t, dir, "image.png", "not text")

	service := New(logger.New(), dir, nil)

	count, err := service.Rebuild(context.Background())
	assert.NoError(err)
	assert.Equal(2, count)

	documents, err := service.Get(context.Background())
	assert.NoError(err)
	assert.Len(documents, 2)

	byName := make(map[string]DocumentRecord)
	for _, doc := range documents {
		assert.Equal(len(doc.Content), doc.ContentLength)
		byName[doc.Filename] = doc
	}

	assert.Equal(FileTypeText, byName["notes.txt"].Filetype)
	assert.Contains(byName["notes.txt"].Content, "budget")
	assert.Equal(FileTypeTabular, byName["data.csv"].Filetype)
	assert.Contains(byName["data.csv"].Content, "widget 10")
}

func TestRebuildSkipsFilesThatFailExtraction(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()

	writeTestFile(t, dir, "good.txt", "readable content")
	// Not a real PDF; extraction fails and the file is skipped.
	writeTestFile(t, dir, "broken.pdf", "garbage bytes")

	service := New(logger.New(), dir, nil)

	count, err := service.Rebuild(context.Background())
	assert.NoError(err)
	assert.Equal(1, count)
}

func TestGetBuildsLazily(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	writeTestFile(t, dir, "notes.txt", "content")

	service := New(logger.New(), dir, nil)

	documents, err := service.Get(context.Background())
	assert.NoError(err)
	assert.Len(documents, 1)
}

func TestInvalidateForcesRebuild(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	writeTestFile(t, dir, "notes.txt", "content")

	service := New(logger.New(), dir, nil)

	_, err := service.Get(context.Background())
	assert.NoError(err)

	writeTestFile(t, dir, "more.txt", "more content")
	service.Invalidate()

	documents, err := service.Get(context.Background())
	assert.NoError(err)
	assert.Len(documents, 2)
}

func TestFingerprintChangesWhenSupportedFileAdded(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	writeTestFile(t, dir, "notes.txt", "content")

	service := New(logger.New(), dir, nil)

	before, err := service.Fingerprint(context.Background())
	assert.NoError(err)
	assert.NotEmpty(before)

	writeTestFile(t, dir, "added.txt", "new document")
	service.Invalidate()

	after, err := service.Fingerprint(context.Background())
	assert.NoError(err)
	assert.NotEqual(before, after)
}

func TestFingerprintIgnoresUnsupportedFiles(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	writeTestFile(t, dir, "notes.txt", "content")
	unsupported := writeTestFile(t, dir, "image.png", "binary")

	service := New(logger.New(), dir, nil)

	before, err := service.Fingerprint(context.Background())
	assert.NoError(err)

	// Touching an unsupported file must not change the corpus version.
	future := time.Now().Add(time.Hour)
	assert.NoError(os.Chtimes(unsupported, future, future))
	service.Invalidate()

	after, err := service.Fingerprint(context.Background())
	assert.NoError(err)
	assert.Equal(before, after)
}

func TestConcurrentGetDuringRebuild(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	writeTestFile(t, dir, "alpha.txt", "alpha content")
	writeTestFile(t, dir, "beta.txt", "beta content")

	store, err := docstore.New(logger.New(), filepath.Join(t.TempDir(), "docstore.db"))
	assert.NoError(err)
	defer store.Close()

	service := New(logger.New(), dir, store)
	_, err = service.Rebuild(context.Background())
	assert.NoError(err)

	violations := make(chan string, 16)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				documents, err := service.Get(context.Background())
				if err != nil {
					violations <- err.Error()
					return
				}
				// Readers must always see a complete corpus, never a
				// partially assembled one.
				if len(documents) != 2 {
					violations <- fmt.Sprintf("reader saw %d documents", len(documents))
					return
				}
			}
		}()
	}

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := service.Rebuild(context.Background()); err != nil {
					violations <- err.Error()
					return
				}
			}
		}()
	}

	wg.Wait()
	close(violations)
	for violation := range violations {
		t.Fatal(violation)
	}

	// Overlapping rebuilds must not interleave their writes to the durable
	// store either.
	payloads, err := store.GetAll()
	assert.NoError(err)
	assert.Len(payloads, 2)
	for filename, payload := range payloads {
		var doc DocumentRecord
		assert.NoError(json.Unmarshal([]byte(payload), &doc))
		assert.Equal(filename, doc.Filename)
	}
}

func TestRebuildFallsBackToDurableStore(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	writeTestFile(t, dir, "notes.txt", "persisted content")

	store, err := docstore.New(logger.New(), filepath.Join(t.TempDir(), "docstore.db"))
	assert.NoError(err)
	defer store.Close()

	service := New(logger.New(), dir, store)
	_, err = service.Rebuild(context.Background())
	assert.NoError(err)

	fingerprint, err := service.Fingerprint(context.Background())
	assert.NoError(err)

	// A fresh service pointed at a missing directory restores the previously
	// persisted corpus.
	restored := New(logger.New(), filepath.Join(dir, "does-not-exist"), store)
	count, err := restored.Rebuild(context.Background())
	assert.NoError(err)
	assert.Equal(1, count)

	documents, err := restored.Get(context.Background())
	assert.NoError(err)
	assert.Equal("notes.txt", documents[0].Filename)
	assert.Equal("persisted content", documents[0].Content)

	restoredFingerprint, err := restored.Fingerprint(context.Background())
	assert.NoError(err)
	assert.Equal(fingerprint, restoredFingerprint)
}
