package index

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/meghashyamc/askthat/db/docstore"
	"github.com/meghashyamc/askthat/logger"
)

const fingerprintMetaKey = "corpus_fingerprint"

// Service holds the in-memory document index. Readers always see a complete
// corpus: a rebuild assembles the full replacement set before swapping it in.
type Service struct {
	logger   logger.Logger
	docsPath string
	store    docstore.Store

	mu          sync.RWMutex
	documents   []DocumentRecord
	fingerprint string

	// Serializes writes to the durable store so overlapping rebuilds cannot
	// interleave their Clear/Put sequences.
	persistMu sync.Mutex
}

// New creates an index service over the given documents directory. store may
// be nil, in which case extracted documents are not persisted.
func New(logger logger.Logger, docsPath string, store docstore.Store) *Service {
	return &Service{
		logger:   logger,
		docsPath: docsPath,
		store:    store,
	}
}

// Rebuild discovers all supported files, extracts each and replaces the index
// wholesale. A file that fails extraction is logged and skipped; one bad file
// never aborts ingestion. Returns the number of documents indexed.
func (s *Service) Rebuild(ctx context.Context) (int, error) {
	files, err := discoverSupportedFiles(s.docsPath)
	if err != nil {
		// The filesystem is canonical; the store is read only when the
		// directory is gone, so stale persisted documents can never shadow a
		// live corpus.
		s.logger.Warn("could not list documents directory, falling back to durable store", "path", s.docsPath, "err", err.Error())
		return s.loadFromStore()
	}

	documents := make([]DocumentRecord, 0, len(files))
	for _, file := range files {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}

		content, filetype, err := extractContent(file.Path)
		if err != nil {
			s.logger.Error("skipping file, extraction failed", "path", file.Path, "err", err.Error())
			continue
		}

		documents = append(documents, DocumentRecord{
			ID:            len(documents) + 1,
			Filename:      file.Name,
			Filetype:      filetype,
			Content:       content,
			ContentLength: len(content),
		})
	}

	fingerprint := computeFingerprint(files)

	s.mu.Lock()
	s.documents = documents
	s.fingerprint = fingerprint
	s.mu.Unlock()

	s.persist(documents, fingerprint)

	s.logger.Info("index rebuilt", "documents", len(documents), "corpus_version", fingerprint)

	return len(documents), nil
}

// Get returns the current document set, building it first if the index is
// empty. The returned slice must be treated as read-only.
func (s *Service) Get(ctx context.Context) ([]DocumentRecord, error) {
	s.mu.RLock()
	documents := s.documents
	s.mu.RUnlock()

	if documents != nil {
		return documents, nil
	}

	if _, err := s.Rebuild(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents, nil
}

// Fingerprint returns the corpus version token, building the index first if
// needed.
func (s *Service) Fingerprint(ctx context.Context) (string, error) {
	if _, err := s.Get(ctx); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingerprint, nil
}

// Invalidate clears the in-memory index and the cached fingerprint, forcing
// the next Get to rebuild.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.documents = nil
	s.fingerprint = ""
	s.mu.Unlock()
}

func (s *Service) persist(documents []DocumentRecord, fingerprint string) {
	if s.store == nil {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.logger.Error("failed to clear durable document store", "err", err.Error())
		return
	}

	for _, doc := range documents {
		payload, err := json.Marshal(doc)
		if err != nil {
			s.logger.Error("failed to marshal document for durable store", "filename", doc.Filename, "err", err.Error())
			continue
		}
		if err := s.store.Put(doc.Filename, string(payload)); err != nil {
			s.logger.Error("failed to persist document", "filename", doc.Filename, "err", err.Error())
		}
	}

	if err := s.store.SetMeta(fingerprintMetaKey, fingerprint); err != nil {
		s.logger.Error("failed to persist corpus fingerprint", "err", err.Error())
	}
}

// loadFromStore restores the last persisted corpus. Used when the documents
// directory cannot be listed, so previously ingested documents stay queryable.
func (s *Service) loadFromStore() (int, error) {
	if s.store == nil {
		return 0, nil
	}

	payloads, err := s.store.GetAll()
	if err != nil {
		s.logger.Error("failed to read durable document store", "err", err.Error())
		return 0, nil
	}

	filenames := make([]string, 0, len(payloads))
	for filename := range payloads {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)

	documents := make([]DocumentRecord, 0, len(payloads))
	for _, filename := range filenames {
		var doc DocumentRecord
		if err := json.Unmarshal([]byte(payloads[filename]), &doc); err != nil {
			s.logger.Error("failed to unmarshal stored document", "filename", filename, "err", err.Error())
			continue
		}
		documents = append(documents, doc)
	}

	fingerprint, err := s.store.GetMeta(fingerprintMetaKey)
	if err != nil {
		s.logger.Warn("no stored corpus fingerprint", "err", err.Error())
	}

	s.mu.Lock()
	s.documents = documents
	s.fingerprint = fingerprint
	s.mu.Unlock()

	s.logger.Info("index restored from durable store", "documents", len(documents))

	return len(documents), nil
}
