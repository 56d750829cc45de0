package answer

import (
	"context"
	"time"

	"github.com/meghashyamc/askthat/cache"
	"github.com/meghashyamc/askthat/config"
	"github.com/meghashyamc/askthat/llm"
	"github.com/meghashyamc/askthat/logger"
	"github.com/meghashyamc/askthat/services/index"
)

const emptyCorpusMessage = "There are no documents to search yet. Add documents and rebuild the index before asking questions."

// Service runs the select-then-answer pipeline over the document index,
// fronted by the response cache.
type Service struct {
	logger logger.Logger
	index  *index.Service
	llm    llm.Client
	cache  *cache.Cache

	model         string
	fallbackModel string
	selectTimeout time.Duration
	answerTimeout time.Duration
}

type Result struct {
	Answer            string         `json:"answer"`
	Sources           []cache.Source `json:"sources"`
	DocumentsSelected int            `json:"documents_selected"`
	Cached            bool           `json:"cached"`
}

type RebuildResult struct {
	Count         int    `json:"count"`
	CorpusVersion string `json:"corpus_version"`
}

type HealthSnapshot struct {
	DocumentCount int         `json:"document_count"`
	CacheStats    cache.Stats `json:"cache_stats"`
	CorpusVersion string      `json:"corpus_version"`
}

func New(logger logger.Logger, cfg *config.Config, indexService *index.Service, llmClient llm.Client, responseCache *cache.Cache) *Service {
	return &Service{
		logger:        logger,
		index:         indexService,
		llm:           llmClient,
		cache:         responseCache,
		model:         cfg.GetLLMModel(),
		fallbackModel: cfg.GetLLMFallbackModel(),
		selectTimeout: cfg.GetStageATimeout(),
		answerTimeout: cfg.GetStageBTimeout(),
	}
}

// Search answers a query from the indexed documents. An empty corpus
// short-circuits to a fixed message without touching the backend; a cache hit
// returns the prior answer for the same normalized query and corpus version.
func (s *Service) Search(ctx context.Context, query string) (Result, error) {
	documents, err := s.index.Get(ctx)
	if err != nil {
		return Result{}, err
	}

	if len(documents) == 0 {
		return Result{Answer: emptyCorpusMessage, Sources: []cache.Source{}}, nil
	}

	corpusVersion, err := s.index.Fingerprint(ctx)
	if err != nil {
		return Result{}, err
	}

	if entry, ok := s.cache.Get(query, corpusVersion); ok {
		s.logger.Info("serving answer from cache", "corpus_version", corpusVersion)
		return Result{
			Answer:            entry.Answer,
			Sources:           entry.Sources,
			DocumentsSelected: entry.DocumentsSelected,
			Cached:            true,
		}, nil
	}

	selected := s.selectDocuments(ctx, query, documents)

	result, err := s.generateAnswer(ctx, query, selected)
	if err != nil {
		return Result{}, err
	}

	s.cache.Set(query, corpusVersion, cache.Entry{
		Answer:            result.Answer,
		Sources:           result.Sources,
		DocumentsSelected: result.DocumentsSelected,
	})

	return result, nil
}

// RebuildIndex re-ingests the corpus and clears the response cache, since
// cached answers may reference documents that no longer exist.
func (s *Service) RebuildIndex(ctx context.Context) (RebuildResult, error) {
	s.index.Invalidate()

	count, err := s.index.Rebuild(ctx)
	if err != nil {
		return RebuildResult{}, err
	}

	corpusVersion, err := s.index.Fingerprint(ctx)
	if err != nil {
		return RebuildResult{}, err
	}

	s.cache.Clear()

	return RebuildResult{Count: count, CorpusVersion: corpusVersion}, nil
}

func (s *Service) Health(ctx context.Context) HealthSnapshot {
	snapshot := HealthSnapshot{CacheStats: s.cache.Stats()}

	documents, err := s.index.Get(ctx)
	if err != nil {
		s.logger.Error("health snapshot could not read index", "err", err.Error())
		return snapshot
	}
	snapshot.DocumentCount = len(documents)

	if corpusVersion, err := s.index.Fingerprint(ctx); err == nil {
		snapshot.CorpusVersion = corpusVersion
	}

	return snapshot
}
