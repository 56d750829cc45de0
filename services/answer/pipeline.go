package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/meghashyamc/askthat/cache"
	"github.com/meghashyamc/askthat/llm"
	"github.com/meghashyamc/askthat/services/index"
	"github.com/meghashyamc/askthat/services/relevance"
)

const (
	topNDocuments      = 5
	previewExcerptSize = 200
	previewCharBudget  = 8000
	answerCharBudget   = 24000
	retryMaxDocs       = 3
	retryCharBudget    = 8000
	selectMaxTokens    = 300
	answerMaxTokens    = 1200
)

// selectDocuments asks the backend to pick the most relevant documents from a
// preview of the whole corpus. Any failure, including timeout or unparseable
// output, degrades to the keyword scorer's top ranking, so a shortlist is
// always produced when documents exist.
func (s *Service) selectDocuments(ctx context.Context, query string, documents []index.DocumentRecord) []index.DocumentRecord {
	s.logger.Debug("selecting documents", "corpus_size", len(documents))

	ranked := relevance.Score(query, documents)

	selectCtx, cancel := context.WithTimeout(ctx, s.selectTimeout)
	defer cancel()

	output, err := s.llm.Complete(selectCtx, llm.Request{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: selectSystemPrompt},
			{Role: llm.RoleUser, Content: buildSelectPrompt(query, buildPreview(ranked))},
		},
		Temperature: 0,
		MaxTokens:   selectMaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		s.logger.Warn("document selection failed, falling back to keyword ranking", "err", err.Error())
		return topRanked(ranked, topNDocuments)
	}

	byFilename := make(map[string]index.DocumentRecord, len(documents))
	for _, doc := range documents {
		byFilename[doc.Filename] = doc
	}

	// The backend can hallucinate filenames; anything not actually in the
	// corpus is dropped.
	var selected []index.DocumentRecord
	for _, filename := range parseSelectedFilenames(output) {
		doc, ok := byFilename[strings.TrimSpace(filename)]
		if !ok {
			s.logger.Warn("backend selected a filename not in the corpus, ignoring", "filename", filename)
			continue
		}
		selected = append(selected, doc)
		if len(selected) == topNDocuments {
			break
		}
	}

	if len(selected) == 0 {
		s.logger.Warn("backend selected no usable documents, falling back to keyword ranking")
		return topRanked(ranked, topNDocuments)
	}

	return selected
}

// generateAnswer packs the selected documents and asks the backend for a
// grounded, cited answer. A backend rate limit earns exactly one retry with a
// smaller context and the cheaper model; any other failure is terminal for
// the request.
func (s *Service) generateAnswer(ctx context.Context, query string, selected []index.DocumentRecord) (Result, error) {
	s.logger.Debug("generating answer", "selected", len(selected))

	contextText, packed := relevance.Pack(selected, query, len(selected), answerCharBudget)

	response, err := s.completeAnswer(ctx, query, contextText, s.model)
	if err != nil {
		var rateLimitErr *llm.RateLimitError
		if !errors.As(err, &rateLimitErr) {
			return Result{}, fmt.Errorf("answer generation failed: %w", err)
		}

		s.logger.Warn("backend rate limited, retrying once with a smaller context", "fallback_model", s.fallbackModel)

		retryDocs := selected
		if len(retryDocs) > retryMaxDocs {
			retryDocs = retryDocs[:retryMaxDocs]
		}
		contextText, packed = relevance.Pack(retryDocs, query, len(retryDocs), retryCharBudget)

		response, err = s.completeAnswer(ctx, query, contextText, s.fallbackModel)
		if err != nil {
			return Result{}, fmt.Errorf("answer generation failed after retry: %w", err)
		}
	}

	sources := make([]cache.Source, 0, len(packed))
	for _, doc := range packed {
		sources = append(sources, cache.Source{Filename: doc.Filename, Filetype: string(doc.Filetype)})
	}

	return Result{
		Answer:            response,
		Sources:           sources,
		DocumentsSelected: len(packed),
	}, nil
}

func (s *Service) completeAnswer(ctx context.Context, query string, contextText string, model string) (string, error) {
	answerCtx, cancel := context.WithTimeout(ctx, s.answerTimeout)
	defer cancel()

	return s.llm.Complete(answerCtx, llm.Request{
		Model: model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: answerSystemPrompt},
			{Role: llm.RoleUser, Content: buildAnswerPrompt(query, contextText)},
		},
		Temperature: 0.2,
		MaxTokens:   answerMaxTokens,
	})
}

// buildPreview renders one line per indexed document: filename, type and the
// excerpt around its strongest query matches. Lines are emitted in rank order
// and capped at previewCharBudget, so on a very large corpus the lowest-ranked
// documents fall off the end rather than inflating the selection prompt.
func buildPreview(ranked []relevance.ScoredDocument) string {
	var preview strings.Builder
	for _, sd := range ranked {
		line := fmt.Sprintf("%s (%s): %s\n", sd.Document.Filename, sd.Document.Filetype, relevance.ExtractWindow(sd, previewExcerptSize))
		if preview.Len()+len(line) > previewCharBudget {
			break
		}
		preview.WriteString(line)
	}

	return preview.String()
}

func topRanked(ranked []relevance.ScoredDocument, n int) []index.DocumentRecord {
	if n > len(ranked) {
		n = len(ranked)
	}

	top := make([]index.DocumentRecord, 0, n)
	for _, sd := range ranked[:n] {
		top = append(top, sd.Document)
	}

	return top
}
