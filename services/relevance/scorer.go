package relevance

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/meghashyamc/askthat/services/index"
)

const (
	bodyMatchWeight     = 2
	filenameMatchWeight = 5
	minTokenLength      = 3
)

// ScoredDocument annotates a document with its relevance to one query.
// Computed per query and never shared across requests.
type ScoredDocument struct {
	Document index.DocumentRecord
	Score    float64
	// Offsets are byte positions of body matches in the original content,
	// ascending.
	Offsets []int
}

var tokenSplitRegex = regexp.MustCompile(`[^a-z0-9]+`)

// foldBody lowercases a document body for matching and records, for every byte
// of the folded text, the byte offset it came from in the original. Case folds
// that change byte length (e.g. U+0130) would otherwise skew match offsets.
func foldBody(content string) (string, []int) {
	var folded strings.Builder
	folded.Grow(len(content))
	origin := make([]int, 0, len(content))
	for i, r := range content {
		before := folded.Len()
		folded.WriteRune(unicode.ToLower(r))
		for j := before; j < folded.Len(); j++ {
			origin = append(origin, i)
		}
	}

	return folded.String(), origin
}

// tokenizeQuery splits a query on whitespace and punctuation, lowercases it
// and drops tokens short enough to be noise.
func tokenizeQuery(query string) []string {
	var tokens []string
	for _, token := range tokenSplitRegex.Split(strings.ToLower(query), -1) {
		if len(token) < minTokenLength {
			continue
		}
		tokens = append(tokens, token)
	}

	return tokens
}

// Score ranks documents against a query, highest score first. Filename matches
// weigh far more than body matches; raw scores are normalized by the square
// root of document length so long documents cannot win on volume alone. A
// query with no usable tokens leaves every document at zero in original order.
func Score(query string, documents []index.DocumentRecord) []ScoredDocument {
	tokens := tokenizeQuery(query)

	scored := make([]ScoredDocument, 0, len(documents))
	for _, doc := range documents {
		sd := ScoredDocument{Document: doc}

		if len(tokens) > 0 {
			body, origin := foldBody(doc.Content)
			filename := strings.ToLower(doc.Filename)

			var raw float64
			for _, token := range tokens {
				searchFrom := 0
				for {
					pos := strings.Index(body[searchFrom:], token)
					if pos < 0 {
						break
					}
					offset := searchFrom + pos
					sd.Offsets = append(sd.Offsets, origin[offset])
					raw += bodyMatchWeight
					searchFrom = offset + len(token)
				}

				raw += filenameMatchWeight * float64(strings.Count(filename, token))
			}

			if doc.ContentLength > 0 {
				sd.Score = raw / math.Sqrt(float64(doc.ContentLength))
			} else {
				sd.Score = raw
			}

			sort.Ints(sd.Offsets)
		}

		scored = append(scored, sd)
	}

	// Stable so that ties keep document iteration order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}
