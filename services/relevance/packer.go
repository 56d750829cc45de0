package relevance

import (
	"fmt"
	"strings"

	"github.com/meghashyamc/askthat/services/index"
)

const truncationMarker = "[additional documents omitted to stay within the context budget]\n"

// SelectedDoc is the metadata of a document that made it into a packed
// context block.
type SelectedDoc struct {
	Filename string
	Filetype index.FileType
	Score    float64
}

// Pack assembles a bounded context block from the highest-ranked documents.
// Each included document contributes a header line and its best-matching
// window. The first block that would exceed the character budget is replaced
// with a truncation marker and packing stops there.
func Pack(documents []index.DocumentRecord, query string, maxDocs int, maxCharBudget int) (string, []SelectedDoc) {
	scored := Score(query, documents)
	if maxDocs > len(scored) {
		maxDocs = len(scored)
	}

	windowSize := maxCharBudget
	if maxDocs > 0 {
		windowSize = maxCharBudget / maxDocs
	}

	var packed strings.Builder
	var selected []SelectedDoc
	total := 0

	for i := 0; i < maxDocs; i++ {
		sd := scored[i]
		block := fmt.Sprintf("--- %s ---\n%s\n\n", sd.Document.Filename, ExtractWindow(sd, windowSize))

		if total+len(block) > maxCharBudget {
			packed.WriteString(truncationMarker)
			break
		}

		packed.WriteString(block)
		total += len(block)
		selected = append(selected, SelectedDoc{
			Filename: sd.Document.Filename,
			Filetype: sd.Document.Filetype,
			Score:    sd.Score,
		})
	}

	return packed.String(), selected
}
