package relevance

const ellipsis = "..."

// ExtractWindow returns the windowSize-character stretch of a document that
// covers the densest cluster of match offsets. With no recorded matches the
// window is the start of the document. Edges that cut into the document are
// marked with an ellipsis.
func ExtractWindow(sd ScoredDocument, windowSize int) string {
	content := sd.Document.Content
	if windowSize <= 0 || len(content) == 0 {
		return ""
	}

	if len(sd.Offsets) == 0 {
		if len(content) <= windowSize {
			return content
		}
		return content[:windowSize] + ellipsis
	}

	// Pick the offset whose forward window contains the most other matches;
	// ties keep the earliest candidate.
	anchor := sd.Offsets[0]
	bestCount := -1
	for _, candidate := range sd.Offsets {
		count := 0
		for _, other := range sd.Offsets {
			if other >= candidate && other < candidate+windowSize {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			anchor = candidate
		}
	}

	start := anchor - windowSize/4
	if start < 0 {
		start = 0
	}

	end := start + windowSize
	if end > len(content) {
		end = len(content)
	}

	// Use the full budget when the trailing clamp shortened the window, but
	// never shift forward past the start of the document.
	if end-start < windowSize {
		start = end - windowSize
		if start < 0 {
			start = 0
		}
	}

	window := content[start:end]
	if start > 0 {
		window = ellipsis + window
	}
	if end < len(content) {
		window = window + ellipsis
	}

	return window
}
