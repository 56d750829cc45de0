package answer

import "fmt"

const selectSystemPrompt = `You select documents relevant to a user's question.
You are given a numbered preview of every available document: its filename, its type and a short excerpt.
Respond with a JSON array containing the filenames of the most relevant documents, most relevant first, at most 5.
Use the exact filenames from the preview. If no document is relevant, respond with an empty JSON array: [].
Respond with JSON only, no explanation.`

const answerSystemPrompt = `You answer questions strictly from the supplied document excerpts.
Cite the source filename in parentheses next to every factual claim, for example (report.pdf).
If the answer is not present in the excerpts, say so explicitly instead of guessing.
Never use knowledge that is not in the excerpts.`

func buildSelectPrompt(query string, preview string) string {
	return fmt.Sprintf("Question: %s\n\nAvailable documents:\n%s", query, preview)
}

func buildAnswerPrompt(query string, contextText string) string {
	return fmt.Sprintf("Question: %s\n\nDocument excerpts:\n%s", query, contextText)
}
