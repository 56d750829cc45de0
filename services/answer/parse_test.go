package answer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSelectedFilenames(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected []string
	}{
		{
			name:     "BareArray",
			raw:      `["budget.txt", "report.pdf"]`,
			expected: []string{"budget.txt", "report.pdf"},
		},
		{
			name:     "EmptyArray",
			raw:      `[]`,
			expected: []string{},
		},
		{
			name:     "WrappedUnderFiles",
			raw:      `{"files": ["budget.txt"]}`,
			expected: []string{"budget.txt"},
		},
		{
			name:     "WrappedUnderFilenames",
			raw:      `{"filenames": ["a.csv", "b.pptx"]}`,
			expected: []string{"a.csv", "b.pptx"},
		},
		{
			name:     "WrappedUnderDocuments",
			raw:      `{"documents": ["notes.md"]}`,
			expected: []string{"notes.md"},
		},
		{
			name:     "CodeFencedArray",
			raw:      "```json\n[\"budget.txt\"]\n```",
			expected: []string{"budget.txt"},
		},
		{
			name:     "ProseWithQuotedFilenames",
			raw:      `The most relevant documents are "budget.txt" and "q3 report.pdf".`,
			expected: []string{"budget.txt", "q3 report.pdf"},
		},
		{
			name:     "Garbage",
			raw:      `no idea what you mean`,
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed := parseSelectedFilenames(tc.raw)
			if len(tc.expected) == 0 {
				require.Empty(t, parsed)
				return
			}
			require.Equal(t, tc.expected, parsed)
		})
	}
}
