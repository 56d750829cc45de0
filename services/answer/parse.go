package answer

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Keys under which models commonly wrap an array they were asked for.
var wrapperKeys = []string{"files", "filenames", "documents", "selected"}

var quotedFilenameRegex = regexp.MustCompile(`"([^"\n]+\.[A-Za-z0-9]{1,5})"`)

// parseSelectedFilenames reads the backend's document selection as tolerantly
// as possible: a bare JSON array, an object wrapping the array under a common
// key, and finally a scan for quoted filename-like substrings when the output
// is not valid JSON at all.
func parseSelectedFilenames(raw string) []string {
	raw = stripCodeFences(raw)

	var filenames []string
	if err := json.Unmarshal([]byte(raw), &filenames); err == nil {
		return filenames
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil {
		for _, key := range wrapperKeys {
			value, ok := wrapped[key]
			if !ok {
				continue
			}
			if err := json.Unmarshal(value, &filenames); err == nil {
				return filenames
			}
		}
	}

	for _, match := range quotedFilenameRegex.FindAllStringSubmatch(raw, -1) {
		filenames = append(filenames, match[1])
	}

	return filenames
}

func stripCodeFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	return strings.TrimSpace(raw)
}
