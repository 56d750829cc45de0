package index

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"
)

// computeFingerprint derives the corpus version token from the number of
// supported files and the latest modification time among them. Equal corpora
// always produce equal tokens; any add, remove or edit of a supported file
// changes the token.
func computeFingerprint(files []fileInfo) string {
	var latest time.Time
	for _, file := range files {
		if file.ModTime.After(latest) {
			latest = file.ModTime
		}
	}

	sum := sha1.Sum([]byte(fmt.Sprintf("%d:%d", len(files), latest.UnixNano())))

	return hex.EncodeToString(sum[:])[:16]
}
