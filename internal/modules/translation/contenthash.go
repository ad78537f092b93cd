package translation

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ContentHash fingerprints the translatable source fields of an article.
// Stored on each translation row so staleness checks compare the source
// that was actually translated, not timestamps alone.
func ContentHash(title, text string) string {
	h := xxhash.New()
	_, _ = h.WriteString(title)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(text)
	return fmt.Sprintf("%016x", h.Sum64())
}
