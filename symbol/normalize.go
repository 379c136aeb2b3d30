package symbol

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalizer canonicalizes text before it is looked up or interned. It must be
// deterministic and idempotent.
type Normalizer func(string) string

// NFC normalizes text to Unicode Normalization Form C, so composed and
// decomposed spellings of the same text share one Symbol. Text that is already
// in NFC is returned unchanged without allocating.
func NFC(text string) string {
	if norm.NFC.IsNormalString(text) {
		return text
	}
	return norm.NFC.String(text)
}

// FoldLower lowercases text, making interning case-insensitive.
func FoldLower(text string) string {
	return strings.ToLower(text)
}
