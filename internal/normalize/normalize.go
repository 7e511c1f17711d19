// Package normalize canonicalizes text for matching and slug derivation.
// The same folding must be applied to stored names/keywords and to incoming
// queries; comparing folded text against unfolded text silently breaks
// matching for accented input.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold canonicalizes s for comparison: Unicode decomposition, combining
// mark removal, lowercasing, whitespace collapse. Total on any input.
func Fold(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Transform failures keep the original bytes; lowercasing and
		// trimming still apply.
		folded = s
	}
	folded = strings.ToLower(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// Slug derives a URL-safe identifier from a display name: folded,
// non-alphanumeric runs become single hyphens, no leading or trailing
// hyphen.
func Slug(s string) string {
	folded := Fold(s)
	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
