package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalises a query for matching and cache keys: NFC
// composition, Unicode case folding and collapsed whitespace. It is never
// applied to the text shown back to the user.
func Normalize(query string) string {
	return strings.Join(Terms(query), " ")
}

// Terms splits text into normalized terms. Any rune that is neither a letter
// nor a digit separates terms.
func Terms(text string) []string {
	folded := cases.Fold().String(norm.NFC.String(text))
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
