package domain

import (
	"fmt"
	"unicode/utf8"
)

// MaxQueryLength bounds an accepted query, in characters. The max= validate
// tags of the request structs in internal/handlers must carry the same value.
const MaxQueryLength = 512

// ValidateQuery reports whether q can be resolved.
func ValidateQuery(q string) error {
	if n := utf8.RuneCountInString(q); n > MaxQueryLength {
		return fmt.Errorf("%w: %d characters, at most %d allowed", ErrQueryTooLong, n, MaxQueryLength)
	}
	return nil
}
