package translate

import "strings"

// Filter bounds: anything shorter reads as an abbreviation or glyph,
// anything longer as data rather than UI text.
const (
	minTranslatableLen = 3
	maxTranslatableLen = 500
)

// Characters that mark paths, format strings, and markup
const rejectChars = `/\{<`

// Translatable is the predicate every text-intercepting detour applies
// before handing a string to the pipeline.
func Translatable(s string) bool {
	if s == "" {
		return false
	}
	n := len([]rune(s))
	if n < minTranslatableLen || n > maxTranslatableLen {
		return false
	}
	return !strings.ContainsAny(s, rejectChars)
}
