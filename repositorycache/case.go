package repositorycache

import (
	"strings"
	"unicode"
)

// toSnake lower-cases s and joins its words with underscores. Words break on
// case changes ("BlogPost", "HTTPServer") and on any rune that is neither a
// letter nor a digit, so names like "*models.Post" stay key-safe.
func toSnake(s string) string {
	rs := []rune(s)
	words := make([]string, 0, 4)
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := rs[i-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, unicode.ToLower(r))
	}
	flush()

	return strings.Join(words, "_")
}
