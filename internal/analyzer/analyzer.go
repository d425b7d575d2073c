// Package analyzer normalizes raw text into index terms. The same
// normalization runs at build time and at query time, so any text that
// indexes as a term is reachable by a prefix of that term.
package analyzer

import (
	"strings"
	"unicode"
)

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

// Analyze lowercases text and splits it into terms on any run of
// non-letter, non-digit runes, dropping empty tokens. Hyphenated names like
// "Seattle-Tacoma" therefore index as two terms, each reachable by prefix.
// Pure and deterministic.
func Analyze(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), isSeparator)
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok != "" {
			terms = append(terms, tok)
		}
	}
	return terms
}
