// Package textx provides small text utilities used across the project.
package textx

import (
	"strings"
	"unicode"
)

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// stopWords are common words excluded from significant-token extraction.
var stopWords = map[string]struct{}{
	"that": {}, "this": {}, "with": {}, "from": {}, "have": {}, "will": {},
	"your": {}, "they": {}, "their": {}, "about": {}, "would": {}, "there": {},
	"which": {}, "when": {}, "what": {}, "where": {}, "then": {}, "than": {},
	"them": {}, "some": {}, "such": {}, "also": {}, "into": {}, "only": {},
	"other": {}, "because": {}, "while": {}, "these": {}, "those": {},
	"each": {}, "very": {}, "more": {}, "most": {}, "must": {}, "should": {},
	"could": {}, "been": {}, "being": {}, "does": {}, "used": {}, "using": {},
	"like": {}, "over": {}, "both": {}, "after": {}, "before": {}, "between": {},
}

// SignificantTokens extracts lowercase tokens longer than three characters,
// with punctuation stripped and stop words removed. Order of first occurrence
// is preserved; duplicates are dropped.
func SignificantTokens(s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(f) <= 3 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// ContainsConcept reports whether every significant token of concept appears
// in the token set of text. Single-word concepts match by simple containment.
func ContainsConcept(text, concept string) bool {
	tokens := make(map[string]struct{})
	for _, t := range SignificantTokens(text) {
		tokens[t] = struct{}{}
	}
	parts := SignificantTokens(concept)
	if len(parts) == 0 {
		// Concept made of short words only; fall back to substring match.
		return strings.Contains(strings.ToLower(text), strings.ToLower(strings.TrimSpace(concept)))
	}
	for _, p := range parts {
		if _, ok := tokens[p]; !ok {
			return false
		}
	}
	return true
}

// Truncate bounds s to max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
