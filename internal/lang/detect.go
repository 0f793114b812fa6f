package lang

import "strings"

// Disambiguation weights: comment styles are strong signals, keywords
// weak ones that may appear as identifiers in other languages.
const (
	commentMatchScore = 50
	keywordMatchScore = 10
)

// disambiguate picks the candidate scoring highest against the content
// sample, or nil when no candidate produces a positive score.
func disambiguate(candidates []*Definition, content string) *Definition {
	if content == "" {
		return nil
	}
	tokens := tokenize(content)
	var best *Definition
	bestScore := 0
	for _, def := range candidates {
		if score := scoreLanguage(def, content, tokens); score > bestScore {
			best = def
			bestScore = score
		}
	}
	return best
}

func scoreLanguage(def *Definition, content string, tokens []string) int {
	if len(def.LineComments) == 0 && len(def.BlockComments) == 0 && len(def.Keywords) == 0 {
		return 0
	}
	score := 0
	for _, comment := range def.LineComments {
		if strings.Contains(content, comment) {
			score += commentMatchScore
		}
	}
	for _, pair := range def.BlockComments {
		if strings.Contains(content, pair.Open) && strings.Contains(content, pair.Close) {
			score += commentMatchScore
		}
	}
	matchedChars := 0
	for _, keyword := range def.Keywords {
		var count int
		if hasNonIdentifierChars(keyword) {
			// Substring matching for keywords such as "@interface" or
			// ":-" that tokenization would split apart.
			count = strings.Count(content, keyword)
			matchedChars += count * len(keyword)
		} else {
			for _, token := range tokens {
				if strings.EqualFold(token, keyword) {
					count++
				}
			}
		}
		score += count * keywordMatchScore
	}
	// Symbol-only languages need high symbol density before they may
	// claim a file that also carries alphabetic content.
	if isSymbolOnly(def) && len(tokens) > 0 {
		nonWhitespace := 0
		for _, r := range content {
			if !isSpaceRune(r) {
				nonWhitespace++
			}
		}
		if nonWhitespace > 0 && matchedChars*2 < nonWhitespace {
			return 0
		}
	}
	return score
}

func isSymbolOnly(def *Definition) bool {
	if len(def.Keywords) == 0 || len(def.LineComments) > 0 || len(def.BlockComments) > 0 {
		return false
	}
	for _, keyword := range def.Keywords {
		if !hasNonIdentifierChars(keyword) {
			return false
		}
		for _, r := range keyword {
			if isIdentRune(r) {
				return false
			}
		}
	}
	return true
}

func tokenize(content string) []string {
	return strings.FieldsFunc(content, func(r rune) bool {
		return !isIdentRune(r)
	})
}

func hasNonIdentifierChars(s string) bool {
	for _, r := range s {
		if !isIdentRune(r) {
			return true
		}
	}
	return false
}

func isIdentRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	}
	return false
}

func isSpaceRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
