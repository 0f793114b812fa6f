// Package lang holds the language catalog: an immutable, data-driven
// table of language definitions and the pattern matching that resolves
// a file path (plus a content sample) to one definition.
package lang

import "strings"

// BlockPair is an open/close token pair delimiting a block comment.
type BlockPair struct {
	Open  string
	Close string
}

// Definition describes one language: how its files are named and how
// its comments are written. Definitions are immutable after catalog
// construction and shared by reference across workers.
type Definition struct {
	Name          string
	Patterns      []string
	LineComments  []string
	BlockComments []BlockPair
	NestedBlocks  bool
	Shebangs      []string
	Keywords      []string
}

// normalizeShebang rewrites "#! /usr/bin/env x" into "#!/usr/bin/env x"
// so prefix matching does not depend on the optional space.
func normalizeShebang(line string) string {
	if rest, ok := strings.CutPrefix(line, "#! "); ok {
		return "#!" + rest
	}
	return line
}

// MatchesShebang reports whether the normalized first line matches one
// of the definition's declared interpreter prefixes.
func (d *Definition) MatchesShebang(firstLine string) bool {
	normalized := normalizeShebang(strings.TrimSpace(firstLine))
	for _, shebang := range d.Shebangs {
		if strings.HasPrefix(normalized, shebang) {
			return true
		}
	}
	return false
}

// ClaimsShebangPrefix reports whether the language declares "#!" itself
// as a line-comment token, in which case a first line starting with
// "#!" is an ordinary comment rather than a shebang.
func (d *Definition) ClaimsShebangPrefix() bool {
	for _, tok := range d.LineComments {
		if strings.HasPrefix(tok, "#!") {
			return true
		}
	}
	return false
}

func firstLineOf(content string) string {
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		return content[:idx]
	}
	return content
}
