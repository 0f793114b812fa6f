package analyzer

import (
	"strings"

	"loclens/internal/lang"
)

// LineClass is the classification of one line of decoded text.
type LineClass uint8

const (
	LineCode LineClass = iota
	LineComment
	LineBlank
	LineShebang
)

func (c LineClass) String() string {
	switch c {
	case LineCode:
		return "code"
	case LineComment:
		return "comment"
	case LineBlank:
		return "blank"
	case LineShebang:
		return "shebang"
	}
	return "unknown"
}

// CommentState carries block-comment state from one line to the next.
// It is threaded explicitly between ClassifyLine calls so a file can be
// classified line by line, resumed mid-file, and unit-tested per line.
// The zero value is the Normal state.
type CommentState struct {
	pair  *lang.BlockPair
	depth int
}

// InBlock reports whether the state is inside a block comment.
func (s *CommentState) InBlock() bool { return s.pair != nil }

// Reset returns the state to Normal.
func (s *CommentState) Reset() {
	s.pair = nil
	s.depth = 0
}

// ClassifyLine classifies one line (LF/CR already stripped or trailing,
// both are tolerated) for the given language, updating state in place.
// firstLine must be true only for line 1 of a file, where a shebang may
// occur. A nil definition classifies every non-blank line as code.
//
// Comment tokens are recognized positionally: a marker inside a string
// literal still counts as a marker.
func ClassifyLine(line string, def *lang.Definition, state *CommentState, firstLine bool) LineClass {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return LineBlank
	}

	if firstLine && !state.InBlock() && strings.HasPrefix(trimmed, "#!") {
		if def == nil {
			return LineShebang
		}
		if !def.ClaimsShebangPrefix() && (len(def.Shebangs) == 0 || def.MatchesShebang(trimmed)) {
			return LineShebang
		}
	}

	if def == nil {
		return LineCode
	}

	rem := trimmed
	hasCode := false
	for rem != "" {
		if state.InBlock() {
			offset, tokenLen, isOpen, found := findBlockBoundary(rem, state.pair, def.NestedBlocks)
			if !found {
				// The block comment swallows the rest of the line.
				rem = ""
				break
			}
			if isOpen {
				state.depth++
			} else {
				state.depth--
				if state.depth <= 0 {
					state.Reset()
				}
			}
			rem = rem[offset+tokenLen:]
			continue
		}

		m, found := findMarker(rem, def)
		if !found {
			if strings.TrimSpace(rem) != "" {
				hasCode = true
			}
			break
		}
		if strings.TrimSpace(rem[:m.offset]) != "" {
			hasCode = true
		}
		if !m.isBlock {
			// A line comment runs to end of line.
			if hasCode {
				return LineCode
			}
			return LineComment
		}
		state.pair = m.pair
		state.depth = 1
		rem = rem[m.offset+m.tokenLen:]
	}

	if hasCode {
		return LineCode
	}
	return LineComment
}

type marker struct {
	offset   int
	tokenLen int
	isBlock  bool
	pair     *lang.BlockPair
}

// findMarker locates the earliest comment marker in rem. Line-comment
// tokens are checked before block-comment opens, each in declared
// order, so equal offsets resolve in that order.
func findMarker(rem string, def *lang.Definition) (marker, bool) {
	best := marker{offset: -1}
	for _, token := range def.LineComments {
		idx := strings.Index(rem, token)
		if idx >= 0 && (best.offset < 0 || idx < best.offset) {
			best = marker{offset: idx, tokenLen: len(token)}
		}
	}
	for i := range def.BlockComments {
		pair := &def.BlockComments[i]
		idx := strings.Index(rem, pair.Open)
		if idx >= 0 && (best.offset < 0 || idx < best.offset) {
			best = marker{offset: idx, tokenLen: len(pair.Open), isBlock: true, pair: pair}
		}
	}
	return best, best.offset >= 0
}

// findBlockBoundary locates the earliest close token of the active
// pair or, for nesting languages, a nested open of the same pair.
// Equal offsets prefer the close token.
func findBlockBoundary(rem string, pair *lang.BlockPair, nested bool) (offset, tokenLen int, isOpen, found bool) {
	closeIdx := strings.Index(rem, pair.Close)
	if nested {
		openIdx := strings.Index(rem, pair.Open)
		if openIdx >= 0 && (closeIdx < 0 || openIdx < closeIdx) {
			return openIdx, len(pair.Open), true, true
		}
	}
	if closeIdx < 0 {
		return 0, 0, false, false
	}
	return closeIdx, len(pair.Close), false, true
}
