package lang

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"

	"loclens/internal/core/errors"
	"loclens/internal/shared/util"
)

//go:embed languages.toml
var defaultTable []byte

type tableEntry struct {
	Patterns      []string   `toml:"patterns"`
	LineComments  []string   `toml:"line_comments"`
	BlockComments [][]string `toml:"block_comments"`
	NestedBlocks  bool       `toml:"nested_blocks"`
	Shebangs      []string   `toml:"shebangs"`
	Keywords      []string   `toml:"keywords"`
}

type languageTable struct {
	Languages map[string]tableEntry `toml:"languages"`
}

// Override adjusts one built-in definition from user configuration.
type Override struct {
	Disabled      bool
	ExtraPatterns []string
}

type globEntry struct {
	pattern string
	matcher glob.Glob
	def     *Definition
}

// Catalog is the immutable language table. It is built once at startup
// and shared by reference across all workers; it has no mutable state.
type Catalog struct {
	defs     []*Definition
	byName   map[string]*Definition
	literals map[string][]*Definition
	globs    []globEntry
}

// DefaultCatalog builds the catalog from the embedded language table.
func DefaultCatalog() (*Catalog, error) {
	return NewCatalog(defaultTable, nil)
}

// DefaultCatalogWith builds from the embedded table with user
// overrides applied.
func DefaultCatalogWith(overrides map[string]Override) (*Catalog, error) {
	return NewCatalog(defaultTable, overrides)
}

// NewCatalog parses a TOML language table, applies overrides, and
// compiles the pattern matchers. A malformed table is a startup error.
func NewCatalog(data []byte, overrides map[string]Override) (*Catalog, error) {
	var table languageTable
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "parse language table")
	}
	if len(table.Languages) == 0 {
		return nil, errors.New(errors.CodeValidationError, "language table is empty")
	}

	c := &Catalog{
		byName:   make(map[string]*Definition, len(table.Languages)),
		literals: make(map[string][]*Definition),
	}

	// Sorted name order keeps resolution deterministic regardless of
	// map iteration.
	for _, name := range util.SortedStringKeys(table.Languages) {
		entry := table.Languages[name]
		if ov, ok := overrides[name]; ok && ov.Disabled {
			continue
		}
		def, err := buildDefinition(name, entry, overrides[name])
		if err != nil {
			return nil, err
		}
		c.defs = append(c.defs, def)
		c.byName[name] = def
		for _, pattern := range def.Patterns {
			if err := c.addPattern(pattern, def); err != nil {
				return nil, err
			}
		}
	}

	return c, nil
}

func buildDefinition(name string, entry tableEntry, ov Override) (*Definition, error) {
	if len(entry.Patterns) == 0 {
		return nil, errors.New(errors.CodeValidationError,
			fmt.Sprintf("language %q declares no file patterns", name))
	}
	def := &Definition{
		Name:         name,
		Patterns:     append(append([]string(nil), entry.Patterns...), ov.ExtraPatterns...),
		LineComments: append([]string(nil), entry.LineComments...),
		NestedBlocks: entry.NestedBlocks,
		Shebangs:     append([]string(nil), entry.Shebangs...),
		Keywords:     append([]string(nil), entry.Keywords...),
	}
	for _, pair := range entry.BlockComments {
		if len(pair) != 2 || pair[0] == "" || pair[1] == "" {
			return nil, errors.New(errors.CodeValidationError,
				fmt.Sprintf("language %q has a malformed block comment pair %v", name, pair))
		}
		def.BlockComments = append(def.BlockComments, BlockPair{Open: pair[0], Close: pair[1]})
	}
	return def, nil
}

func (c *Catalog) addPattern(pattern string, def *Definition) error {
	// Patterns match base names only.
	if util.ContainsPathSeparator(pattern) {
		return errors.New(errors.CodeValidationError,
			fmt.Sprintf("pattern %q for language %q must not contain a path separator", pattern, def.Name))
	}
	if strings.ContainsAny(pattern, "*?[") {
		lowered := strings.ToLower(pattern)
		matcher, err := glob.Compile(lowered)
		if err != nil {
			return errors.Wrap(err, errors.CodeValidationError,
				fmt.Sprintf("invalid pattern %q for language %q", pattern, def.Name))
		}
		c.globs = append(c.globs, globEntry{pattern: lowered, matcher: matcher, def: def})
		return nil
	}
	key := strings.ToLower(pattern)
	for _, existing := range c.literals[key] {
		if existing == def {
			return nil
		}
	}
	c.literals[key] = append(c.literals[key], def)
	return nil
}

// Definitions returns the catalog's definitions sorted by name.
func (c *Catalog) Definitions() []*Definition {
	return c.defs
}

// Lookup returns a definition by exact name.
func (c *Catalog) Lookup(name string) (*Definition, bool) {
	def, ok := c.byName[name]
	return def, ok
}

// Resolve maps a file path plus an optional decoded content sample to
// a language definition. Exact filename patterns outrank globs; shared
// patterns fall back to shebang and keyword disambiguation; unmatched
// files with a "#!" first line consult the shebang table. Resolution is
// a pure function of (path, content): the same inputs always resolve
// to the same definition.
func (c *Catalog) Resolve(path string, content string) (*Definition, bool) {
	base := strings.ToLower(filepath.Base(path))

	candidates, patterns := c.candidatesFor(base)
	switch len(candidates) {
	case 0:
		return c.resolveShebang(content)
	case 1:
		return candidates[0], true
	}

	if def, ok := c.resolveShebang(content); ok {
		return def, true
	}
	if def := disambiguate(candidates, content); def != nil {
		return def, true
	}
	// No content signal: the uniquely most specific pattern wins ties.
	if def := mostSpecific(candidates, patterns); def != nil {
		return def, true
	}
	return nil, false
}

// candidatesFor returns matching definitions and, aligned by index, the
// pattern each one matched with. Literal filename matches shadow globs.
func (c *Catalog) candidatesFor(base string) ([]*Definition, []string) {
	if defs, ok := c.literals[base]; ok {
		patterns := make([]string, len(defs))
		for i := range defs {
			patterns[i] = base
		}
		return defs, patterns
	}
	var defs []*Definition
	var patterns []string
	seen := make(map[*Definition]bool)
	for _, entry := range c.globs {
		if seen[entry.def] || !entry.matcher.Match(base) {
			continue
		}
		seen[entry.def] = true
		defs = append(defs, entry.def)
		patterns = append(patterns, entry.pattern)
	}
	return defs, patterns
}

func (c *Catalog) resolveShebang(content string) (*Definition, bool) {
	if content == "" {
		return nil, false
	}
	firstLine := strings.TrimSpace(firstLineOf(content))
	if !strings.HasPrefix(firstLine, "#!") {
		return nil, false
	}
	for _, def := range c.defs {
		if len(def.Shebangs) > 0 && def.MatchesShebang(firstLine) {
			return def, true
		}
	}
	return nil, false
}

// mostSpecific returns the candidate whose matched pattern is strictly
// longer than every other candidate's, or nil when the tie stands.
func mostSpecific(candidates []*Definition, patterns []string) *Definition {
	best := -1
	unique := false
	for i, pattern := range patterns {
		switch {
		case best < 0 || len(pattern) > len(patterns[best]):
			best = i
			unique = true
		case len(pattern) == len(patterns[best]):
			unique = false
		}
	}
	if best >= 0 && unique {
		return candidates[best]
	}
	return nil
}
