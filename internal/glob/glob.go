// Package glob resolves the shell-style path patterns marlin's command
// facade accepts for <glob> arguments (tag add/rm, attr set/rm, coll add)
// into either a literal path or a compiled pattern the store layer can test
// paths against. The store layer itself never sees glob syntax, only
// literal paths or this package's Pattern.
package glob

import (
	"strings"

	"github.com/gobwas/glob"
)

// Pattern matches normalized, forward-slash file paths against a
// shell-style pattern where "*" matches within a path segment and "**"
// matches across segments, including none ("/a/**/b" also matches "/a/b").
type Pattern struct {
	raw     string
	literal bool
	g       glob.Glob
}

// Compile parses pattern into a matchable Pattern. Patterns containing no
// glob metacharacters are treated as a literal path for an exact match,
// letting callers pass either a glob or an explicit path through the same
// API, as §4.3 requires.
func Compile(pattern string) (*Pattern, error) {
	if !containsMeta(pattern) {
		return &Pattern{raw: pattern, literal: true}, nil
	}

	// "/**/" may also stand for a single "/", so "**" matches zero
	// directories as well as one or more.
	g, err := glob.Compile(strings.ReplaceAll(pattern, "/**/", "{/,/**/}"), '/')
	if err != nil {
		return nil, err
	}
	return &Pattern{raw: pattern, g: g}, nil
}

// Match reports whether path (already in marlin's canonical normalized
// form) satisfies the pattern.
func (p *Pattern) Match(path string) bool {
	if p.literal {
		return p.raw == path
	}
	return p.g.Match(path)
}

// String returns the original pattern text.
func (p *Pattern) String() string {
	return p.raw
}

// IsLiteral reports whether the pattern has no glob metacharacters and so
// names exactly one path.
func (p *Pattern) IsLiteral() bool {
	return p.literal
}

func containsMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
