// Package filter implements the name filters applied to directory
// listings: substring token filters, fuzzy subsequence filters, glob
// patterns and arbitrary predicates.
package filter

import (
	"strings"

	"github.com/gobwas/glob"
)

// Filter decides which file names stay visible.
type Filter interface {
	// Match reports whether name passes the filter.
	Match(name string) bool
	// String returns the original filter input.
	String() string
}

// Scorer is implemented by filters that rank their matches. Higher is
// better; Score is only called for names that matched.
type Scorer interface {
	Score(name string) int
}

// Substring matches all space-separated tokens case-insensitively. A token
// prefixed with '!' must not match.
type Substring struct {
	input  string
	tokens []token
}

type token struct {
	needle string
	negate bool
}

// NewSubstring parses a substring filter from input.
func NewSubstring(input string) *Substring {
	f := &Substring{input: input}
	for _, tok := range strings.Fields(input) {
		negate := strings.HasPrefix(tok, "!")
		if negate {
			tok = tok[1:]
		}
		if tok == "" {
			continue
		}
		f.tokens = append(f.tokens, token{needle: strings.ToLower(tok), negate: negate})
	}
	return f
}

func (f *Substring) Match(name string) bool {
	lower := strings.ToLower(name)
	for _, t := range f.tokens {
		if strings.Contains(lower, t.needle) == t.negate {
			return false
		}
	}
	return true
}

func (f *Substring) String() string { return f.input }

// Glob matches a glob pattern against the whole name.
type Glob struct {
	input string
	g     glob.Glob
}

// NewGlob compiles pattern; an invalid pattern yields a filter that
// matches nothing.
func NewGlob(pattern string) *Glob {
	g, err := glob.Compile(pattern)
	if err != nil {
		g = nil
	}
	return &Glob{input: pattern, g: g}
}

func (f *Glob) Match(name string) bool {
	if f.g == nil {
		return false
	}
	return f.g.Match(name)
}

func (f *Glob) String() string { return f.input }

// Func wraps an arbitrary predicate, e.g. one registered by the host.
type Func struct {
	input string
	fn    func(name string) bool
}

// NewFunc builds a predicate filter; label is returned by String.
func NewFunc(label string, fn func(name string) bool) *Func {
	return &Func{input: label, fn: fn}
}

func (f *Func) Match(name string) bool { return f.fn(name) }

func (f *Func) String() string { return f.input }
