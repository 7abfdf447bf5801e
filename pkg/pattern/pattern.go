// Package pattern implements a small boolean combinator algebra over
// path-segment predicates. Matchers select subsets of a file tree, for
// example the source files to recompile or the stale class files to delete.
package pattern

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher is a predicate over a relative path, given as its segments, and a
// flag telling whether the entry is a file. Matchers are pure: no I/O, no
// errors, no state.
type Matcher interface {
	Test(segments []string, isFile bool) bool
	And(other Matcher) Matcher
	Or(other Matcher) Matcher
	Negate() Matcher
}

// Func adapts a plain predicate function into a Matcher with the default
// short-circuiting combinators.
type Func func(segments []string, isFile bool) bool

// Test implements Matcher.
func (f Func) Test(segments []string, isFile bool) bool { return f(segments, isFile) }

// And returns a matcher accepting only what both matchers accept.
func (f Func) And(other Matcher) Matcher {
	return Func(func(segments []string, isFile bool) bool {
		return f(segments, isFile) && other.Test(segments, isFile)
	})
}

// Or returns a matcher accepting what either matcher accepts.
func (f Func) Or(other Matcher) Matcher {
	return Func(func(segments []string, isFile bool) bool {
		return f(segments, isFile) || other.Test(segments, isFile)
	})
}

// Negate returns the complement matcher.
func (f Func) Negate() Matcher {
	return Func(func(segments []string, isFile bool) bool {
		return !f(segments, isFile)
	})
}

// MatchAll accepts every path. It is absorbing under Or and an identity
// under And, so combinator chains involving it collapse instead of building
// predicate trees.
var MatchAll Matcher = matchAll{}

// MatchNone accepts no path. It is the dual of MatchAll: identity under Or,
// absorbing under And. It is the natural base for Or-folds over leaf
// matchers.
var MatchNone Matcher = matchNone{}

type matchAll struct{}

func (matchAll) Test([]string, bool) bool   { return true }
func (matchAll) And(other Matcher) Matcher  { return other }
func (matchAll) Or(Matcher) Matcher         { return MatchAll }
func (matchAll) Negate() Matcher            { return MatchNone }

type matchNone struct{}

func (matchNone) Test([]string, bool) bool  { return false }
func (matchNone) And(Matcher) Matcher       { return MatchNone }
func (matchNone) Or(other Matcher) Matcher  { return other }
func (matchNone) Negate() Matcher           { return MatchAll }

// RelativePath returns a matcher accepting exactly the given slash-separated
// relative path.
func RelativePath(rel string) Matcher {
	want := Split(rel)
	return Func(func(segments []string, isFile bool) bool {
		if len(segments) != len(want) {
			return false
		}
		for i := range want {
			if segments[i] != want[i] {
				return false
			}
		}
		return true
	})
}

// Glob returns a matcher accepting paths that match the given doublestar
// glob pattern ("**" spans directories). An invalid pattern yields MatchNone.
func Glob(pat string) Matcher {
	if !doublestar.ValidatePattern(pat) {
		return MatchNone
	}
	return Func(func(segments []string, isFile bool) bool {
		ok, err := doublestar.Match(pat, path.Join(segments...))
		return err == nil && ok
	})
}

// Paths returns the Or-fold of exact-path matchers for each given path.
func Paths(rels ...string) Matcher {
	m := MatchNone
	for _, rel := range rels {
		m = m.Or(RelativePath(rel))
	}
	return m
}

// Globs returns the Or-fold of glob matchers for each given pattern.
func Globs(pats ...string) Matcher {
	m := MatchNone
	for _, pat := range pats {
		m = m.Or(Glob(pat))
	}
	return m
}

// Split breaks a slash-separated relative path into segments. Empty segments
// from leading, trailing or doubled slashes are dropped.
func Split(rel string) []string {
	parts := strings.Split(rel, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
