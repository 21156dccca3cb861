// Package pathmatch implements find -path / -ipath matching semantics.
//
// It follows fnmatch(3) without FNM_PATHNAME:
//   - * matches any characters including /
//   - ? matches exactly one character including /
//   - [...] matches one character from the set including /
//   - \ escapes the next character
//
// This differs from Go's filepath.Match where * does not cross directory separators.
// With Options.IgnoreCase the match folds case like find -ipath.
package pathmatch

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Options controls how patterns are matched.
type Options struct {
	// IgnoreCase folds case for both literals and character classes.
	IgnoreCase bool
}

// Match reports whether path matches the pattern.
func Match(pattern, path string, opts Options) (bool, error) {
	re, err := compile(pattern, opts)
	if err != nil {
		return false, err
	}

	return re.MatchString(path), nil
}

// Matcher pre-compiles patterns for reuse across many paths.
type Matcher struct {
	patterns []*regexp.Regexp
}

// NewMatcher compiles the given patterns into a reusable matcher.
// A matcher without patterns matches nothing.
func NewMatcher(patterns []string, opts Options) (*Matcher, error) {
	matcher := &Matcher{patterns: make([]*regexp.Regexp, 0, len(patterns))}

	for _, p := range patterns {
		re, err := compile(p, opts)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}

		matcher.patterns = append(matcher.patterns, re)
	}

	return matcher, nil
}

// Len returns the number of compiled patterns.
func (m *Matcher) Len() int {
	return len(m.patterns)
}

// MatchAny reports whether path matches any of the compiled patterns.
func (m *Matcher) MatchAny(path string) bool {
	for _, re := range m.patterns {
		if re.MatchString(path) {
			return true
		}
	}

	return false
}

type cacheKey struct {
	pattern string
	opts    Options
}

var cache sync.Map //nolint:gochecknoglobals // package-level cache is appropriate for compiled regexps

// compile converts a glob pattern to a compiled regexp, caching the result.
func compile(pattern string, opts Options) (*regexp.Regexp, error) {
	key := cacheKey{pattern: pattern, opts: opts}

	if v, ok := cache.Load(key); ok {
		cached, _ := v.(*regexp.Regexp) //nolint:errcheck // type is guaranteed by cache.Store below

		return cached, nil
	}

	expr, err := toRegexp(pattern)
	if err != nil {
		return nil, err
	}

	if opts.IgnoreCase {
		expr = "(?i)" + expr
	}

	compiled, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}

	cache.Store(key, compiled)

	return compiled, nil
}

// toRegexp converts a glob pattern to an anchored regex string.
func toRegexp(pattern string) (string, error) {
	var buf strings.Builder

	buf.WriteString("^")

	for pos := 0; pos < len(pattern); {
		switch pattern[pos] {
		case '*':
			buf.WriteString(".*")

			pos++

		case '?':
			buf.WriteString(".")

			pos++

		case '[':
			end, err := findClosingBracket(pattern, pos)
			if err != nil {
				return "", err
			}

			buf.WriteString(bracketClass(pattern[pos : end+1]))

			pos = end + 1

		case '\\':
			if pos+1 >= len(pattern) {
				return "", fmt.Errorf("trailing backslash in pattern %q", pattern)
			}

			buf.WriteString(regexp.QuoteMeta(pattern[pos+1 : pos+2]))

			pos += 2

		default:
			buf.WriteString(regexp.QuoteMeta(pattern[pos : pos+1]))

			pos++
		}
	}

	buf.WriteString("$")

	return buf.String(), nil
}

// bracketClass rewrites a glob character class for regexp syntax: [!...] becomes [^...].
func bracketClass(class string) string {
	if len(class) > 2 && class[1] == '!' {
		return "[^" + class[2:]
	}

	return class
}

// findClosingBracket finds the index of the closing ] for a character class starting at pos.
func findClosingBracket(pattern string, pos int) (int, error) {
	idx := pos + 1

	// Skip leading ! (negation)
	if idx < len(pattern) && pattern[idx] == '!' {
		idx++
	}

	// Skip leading ] (literal)
	if idx < len(pattern) && pattern[idx] == ']' {
		idx++
	}

	for ; idx < len(pattern); idx++ {
		if pattern[idx] == ']' {
			return idx, nil
		}
	}

	return 0, fmt.Errorf("unclosed character class in pattern %q", pattern)
}
