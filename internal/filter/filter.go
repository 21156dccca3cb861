// Package filter enumerates the files selected by glob patterns and applies include/exclude filtering.
package filter

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tomerhc/broken/pkg/pathmatch"
)

// ErrNoMatches is returned by Resolve when no file survives enumeration and filtering.
var ErrNoMatches = errors.New("no files matched the provided patterns")

// MatchOptions is passed straight through to glob enumeration and pattern filtering.
type MatchOptions struct {
	// IgnoreCase makes both globs and include/exclude patterns case-insensitive.
	IgnoreCase bool
}

// Filter selects files based on include/exclude patterns using find -path semantics.
// Empty includes means "match all". Excludes always win.
type Filter struct {
	includes *pathmatch.Matcher
	excludes *pathmatch.Matcher
}

// NewFilter compiles include/exclude patterns into a reusable filter.
func NewFilter(includes, excludes []string, opts MatchOptions) (*Filter, error) {
	matchOpts := pathmatch.Options{IgnoreCase: opts.IgnoreCase}

	inc, err := pathmatch.NewMatcher(normalizePatterns(includes), matchOpts)
	if err != nil {
		return nil, fmt.Errorf("compiling include patterns: %w", err)
	}

	exc, err := pathmatch.NewMatcher(normalizePatterns(excludes), matchOpts)
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	return &Filter{includes: inc, excludes: exc}, nil
}

// Match returns true if the path should be processed.
func (f *Filter) Match(name string) bool {
	clean := filepath.ToSlash(filepath.Clean(name))

	included := f.includes.Len() == 0 || f.includes.MatchAny(clean)
	excluded := f.excludes.MatchAny(clean)

	return included && !excluded
}

// normalizePatterns strips leading "./" from patterns so they match cleaned paths.
func normalizePatterns(patterns []string) []string {
	out := make([]string, len(patterns))

	for i, p := range patterns {
		out[i] = strings.TrimPrefix(p, "./")
	}

	return out
}

// Glob lists the regular files matching pattern. A pattern naming a directory selects every file
// below it. An empty result is not an error.
func Glob(pattern string, opts MatchOptions) ([]string, error) {
	if info, err := os.Stat(pattern); err == nil && info.IsDir() {
		pattern = path.Join(filepath.ToSlash(pattern), "**")
	}

	globOpts := []doublestar.GlobOption{doublestar.WithFilesOnly()}
	if opts.IgnoreCase {
		globOpts = append(globOpts, doublestar.WithCaseInsensitive())
	}

	matches, err := doublestar.FilepathGlob(pattern, globOpts...)
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", pattern, err)
	}

	return matches, nil
}

// Resolve expands every pattern, applies the filter and returns the de-duplicated files in
// pattern order together with the number of candidates seen before filtering.
func Resolve(patterns []string, flt *Filter, opts MatchOptions) (files []string, scanned int, err error) {
	seen := make(map[string]struct{})

	for _, pattern := range patterns {
		matches, err := Glob(pattern, opts)
		if err != nil {
			return nil, scanned, err
		}

		for _, match := range matches {
			scanned++

			clean := filepath.Clean(match)

			if _, ok := seen[clean]; ok {
				continue
			}

			seen[clean] = struct{}{}

			if flt != nil && !flt.Match(clean) {
				continue
			}

			files = append(files, clean)
		}
	}

	if len(files) == 0 {
		return nil, scanned, fmt.Errorf("%w: %v", ErrNoMatches, patterns)
	}

	return files, scanned, nil
}
