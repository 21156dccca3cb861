package logic

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tomerhc/broken/internal/config"
	"github.com/tomerhc/broken/internal/filter"
	"github.com/tomerhc/broken/pkg/pathmatch"
)

// ErrUnmatchedPatterns is returned by RunCheck when a pattern selects nothing.
var ErrUnmatchedPatterns = errors.New("pattern(s) matched no files")

// RunCheck validates that every include/exclude pattern matches at least one file.
func RunCheck(cfg *config.Config, streams Streams) error {
	includes, excludes, err := loadPatterns(cfg)
	if err != nil {
		return err
	}

	if len(includes) == 0 && len(excludes) == 0 {
		return errors.New("no include or exclude patterns to check")
	}

	candidates, err := collectFiles(cfg.Files, cfg.IgnoreCase)
	if err != nil {
		return err
	}

	opts := pathmatch.Options{IgnoreCase: cfg.IgnoreCase}

	var failures int

	failures += checkPatterns(streams, "include", includes, candidates, opts, cfg.Quiet)
	failures += checkPatterns(streams, "exclude", excludes, candidates, opts, cfg.Quiet)

	if failures > 0 {
		return fmt.Errorf("%d %w", failures, ErrUnmatchedPatterns)
	}

	return nil
}

// collectFiles expands every positional pattern, directories included, into cleaned slash paths.
func collectFiles(patterns []string, ignoreCase bool) ([]string, error) {
	var paths []string

	seen := make(map[string]struct{})

	for _, pattern := range patterns {
		matches, err := filter.Glob(pattern, filter.MatchOptions{IgnoreCase: ignoreCase})
		if err != nil {
			return nil, err
		}

		for _, match := range matches {
			clean := filepath.ToSlash(filepath.Clean(match))
			if _, ok := seen[clean]; ok {
				continue
			}

			seen[clean] = struct{}{}
			paths = append(paths, clean)
		}
	}

	return paths, nil
}

// checkPatterns tests each pattern individually against candidates.
// Returns the number of patterns that matched zero files.
func checkPatterns(streams Streams, kind string, patterns, candidates []string, opts pathmatch.Options, quiet bool) int {
	var failures int

	for _, pattern := range patterns {
		matcher, err := pathmatch.NewMatcher([]string{pattern}, opts)
		if err != nil {
			fmt.Fprintf(streams.Err, "%s: %s: invalid pattern: %v\n", kind, pattern, err)

			failures++

			continue
		}

		var count int

		for _, path := range candidates {
			if matcher.MatchAny(path) {
				count++
			}
		}

		switch {
		case count == 0:
			fmt.Fprintf(streams.Err, "%s: %s: 0 files (ERROR)\n", kind, pattern)

			failures++
		case !quiet:
			fmt.Fprintf(streams.Out, "%s: %s: %d files\n", kind, pattern, count)
		}
	}

	return failures
}
