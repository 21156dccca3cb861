// Package logic wires configuration, file selection and the processor into the command runs.
package logic

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/tomerhc/broken/internal/config"
	"github.com/tomerhc/broken/internal/encryption"
	"github.com/tomerhc/broken/internal/filter"
	"github.com/tomerhc/broken/internal/logging"
	"github.com/tomerhc/broken/internal/metrics"
)

// Streams are the standard streams of a run.
type Streams struct {
	In  config.Terminal
	Out io.Writer
	Err io.Writer
}

// DefaultStreams returns the process' standard streams.
func DefaultStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Run is the main logic of the application: it encrypts, decrypts or searches cfg.Files.
func Run(cfg *config.Config, streams Streams) error {
	logger := newLogger(cfg, streams.Err)

	scanned, excluded, start, done, err := preamble(cfg, streams, logger)
	if done || err != nil {
		return err
	}

	key, err := cfg.LoadKey(streams.In, streams.Err)
	if err != nil {
		return fmt.Errorf("loading key: %w", err)
	}

	var recorder *metrics.Recorder
	if cfg.MetricsFile != "" {
		recorder = metrics.New()
	}

	proc, err := encryption.NewProcessor(cfg, key,
		encryption.WithLogger(logger),
		encryption.WithMetrics(recorder),
		encryption.WithOutput(streams.Out),
	)
	if err != nil {
		return fmt.Errorf("creating processor: %w", err)
	}

	report, err := proc.ProcessFiles()

	if cfg.Stats {
		printStats(streams.Err, scanned, excluded, report.Processed, report.Errored, report.TotalSize, time.Since(start))
	}

	if mErr := recorder.WriteTextfile(cfg.MetricsFile); mErr != nil {
		logger.Error(mErr, "flushing metrics")
	}

	if err != nil {
		return fmt.Errorf("running logic: %w", err)
	}

	return nil
}

// newLogger builds the console logger for a run, tagged with a fresh run id.
func newLogger(cfg *config.Config, w io.Writer) *logging.Logger {
	level := cfg.LogLevel
	if cfg.Quiet {
		level = "warn"
	}

	return logging.NewConsole(w, level).
		WithRun(uuid.NewString()).
		WithOperation(string(cfg.Mode))
}

// preamble resolves files and handles dry run. Returns done=true if dry run was executed
// or if nothing matched, which is only warned about.
func preamble(cfg *config.Config, streams Streams, logger *logging.Logger) (int, int, time.Time, bool, error) {
	start := time.Now()

	scanned, err := resolveFiles(cfg)

	switch {
	case errors.Is(err, filter.ErrNoMatches):
		cfg.Files = nil

		logger.Warn(err.Error())

		if cfg.Stats {
			printStats(streams.Err, scanned, scanned, 0, 0, 0, time.Since(start))
		}

		return scanned, scanned, start, true, nil
	case err != nil:
		return 0, 0, start, false, fmt.Errorf("resolving files: %w", err)
	}

	excluded := scanned - len(cfg.Files)

	if cfg.Dry {
		return scanned, excluded, start, true, dryRun(cfg, streams, scanned, excluded, start)
	}

	return scanned, excluded, start, false, nil
}

// resolveFiles expands the positional patterns and applies include/exclude filtering.
// Returns the total number of files scanned before filtering.
func resolveFiles(cfg *config.Config) (int, error) {
	includes, excludes, err := loadPatterns(cfg)
	if err != nil {
		return 0, err
	}

	if cfg.Mode.Decrypts() && len(includes) == 0 {
		includes = append(includes, "*"+cfg.Suffixes.Encrypt)
	}

	opts := filter.MatchOptions{IgnoreCase: cfg.IgnoreCase}

	flt, err := filter.NewFilter(includes, excludes, opts)
	if err != nil {
		return 0, fmt.Errorf("building filter: %w", err)
	}

	files, scanned, err := filter.Resolve(cfg.Files, flt, opts)
	if err != nil {
		return scanned, err //nolint:wrapcheck // ErrNoMatches is inspected by the caller
	}

	cfg.Files = files

	return scanned, nil
}

// loadPatterns merges CLI and file-based include/exclude patterns.
func loadPatterns(cfg *config.Config) (includes, excludes []string, err error) {
	includes = append(includes, cfg.Include...)
	excludes = append(excludes, cfg.Exclude...)

	if cfg.IncludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.IncludeFrom)
		if err != nil {
			return nil, nil, fmt.Errorf("loading include patterns: %w", err)
		}

		includes = append(includes, patterns...)
	}

	if cfg.ExcludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.ExcludeFrom)
		if err != nil {
			return nil, nil, fmt.Errorf("loading exclude patterns: %w", err)
		}

		excludes = append(excludes, patterns...)
	}

	return includes, excludes, nil
}

// dryRun previews what would be processed without reading or writing any file.
//
//nolint:unparam // signature kept for consistency with Run callers
func dryRun(cfg *config.Config, streams Streams, scanned, excluded int, start time.Time) error {
	var totalSize int64

	for _, file := range cfg.Files {
		if !cfg.Quiet {
			if cfg.Mode == config.ModeGrep {
				fmt.Fprintf(streams.Out, "Would search %q\n", file)
			} else {
				fmt.Fprintf(streams.Out, "Would process %q -> %q\n", file, encryption.OutputPath(file, cfg))
			}
		}

		if cfg.Stats {
			if info, err := os.Stat(file); err == nil {
				totalSize += info.Size()
			}
		}
	}

	if cfg.Stats {
		printStats(streams.Err, scanned, excluded, len(cfg.Files), 0, totalSize, time.Since(start))
	}

	return nil
}

func printStats(w io.Writer, scanned, excluded, processed, errored int, totalSize int64, duration time.Duration) {
	fmt.Fprintf(w, "\nStats\n")
	fmt.Fprintf(w, "  Scanned:   %d\n", scanned)
	fmt.Fprintf(w, "  Excluded:  %d\n", excluded)
	fmt.Fprintf(w, "  Processed: %d\n", processed)
	fmt.Fprintf(w, "  Errors:    %d\n", errored)
	//nolint:gosec // totalSize is always non-negative (sum of file sizes)
	fmt.Fprintf(w, "  Size:      %s\n", humanize.IBytes(uint64(max(0, totalSize))))
	fmt.Fprintf(w, "  Duration:  %s\n", duration.Round(time.Millisecond))
}
