package encryption

import (
	"slices"
	"time"
)

// Result represents the outcome of processing a single file.
type Result struct {
	// Input file path
	Input string

	// Output file path, empty for searches
	Output string

	// Output file size in bytes
	OutputSize int64

	// Number of cipher blocks processed
	Blocks int

	// Matching lines, for searches
	Matches []string

	// Wall time spent on the file
	Elapsed time.Duration

	// Any error that occurred during processing
	Error error
}

// Report collects the outcome of every file in a batch, keyed by input path.
type Report struct {
	Results   map[string]Result
	Processed int
	Errored   int
	TotalSize int64
}

func newReport(n int) *Report {
	return &Report{Results: make(map[string]Result, n)}
}

func (r *Report) add(res Result) {
	r.Results[res.Input] = res

	if res.Error != nil {
		r.Errored++

		return
	}

	r.Processed++
	r.TotalSize += res.OutputSize
}

// Failed returns the sorted paths of the files that failed.
func (r *Report) Failed() []string {
	var failed []string

	for path, res := range r.Results {
		if res.Error != nil {
			failed = append(failed, path)
		}
	}

	slices.Sort(failed)

	return failed
}
