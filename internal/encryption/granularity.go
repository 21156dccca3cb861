package encryption

import "github.com/tomerhc/broken/internal/config"

// ResolveGranularity turns "auto" into "block" for a single file and "file" otherwise.
func ResolveGranularity(granularity string, files int) string {
	if granularity != config.GranularityAuto {
		return granularity
	}

	if files == 1 {
		return config.GranularityBlock
	}

	return config.GranularityFile
}

// Plan splits the parallel budget between files and blocks: file granularity runs that many files
// at once with sequential blocks, block granularity runs one file at a time with parallel blocks.
func Plan(granularity string, files, parallel int) (fileWorkers, blockWorkers int) {
	parallel = max(parallel, 1)

	if ResolveGranularity(granularity, files) == config.GranularityBlock {
		return 1, parallel
	}

	return parallel, 1
}
