package commands

import (
	"runtime"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/spf13/cobra"

	"github.com/tomerhc/broken/internal/config"
	"github.com/tomerhc/broken/internal/ctr"
)

// NewRootCommand creates the root command with common configuration.
// Flags are bound to viper together with BROKEN_* environment variables.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version)

	root.Use = "broken [flags] command [flags]"
	root.Short = "Counter-block Feistel file encryption"
	root.Long = `Encrypts files with a Feistel-network block cipher run in counter mode.
Encrypted files can be decrypted whole or through a head/tail window of blocks,
and searched without writing the plaintext to disk.`
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return usageError(cobraext.UnknownSubcommandAction(cmd, args))
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()

	flags.BoolP("show", "s", false, "Show the configuration and exit")
	flags.IntP("parallel", "j", runtime.NumCPU(), "Number of parallel workers, defaults to number of CPUs")
	flags.String("granularity", config.GranularityAuto,
		"Unit of parallelism: file, block, or auto (block for a single file, file otherwise)")
	flags.BoolP("quiet", "q", false, "Suppress non-error output")
	flags.BoolP("delete", "d", false, "Delete the original file after successful encryption/decryption")
	flags.Bool("dry", false, "Show what would be processed without doing it")
	flags.Bool("stats", false, "Print a summary when done")
	flags.Bool("preserve-timestamps", false, "Carry the modification time of inputs over to outputs")
	flags.String("metrics-file", "", "Write Prometheus metrics of the run to this file")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")

	flags.StringP("key", "k", "", "Encryption key")
	flags.StringP("key-file", "f", "", "Path to a file holding the encryption key")

	flags.Int("block-size", ctr.DefaultBlockSize, "Block size in bytes, used when encrypting")
	flags.Int("rounds", ctr.DefaultRounds, "Number of Feistel rounds, used when encrypting")

	flags.String("encrypt-ext", "_enc", "Suffix to append to encrypted files")
	flags.String("decrypt-ext", "", "Suffix to append to decrypted files, after stripping the encrypted suffix")

	flags.StringSliceP("include", "i", nil, "Only process paths matching these patterns (find -path syntax)")
	flags.String("include-from", "", "Read include patterns from a JSON(C) array file")
	flags.StringSliceP("exclude", "e", nil, "Skip paths matching these patterns (find -path syntax)")
	flags.String("exclude-from", "", "Read exclude patterns from a JSON(C) array file")
	flags.Bool("ignore-case", false, "Match globs and patterns case-insensitively")

	root.AddCommand(
		NewEncryptCommand(cfg),
		NewDecryptCommand(cfg),
		NewGrepCommand(cfg),
		NewCheckCommand(cfg),
	)

	return root
}
