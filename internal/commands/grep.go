package commands

import (
	"github.com/spf13/cobra"

	"github.com/tomerhc/broken/internal/config"
	"github.com/tomerhc/broken/internal/logic"
)

// NewGrepCommand creates a new cobra command for the grep subcommand.
func NewGrepCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grep [flags] pattern [paths/patterns...]",
		Short: "Search encrypted files without writing plaintext",
		Long: `Decrypt files in memory and print the lines matching a regular expression,
prefixed with the file they were found in.`,
		Args: minimumArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Pattern = args[0]

			return preRun(cfg, config.ModeGrep)(cmd, args[1:])
		},
		RunE: run(cfg, logic.Run),
	}

	addWindowFlags(cmd)

	return cmd
}
