package commands

import (
	"github.com/spf13/cobra"

	"github.com/tomerhc/broken/internal/config"
	"github.com/tomerhc/broken/internal/logic"
)

// NewDecryptCommand creates a new cobra command for the decrypt subcommand.
func NewDecryptCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decrypt [flags] [paths/patterns...]",
		Aliases: []string{"dec"},
		Short:   "Decrypt files",
		Long: `Decrypt files, by default every file carrying the encrypted suffix below the current directory.
With --head or --tail only that many blocks are read and decrypted.`,
		Args:    cobra.ArbitraryArgs,
		PreRunE: preRun(cfg, config.ModeDecrypt),
		RunE:    run(cfg, logic.Run),
	}

	addWindowFlags(cmd)
	cmd.Flags().Bool("trim", false, "Strip trailing NUL padding from the decrypted output")

	return cmd
}
