package commands

import (
	"github.com/spf13/cobra"

	"github.com/tomerhc/broken/internal/config"
	"github.com/tomerhc/broken/internal/logic"
)

// NewEncryptCommand creates a new cobra command for the encrypt subcommand.
func NewEncryptCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "encrypt [flags] paths/patterns...",
		Aliases: []string{"enc"},
		Short:   "Encrypt files",
		Args:    minimumArgs(1),
		PreRunE: preRun(cfg, config.ModeEncrypt),
		RunE:    run(cfg, logic.Run),
	}
}
