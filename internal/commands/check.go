package commands

import (
	"github.com/spf13/cobra"

	"github.com/tomerhc/broken/internal/config"
	"github.com/tomerhc/broken/internal/logic"
)

// NewCheckCommand creates a new cobra command for the check subcommand.
func NewCheckCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "check [flags] [paths/patterns...]",
		Short:   "Validate that include/exclude patterns match files",
		Args:    cobra.ArbitraryArgs,
		PreRunE: preRun(cfg, config.ModeCheck),
		RunE:    run(cfg, logic.RunCheck),
	}
}
