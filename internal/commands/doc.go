// Package commands provides the command-line interface for the broken tool.
//
// It implements commands for:
//   - encryption
//   - decryption
//   - searching encrypted files
//   - checking include/exclude patterns
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands

import (
	"errors"
	"fmt"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/spf13/cobra"

	"github.com/tomerhc/broken/internal/config"
	"github.com/tomerhc/broken/internal/logic"
)

// ErrUsage marks errors caused by invalid invocation rather than by processing.
var ErrUsage = errors.New("usage")

// IsUsage reports whether err stems from invalid flags, arguments or configuration.
func IsUsage(err error) bool {
	return errors.Is(err, ErrUsage) || errors.Is(err, config.ErrInvalid)
}

func usageError(err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrUsage, err)
}

// preRun returns a PreRunE handler that sets the mode, resolves positional args into cfg.Files,
// then unmarshals and validates the configuration.
// With --show the configuration is printed and cobraext.ErrExitGracefully returned.
func preRun(cfg *config.Config, mode config.Mode) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		cfg.Mode = mode

		if len(args) == 0 {
			cfg.Files = []string{"."}
		} else {
			cfg.Files = args
		}

		return cobraext.Validate(cfg, cfg)
	}
}

// IsExit reports whether err only signals an early, successful exit such as after --show.
func IsExit(err error) bool {
	return errors.Is(err, cobraext.ErrExitGracefully)
}

// streams binds a run to the command's output streams.
func streams(cmd *cobra.Command) logic.Streams {
	s := logic.DefaultStreams()
	s.Out = cmd.OutOrStdout()
	s.Err = cmd.ErrOrStderr()

	return s
}

// run runs fn against the command's streams.
func run(cfg *config.Config, fn func(*config.Config, logic.Streams) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return fn(cfg, streams(cmd))
	}
}

// minimumArgs is cobra.MinimumNArgs reporting a usage error.
func minimumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return usageError(cobra.MinimumNArgs(n)(cmd, args))
	}
}

// addWindowFlags registers --head and --tail.
func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().Int("head", 0, "Only process the first N blocks")
	cmd.Flags().Int("tail", 0, "Only process the last N blocks")
}
