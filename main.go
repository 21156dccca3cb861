// Command broken encrypts, decrypts and searches files with a counter-block Feistel cipher.
package main

import (
	"fmt"
	"os"

	"github.com/tomerhc/broken/internal/commands"
	"github.com/tomerhc/broken/internal/config"
)

// Global variable for CI stamping.
var version = "unknown - unofficial & generated by unknown"

const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	var cfg config.Config

	root := commands.NewRootCommand(&cfg, version)

	if err := root.Execute(); err != nil {
		if commands.IsExit(err) {
			return
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		if commands.IsUsage(err) {
			fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", root.CommandPath())
			os.Exit(exitUsage)
		}

		os.Exit(exitFailure)
	}
}
