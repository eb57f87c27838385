package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dirdiff/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "dirdiff",
		Short: "Recursive directory tree comparison utility",
		Long: `dirdiff recursively compares two directory trees and reports, per
directory level, which entries exist only on one side, which files are
identical, which differ, and which could not be compared. It can also
record one-sided entries into a persisted patch manifest across runs.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(cli.NewDiffCommand())
	rootCmd.AddCommand(cli.NewPatchCommand())
	rootCmd.AddCommand(cli.NewDumpCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	return rootCmd.Execute()
}
