package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// DiffFlags holds flags shared by the diff and patch commands
type DiffFlags struct {
	Recursive bool
	Partial   bool
	Shallow   bool
	Ignore    []string
	Hide      []string
	Output    string
	Report    string
	Workers   int
	Manifest  string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var diffFlags DiffFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/dirdiff/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
}

// addCompareFlags adds the flags shared by commands that run comparisons
func addCompareFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&diffFlags.Shallow, "shallow", false, "trust metadata (kind, size, mtime) as proof of file equality")
	cmd.Flags().StringSliceVar(&diffFlags.Ignore, "ignore", nil, "names excluded from comparison (default: RCS, CVS, tags)")
	cmd.Flags().StringSliceVar(&diffFlags.Hide, "hide", nil, "names never shown in listings (default: ., ..)")
	cmd.Flags().IntVar(&diffFlags.Workers, "workers", 0, "parallel subtree builders (default: 1)")
	cmd.Flags().StringVar(&diffFlags.LogFile, "log-file", "", "log file path (empty = stderr)")
	cmd.Flags().StringVar(&diffFlags.LogFormat, "log-format", "", "log format: json, text")
	cmd.Flags().StringVar(&diffFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
}
