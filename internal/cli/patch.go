package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dirdiff/pkg/logging"
	"github.com/sdejongh/dirdiff/pkg/manifest"
	"github.com/sdejongh/dirdiff/pkg/output"
)

// NewPatchCommand creates the patch command
func NewPatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch LEFT RIGHT",
		Short: "Record only-left/only-right entries into the patch manifest",
		Long: `Compare two directories recursively and record every entry present
on only one side into the patch manifest. Recording merges with
whatever previous runs recorded: the [Root] section is written once
and existing [Only] entries for other paths are preserved.`,
		Args: cobra.ExactArgs(2),
		RunE: runPatch,
	}

	cmd.Flags().StringVarP(&diffFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&diffFlags.Manifest, "manifest", "", "manifest file path (default: "+manifest.DefaultFileName+")")
	addCompareFlags(cmd)

	return cmd
}

func runPatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	r, err := newRun(args[0], args[1])
	if err != nil {
		return err
	}

	logger, err := newLogger(r)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	comparator, files, fs := newComparator(r, logger)
	defer fs.Close()

	store, err := manifest.Open(r.Cfg.Manifest.Path)
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}

	diffFlags.Recursive = true
	reports, err := collectReports(ctx, r, comparator, files)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	recorder := manifest.NewRecorder(store, r.Left, r.Right)
	if err := recorder.RecordClosure(ctx, comparator); err != nil {
		return fmt.Errorf("failed to record manifest: %w", err)
	}

	logger.Info("manifest recorded", logging.Fields{
		"manifest": r.Cfg.Manifest.Path,
		"levels":   len(reports),
	})

	if !r.Cfg.Output.Quiet {
		formatter := output.New(r.Cfg.Output.Format, r.ID)
		if err := formatter.Write(os.Stdout, reports); err != nil {
			return err
		}
		fmt.Printf("\nManifest written to %s\n", r.Cfg.Manifest.Path)
	}

	return nil
}
