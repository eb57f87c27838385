package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dirdiff/pkg/compare"
	"github.com/sdejongh/dirdiff/pkg/dircmp"
	"github.com/sdejongh/dirdiff/pkg/logging"
	"github.com/sdejongh/dirdiff/pkg/output"
	"github.com/sdejongh/dirdiff/pkg/ratelimit"
	"github.com/sdejongh/dirdiff/pkg/storage"
)

// NewDiffCommand creates the diff command
func NewDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff LEFT RIGHT",
		Short: "Compare two directory trees",
		Long: `Compare two directories and report, per level, which entries exist
only on one side, which files are identical, which differ, which could
not be compared, and which common names are subdirectories.`,
		Args: cobra.ExactArgs(2),
		RunE: runDiff,
	}

	cmd.Flags().BoolVarP(&diffFlags.Recursive, "recursive", "r", false, "recurse into common subdirectories")
	cmd.Flags().BoolVar(&diffFlags.Partial, "partial", false, "report one level of common subdirectories without recursing")
	cmd.Flags().StringVarP(&diffFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&diffFlags.Report, "report", "", "write the report to a file as well")
	addCompareFlags(cmd)

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
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

	reports, err := collectReports(ctx, r, comparator, files)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	formatter := output.New(r.Cfg.Output.Format, r.ID)
	if !r.Cfg.Output.Quiet {
		if err := formatter.Write(os.Stdout, reports); err != nil {
			return err
		}
	}

	if diffFlags.Report != "" {
		if err := writeReportFile(formatter, reports, diffFlags.Report); err != nil {
			return fmt.Errorf("failed to write report file: %w", err)
		}
	}

	return nil
}

// newComparator wires the storage backend, file comparator and
// directory comparator for a run
func newComparator(r *run, logger logging.Logger) (*dircmp.Comparator, *compare.FileComparator, storage.Backend) {
	fs := storage.NewLocal()

	files := compare.NewFileComparator(fs, nil, r.Cfg.Performance.BufferSize)
	if limit := r.Cfg.Performance.BandwidthLimit; limit > 0 {
		files.SetLimiter(ratelimit.NewLimiter(limit))
	}

	comparator := dircmp.New(fs, files, r.Left, r.Right, dircmp.Options{
		Hide:    r.Cfg.Compare.Hide,
		Ignore:  r.Cfg.Compare.Ignore,
		Shallow: r.Cfg.Compare.Shallow,
		Logger:  logger,
	})

	return comparator, files, fs
}

// collectReports builds the requested closure and gathers its reports
func collectReports(ctx context.Context, r *run, comparator *dircmp.Comparator, files *compare.FileComparator) ([]*dircmp.LevelReport, error) {
	var progress *output.Progress
	if r.Cfg.Output.Progress {
		progress = output.NewProgress(os.Stderr, "comparing")
		files.SetDeepCallback(func(string) { progress.Increment() })
		progress.Start()
		defer progress.Finish()
	}

	switch {
	case diffFlags.Recursive:
		if err := comparator.BuildClosureParallel(ctx, r.Cfg.Performance.MaxWorkers); err != nil {
			return nil, err
		}
		return comparator.ReportFullClosure(ctx)
	case diffFlags.Partial:
		return comparator.ReportPartialClosure(ctx)
	default:
		report, err := comparator.Report(ctx)
		if err != nil {
			return nil, err
		}
		return []*dircmp.LevelReport{report}, nil
	}
}

// writeReportFile renders the reports into a file
func writeReportFile(formatter output.Formatter, reports []*dircmp.LevelReport, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return formatter.Write(file, reports)
}
