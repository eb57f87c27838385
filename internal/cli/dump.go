package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dirdiff/pkg/manifest"
	"github.com/sdejongh/dirdiff/pkg/storage"
)

// NewDumpCommand creates the dump command
func NewDumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Create the empty diff output directory from the manifest",
		Long: `Derive the output directory name "<new>-<old>" from the manifest's
[Root] section, remove any existing directory of that name and recreate
it empty. Requires a manifest previously written by the patch command;
populating the directory with differing content is not performed.`,
		Args: cobra.NoArgs,
		RunE: runDump,
	}

	cmd.Flags().StringVar(&diffFlags.Manifest, "manifest", "", "manifest file path (default: "+manifest.DefaultFileName+")")

	return cmd
}

func runDump(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagsToConfig(cfg)

	fs := storage.NewLocal()
	defer fs.Close()

	diffDir, err := manifest.MaterializeDiffDir(ctx, fs, cfg.Manifest.Path)
	if errors.Is(err, manifest.ErrNotFound) {
		return fmt.Errorf("manifest %s does not exist; run 'dirdiff patch' first", cfg.Manifest.Path)
	}
	if err != nil {
		return err
	}

	if !cfg.Output.Quiet {
		fmt.Printf("Created empty diff directory: %s\n", diffDir)
	}

	return nil
}
