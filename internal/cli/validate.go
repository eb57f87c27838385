package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sdejongh/dirdiff/internal/platform"
	"github.com/sdejongh/dirdiff/pkg/config"
	"github.com/sdejongh/dirdiff/pkg/logging"
)

// run describes one comparison invocation
type run struct {
	ID    string
	Left  string
	Right string
	Cfg   *config.Config
}

// newRun validates the directory pair, loads configuration and
// assigns the run ID
func newRun(left, right string) (*run, error) {
	if err := validateDirPair(left, right); err != nil {
		return nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagsToConfig(cfg)

	return &run{
		ID:    uuid.New().String(),
		Left:  left,
		Right: right,
		Cfg:   cfg,
	}, nil
}

// validateDirPair checks that both paths are existing directories and
// are not the same directory
func validateDirPair(left, right string) error {
	for _, path := range []string{left, right} {
		if err := platform.ValidatePath(path); err != nil {
			return err
		}

		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s", path)
		}
		if err != nil {
			return fmt.Errorf("failed to access path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("path is not a directory: %s", path)
		}
	}

	leftAbs, err := filepath.Abs(left)
	if err != nil {
		return fmt.Errorf("failed to resolve left path: %w", err)
	}
	rightAbs, err := filepath.Abs(right)
	if err != nil {
		return fmt.Errorf("failed to resolve right path: %w", err)
	}
	if leftAbs == rightAbs {
		return fmt.Errorf("left and right cannot be the same: %s", leftAbs)
	}

	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config) {
	if diffFlags.Shallow {
		cfg.Compare.Shallow = true
	}
	if len(diffFlags.Ignore) > 0 {
		cfg.Compare.Ignore = diffFlags.Ignore
	}
	if len(diffFlags.Hide) > 0 {
		cfg.Compare.Hide = diffFlags.Hide
	}
	if diffFlags.Workers > 0 {
		cfg.Performance.MaxWorkers = diffFlags.Workers
	}
	if diffFlags.Output != "" {
		cfg.Output.Format = diffFlags.Output
	}
	if diffFlags.Manifest != "" {
		cfg.Manifest.Path = diffFlags.Manifest
	}

	if diffFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = diffFlags.LogFile
	}
	if diffFlags.LogFormat != "" {
		cfg.Logging.Format = diffFlags.LogFormat
	}
	if diffFlags.LogLevel != "" {
		cfg.Logging.Level = diffFlags.LogLevel
	}

	if globalFlags.Verbose {
		cfg.Logging.Enabled = true
		cfg.Logging.Level = "debug"
		cfg.Output.Progress = true
	}
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}
}

// newLogger builds the logger the configuration asks for
func newLogger(r *run) (logging.Logger, error) {
	if !r.Cfg.Logging.Enabled {
		return logging.NewNullLogger(), nil
	}

	logCfg := logging.WriterLoggerConfig{
		Format: logging.Format(r.Cfg.Logging.Format),
		Level:  logging.ParseLevel(r.Cfg.Logging.Level),
	}

	var logger logging.Logger
	if r.Cfg.Logging.File != "" {
		fileLogger, err := logging.NewFileLogger(r.Cfg.Logging.File, logCfg)
		if err != nil {
			return nil, err
		}
		logger = fileLogger
	} else {
		logger = logging.NewWriterLogger(os.Stderr, logCfg)
	}

	return logger.WithFields(logging.Fields{"run_id": r.ID}), nil
}
