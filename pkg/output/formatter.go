package output

import (
	"io"

	"github.com/sdejongh/dirdiff/pkg/dircmp"
)

// Formatter defines the interface for rendering comparison reports
// Implementations include human-readable and JSON formatters
type Formatter interface {
	// Write renders one report per compared directory level
	Write(w io.Writer, reports []*dircmp.LevelReport) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for the given format name, defaulting to
// human-readable output
func New(format, runID string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter(runID)
	default:
		return NewHumanFormatter()
	}
}
