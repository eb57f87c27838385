package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sdejongh/dirdiff/pkg/dircmp"
)

// JSONFormatter renders reports as a single JSON document for
// automation and scripting
type JSONFormatter struct {
	runID string
}

// JSONReport is the top-level JSON output document
type JSONReport struct {
	RunID     string                `json:"run_id,omitempty"`
	Generated time.Time             `json:"generated"`
	Levels    []*dircmp.LevelReport `json:"levels"`
}

// NewJSONFormatter creates a new JSON formatter. The run ID is
// attached to the document so output can be correlated with logs.
func NewJSONFormatter(runID string) *JSONFormatter {
	return &JSONFormatter{runID: runID}
}

// Write renders all level reports as one document
func (f *JSONFormatter) Write(w io.Writer, reports []*dircmp.LevelReport) error {
	doc := JSONReport{
		RunID:     f.runID,
		Generated: time.Now().UTC(),
		Levels:    reports,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
