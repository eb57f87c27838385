package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/sdejongh/dirdiff/pkg/dircmp"
)

// HumanFormatter renders reports in the classic line-oriented format:
// a "diff <left> <right>" header per level followed by one line per
// non-empty category
type HumanFormatter struct{}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Write renders the reports separated by blank lines
func (f *HumanFormatter) Write(w io.Writer, reports []*dircmp.LevelReport) error {
	for i, report := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := f.writeLevel(w, report); err != nil {
			return err
		}
	}
	return nil
}

func (f *HumanFormatter) writeLevel(w io.Writer, report *dircmp.LevelReport) error {
	if _, err := fmt.Fprintf(w, "diff %s %s\n", report.Left, report.Right); err != nil {
		return err
	}

	lines := []struct {
		label string
		names []string
	}{
		{"Only in " + report.Left, report.LeftOnly},
		{"Only in " + report.Right, report.RightOnly},
		{"Identical files", report.SameFiles},
		{"Differing files", report.DiffFiles},
		{"Trouble with common files", report.FunnyFiles},
		{"Common subdirectories", report.CommonDirs},
		{"Common funny cases", report.CommonFunny},
	}

	for _, line := range lines {
		if len(line.names) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s : %s\n", line.label, strings.Join(line.names, " ")); err != nil {
			return err
		}
	}

	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}
