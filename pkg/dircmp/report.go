package dircmp

import (
	"context"
)

// LevelReport holds the comparison results for one directory level.
// All name lists are lexicographically sorted.
type LevelReport struct {
	Left  string `json:"left"`
	Right string `json:"right"`

	LeftOnly    []string `json:"left_only,omitempty"`
	RightOnly   []string `json:"right_only,omitempty"`
	SameFiles   []string `json:"same_files,omitempty"`
	DiffFiles   []string `json:"diff_files,omitempty"`
	FunnyFiles  []string `json:"funny_files,omitempty"`
	CommonDirs  []string `json:"common_dirs,omitempty"`
	CommonFunny []string `json:"common_funny,omitempty"`
}

// Report collects this level's results, triggering whichever phases
// haven't run yet
func (c *Comparator) Report(ctx context.Context) (*LevelReport, error) {
	if err := c.phase3(ctx); err != nil {
		return nil, err
	}

	return &LevelReport{
		Left:        c.Left,
		Right:       c.Right,
		LeftOnly:    c.leftOnly,
		RightOnly:   c.rightOnly,
		SameFiles:   c.sameFiles,
		DiffFiles:   c.diffFiles,
		FunnyFiles:  c.funnyFiles,
		CommonDirs:  c.commonDirs,
		CommonFunny: c.commonFunny,
	}, nil
}

// ReportPartialClosure collects this level's report plus one report
// per immediate common subdirectory, without recursing further
func (c *Comparator) ReportPartialClosure(ctx context.Context) ([]*LevelReport, error) {
	report, err := c.Report(ctx)
	if err != nil {
		return nil, err
	}
	reports := []*LevelReport{report}

	if err := c.phase4(ctx); err != nil {
		return nil, err
	}
	for _, child := range c.sortedSubdirs() {
		report, err := child.Report(ctx)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// ReportFullClosure collects reports for this level and every
// descendant, children in sorted name order
func (c *Comparator) ReportFullClosure(ctx context.Context) ([]*LevelReport, error) {
	var reports []*LevelReport

	err := c.Walk(ctx, func(node *Comparator) error {
		report, err := node.Report(ctx)
		if err != nil {
			return err
		}
		reports = append(reports, report)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reports, nil
}
