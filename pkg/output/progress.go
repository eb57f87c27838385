package output

import (
	"io"

	"github.com/cheggaaa/pb/v3"
)

// progressTemplate shows a running count of deep comparisons with
// elapsed time; the total is unknown upfront so no bar is drawn
const progressTemplate = `{{string . "prefix"}} {{counters . }} {{etime . }}`

// Progress renders a live counter of deep file comparisons while a
// closure build walks the tree. Increment is safe for concurrent use
// by parallel builders.
type Progress struct {
	bar *pb.ProgressBar
}

// NewProgress creates a progress counter writing to out
func NewProgress(out io.Writer, prefix string) *Progress {
	bar := pb.New(0)
	bar.SetWriter(out)
	bar.SetTemplateString(progressTemplate)
	bar.Set("prefix", prefix)

	return &Progress{bar: bar}
}

// Start begins rendering
func (p *Progress) Start() {
	p.bar.Start()
}

// Increment counts one deep comparison
func (p *Progress) Increment() {
	p.bar.Increment()
}

// Finish stops rendering
func (p *Progress) Finish() {
	p.bar.Finish()
}
