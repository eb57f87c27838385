package dircmp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sdejongh/dirdiff/pkg/compare"
	"github.com/sdejongh/dirdiff/pkg/storage"
)

// countingBackend wraps a backend and counts listing and stat calls
type countingBackend struct {
	storage.Backend
	readDirCalls int
	statCalls    int
}

func (b *countingBackend) ReadDir(ctx context.Context, path string) ([]storage.FileInfo, error) {
	b.readDirCalls++
	return b.Backend.ReadDir(ctx, path)
}

func (b *countingBackend) Stat(ctx context.Context, path string) (*storage.FileInfo, error) {
	b.statCalls++
	return b.Backend.Stat(ctx, path)
}

// TestHelper provides utilities for directory comparator tests
type TestHelper struct {
	t       *testing.T
	tempDir string
	fs      *countingBackend
}

// NewTestHelper creates a new test helper with a temporary directory
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "dirdiff-dircmp-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	return &TestHelper{
		t:       t,
		tempDir: tempDir,
		fs:      &countingBackend{Backend: storage.NewLocal()},
	}
}

// Cleanup removes all temporary files
func (h *TestHelper) Cleanup() {
	os.RemoveAll(h.tempDir)
}

// CreateFile creates a file (with parents) under the temp dir
func (h *TestHelper) CreateFile(name string, content []byte) string {
	h.t.Helper()
	path := filepath.Join(h.tempDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		h.t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		h.t.Fatalf("failed to create file: %v", err)
	}
	return path
}

// CreateDir creates a directory under the temp dir
func (h *TestHelper) CreateDir(name string) string {
	h.t.Helper()
	path := filepath.Join(h.tempDir, name)
	if err := os.MkdirAll(path, 0755); err != nil {
		h.t.Fatalf("failed to create dir: %v", err)
	}
	return path
}

// NewComparator creates a comparator over two subdirectories of the
// temp dir
func (h *TestHelper) NewComparator(left, right string, opts Options) *Comparator {
	files := compare.NewFileComparator(h.fs, compare.NewCache(), compare.DefaultBufferSize)
	return New(h.fs, files, filepath.Join(h.tempDir, left), filepath.Join(h.tempDir, right), opts)
}

// buildScenario creates the canonical two-tree fixture used by most
// tests:
//
//	left/               right/
//	  same.txt  "x"       same.txt  "x"
//	  diff.txt  "a"       diff.txt  "b"
//	  only_l.txt          only_r.txt
//	  sub/                sub/
//	    nested.txt "n"      nested.txt "n"
//	  clash               clash/        (file vs dir)
func (h *TestHelper) buildScenario() {
	h.t.Helper()
	h.CreateDir("left")
	h.CreateDir("right")
	h.CreateFile("left/same.txt", []byte("x"))
	h.CreateFile("right/same.txt", []byte("x"))
	h.CreateFile("left/diff.txt", []byte("a"))
	h.CreateFile("right/diff.txt", []byte("b"))
	h.CreateFile("left/only_l.txt", []byte("l"))
	h.CreateFile("right/only_r.txt", []byte("r"))
	h.CreateFile("left/sub/nested.txt", []byte("n"))
	h.CreateFile("right/sub/nested.txt", []byte("n"))
	h.CreateFile("left/clash", []byte("a file"))
	h.CreateDir("right/clash")
}

// mustStrings fails the test unless got equals want
func mustStrings(t *testing.T, label string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", label, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%s = %v, want %v", label, got, want)
		}
	}
}

// TestPartition tests name partition into common and one-sided sets
func TestPartition(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	ctx := context.Background()
	h.buildScenario()
	c := h.NewComparator("left", "right", Options{})

	common, err := c.Common(ctx)
	if err != nil {
		t.Fatalf("Common() error = %v", err)
	}
	mustStrings(t, "Common()", common, []string{"clash", "diff.txt", "same.txt", "sub"})

	leftOnly, err := c.LeftOnly(ctx)
	if err != nil {
		t.Fatalf("LeftOnly() error = %v", err)
	}
	mustStrings(t, "LeftOnly()", leftOnly, []string{"only_l.txt"})

	rightOnly, err := c.RightOnly(ctx)
	if err != nil {
		t.Fatalf("RightOnly() error = %v", err)
	}
	mustStrings(t, "RightOnly()", rightOnly, []string{"only_r.txt"})
}

// TestClassification tests kind classification of common names
func TestClassification(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	ctx := context.Background()
	h.buildScenario()
	c := h.NewComparator("left", "right", Options{})

	dirs, err := c.CommonDirs(ctx)
	if err != nil {
		t.Fatalf("CommonDirs() error = %v", err)
	}
	mustStrings(t, "CommonDirs()", dirs, []string{"sub"})

	files, err := c.CommonFiles(ctx)
	if err != nil {
		t.Fatalf("CommonFiles() error = %v", err)
	}
	mustStrings(t, "CommonFiles()", files, []string{"diff.txt", "same.txt"})

	// File on one side, directory on the other: kind mismatch
	funny, err := c.CommonFunny(ctx)
	if err != nil {
		t.Fatalf("CommonFunny() error = %v", err)
	}
	mustStrings(t, "CommonFunny()", funny, []string{"clash"})
}

// TestFileComparison tests the same/diff partition of common files
func TestFileComparison(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	ctx := context.Background()
	h.buildScenario()
	c := h.NewComparator("left", "right", Options{})

	same, err := c.SameFiles(ctx)
	if err != nil {
		t.Fatalf("SameFiles() error = %v", err)
	}
	mustStrings(t, "SameFiles()", same, []string{"same.txt"})

	diff, err := c.DiffFiles(ctx)
	if err != nil {
		t.Fatalf("DiffFiles() error = %v", err)
	}
	mustStrings(t, "DiffFiles()", diff, []string{"diff.txt"})

	funny, err := c.FunnyFiles(ctx)
	if err != nil {
		t.Fatalf("FunnyFiles() error = %v", err)
	}
	mustStrings(t, "FunnyFiles()", funny, nil)
}

// TestHideIgnore tests listing filters and their inheritance
func TestHideIgnore(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	ctx := context.Background()
	h.CreateFile("left/keep.txt", []byte("k"))
	h.CreateFile("right/keep.txt", []byte("k"))
	h.CreateFile("left/CVS/entry", []byte("vc"))
	h.CreateFile("right/CVS/entry", []byte("vc"))
	h.CreateFile("left/secret.txt", []byte("s"))
	h.CreateFile("right/secret.txt", []byte("s"))
	h.CreateFile("left/sub/keep.txt", []byte("k"))
	h.CreateFile("right/sub/keep.txt", []byte("k"))
	h.CreateFile("left/sub/secret.txt", []byte("s"))
	h.CreateFile("right/sub/secret.txt", []byte("s"))

	t.Run("Defaults", func(t *testing.T) {
		c := h.NewComparator("left", "right", Options{})
		left, err := c.LeftList(ctx)
		if err != nil {
			t.Fatalf("LeftList() error = %v", err)
		}
		mustStrings(t, "LeftList()", left, []string{"keep.txt", "secret.txt", "sub"})
	})

	t.Run("CustomHide", func(t *testing.T) {
		c := h.NewComparator("left", "right", Options{
			Hide: []string{".", "..", "secret.txt"},
		})
		left, err := c.LeftList(ctx)
		if err != nil {
			t.Fatalf("LeftList() error = %v", err)
		}
		mustStrings(t, "LeftList()", left, []string{"CVS", "keep.txt", "sub"})
	})

	t.Run("InheritedByChildren", func(t *testing.T) {
		c := h.NewComparator("left", "right", Options{
			Ignore: []string{"CVS", "secret.txt"},
		})
		subdirs, err := c.Subdirs(ctx)
		if err != nil {
			t.Fatalf("Subdirs() error = %v", err)
		}
		child, ok := subdirs["sub"]
		if !ok {
			t.Fatalf("Subdirs() missing 'sub', got %v", subdirs)
		}
		childLeft, err := child.LeftList(ctx)
		if err != nil {
			t.Fatalf("child LeftList() error = %v", err)
		}
		mustStrings(t, "child LeftList()", childLeft, []string{"keep.txt"})
	})
}

// TestLazyPhases verifies phases run at most once and accessors never
// redo filesystem work
func TestLazyPhases(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	ctx := context.Background()
	h.buildScenario()
	c := h.NewComparator("left", "right", Options{})

	if h.fs.readDirCalls != 0 {
		t.Fatalf("readDirCalls = %d before first access, want 0", h.fs.readDirCalls)
	}

	if _, err := c.Common(ctx); err != nil {
		t.Fatalf("Common() error = %v", err)
	}
	listings := h.fs.readDirCalls
	if listings != 2 {
		t.Fatalf("readDirCalls = %d after partition, want 2", listings)
	}

	if _, err := c.SameFiles(ctx); err != nil {
		t.Fatalf("SameFiles() error = %v", err)
	}
	stats := h.fs.statCalls

	// Repeat every accessor; no further filesystem traffic expected.
	if _, err := c.Common(ctx); err != nil {
		t.Fatalf("Common() error = %v", err)
	}
	if _, err := c.CommonFiles(ctx); err != nil {
		t.Fatalf("CommonFiles() error = %v", err)
	}
	if _, err := c.SameFiles(ctx); err != nil {
		t.Fatalf("SameFiles() error = %v", err)
	}

	if h.fs.readDirCalls != listings {
		t.Errorf("readDirCalls = %d after repeats, want %d", h.fs.readDirCalls, listings)
	}
	if h.fs.statCalls != stats {
		t.Errorf("statCalls = %d after repeats, want %d", h.fs.statCalls, stats)
	}
}

// TestListingFailure verifies a structural listing failure propagates
// from every dependent accessor without retrying
func TestListingFailure(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	ctx := context.Background()
	h.CreateDir("left")
	c := h.NewComparator("left", "missing", Options{})

	if _, err := c.Common(ctx); err == nil {
		t.Fatalf("Common() error = nil for missing directory")
	}
	calls := h.fs.readDirCalls

	if _, err := c.SameFiles(ctx); err == nil {
		t.Errorf("SameFiles() error = nil for missing directory")
	}
	if _, err := c.Subdirs(ctx); err == nil {
		t.Errorf("Subdirs() error = nil for missing directory")
	}
	if h.fs.readDirCalls != calls {
		t.Errorf("readDirCalls = %d after failed repeats, want %d", h.fs.readDirCalls, calls)
	}
}

// TestClosure tests full-tree materialization and traversal
func TestClosure(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	ctx := context.Background()
	h.buildScenario()
	h.CreateFile("left/sub/deep/leaf.txt", []byte("d"))
	h.CreateFile("right/sub/deep/leaf.txt", []byte("d"))

	collect := func(c *Comparator) []string {
		t.Helper()
		var visited []string
		err := c.Walk(ctx, func(node *Comparator) error {
			visited = append(visited, node.Left)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		return visited
	}

	want := []string{
		filepath.Join(h.tempDir, "left"),
		filepath.Join(h.tempDir, "left", "sub"),
		filepath.Join(h.tempDir, "left", "sub", "deep"),
	}

	t.Run("Sequential", func(t *testing.T) {
		c := h.NewComparator("left", "right", Options{})
		if err := c.BuildClosure(ctx); err != nil {
			t.Fatalf("BuildClosure() error = %v", err)
		}
		mustStrings(t, "visited", collect(c), want)
	})

	t.Run("Parallel", func(t *testing.T) {
		c := h.NewComparator("left", "right", Options{})
		if err := c.BuildClosureParallel(ctx, 4); err != nil {
			t.Fatalf("BuildClosureParallel() error = %v", err)
		}
		mustStrings(t, "visited", collect(c), want)
	})

	t.Run("ParallelMatchesSequential", func(t *testing.T) {
		seq := h.NewComparator("left", "right", Options{})
		if err := seq.BuildClosure(ctx); err != nil {
			t.Fatalf("BuildClosure() error = %v", err)
		}
		par := h.NewComparator("left", "right", Options{})
		if err := par.BuildClosureParallel(ctx, 8); err != nil {
			t.Fatalf("BuildClosureParallel() error = %v", err)
		}

		seqReports, err := seq.ReportFullClosure(ctx)
		if err != nil {
			t.Fatalf("ReportFullClosure() error = %v", err)
		}
		parReports, err := par.ReportFullClosure(ctx)
		if err != nil {
			t.Fatalf("ReportFullClosure() error = %v", err)
		}

		if len(seqReports) != len(parReports) {
			t.Fatalf("report counts differ: %d vs %d", len(seqReports), len(parReports))
		}
		for i := range seqReports {
			mustStrings(t, "SameFiles", parReports[i].SameFiles, seqReports[i].SameFiles)
			mustStrings(t, "DiffFiles", parReports[i].DiffFiles, seqReports[i].DiffFiles)
			mustStrings(t, "LeftOnly", parReports[i].LeftOnly, seqReports[i].LeftOnly)
			mustStrings(t, "RightOnly", parReports[i].RightOnly, seqReports[i].RightOnly)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		c := h.NewComparator("left", "right", Options{})
		if err := c.BuildClosureParallel(cancelled, 4); err == nil {
			t.Errorf("BuildClosureParallel() error = nil with cancelled context")
		}
	})
}

// TestReport tests level report assembly
func TestReport(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	ctx := context.Background()
	h.buildScenario()

	t.Run("SingleLevel", func(t *testing.T) {
		c := h.NewComparator("left", "right", Options{})
		report, err := c.Report(ctx)
		if err != nil {
			t.Fatalf("Report() error = %v", err)
		}

		if report.Left != filepath.Join(h.tempDir, "left") {
			t.Errorf("report.Left = %s", report.Left)
		}
		mustStrings(t, "LeftOnly", report.LeftOnly, []string{"only_l.txt"})
		mustStrings(t, "RightOnly", report.RightOnly, []string{"only_r.txt"})
		mustStrings(t, "SameFiles", report.SameFiles, []string{"same.txt"})
		mustStrings(t, "DiffFiles", report.DiffFiles, []string{"diff.txt"})
		mustStrings(t, "CommonDirs", report.CommonDirs, []string{"sub"})
		mustStrings(t, "CommonFunny", report.CommonFunny, []string{"clash"})
	})

	t.Run("PartialClosure", func(t *testing.T) {
		c := h.NewComparator("left", "right", Options{})
		reports, err := c.ReportPartialClosure(ctx)
		if err != nil {
			t.Fatalf("ReportPartialClosure() error = %v", err)
		}
		if len(reports) != 2 {
			t.Fatalf("len(reports) = %d, want 2 (self + sub)", len(reports))
		}
		mustStrings(t, "child SameFiles", reports[1].SameFiles, []string{"nested.txt"})
	})

	t.Run("FullClosure", func(t *testing.T) {
		h.CreateFile("left/sub/deep/leaf.txt", []byte("d"))
		h.CreateFile("right/sub/deep/leaf.txt", []byte("d"))

		c := h.NewComparator("left", "right", Options{})
		reports, err := c.ReportFullClosure(ctx)
		if err != nil {
			t.Fatalf("ReportFullClosure() error = %v", err)
		}
		if len(reports) != 3 {
			t.Fatalf("len(reports) = %d, want 3", len(reports))
		}
		if reports[2].Left != filepath.Join(h.tempDir, "left", "sub", "deep") {
			t.Errorf("deepest report.Left = %s", reports[2].Left)
		}
	})
}

// TestUnrelatedDirectories verifies the two sides need not share a
// parent or a name
func TestUnrelatedDirectories(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	ctx := context.Background()
	h.CreateFile("a/b/one.txt", []byte("1"))
	h.CreateFile("x/one.txt", []byte("1"))

	c := h.NewComparator(filepath.Join("a", "b"), "x", Options{})
	same, err := c.SameFiles(ctx)
	if err != nil {
		t.Fatalf("SameFiles() error = %v", err)
	}
	mustStrings(t, "SameFiles()", same, []string{"one.txt"})
}
