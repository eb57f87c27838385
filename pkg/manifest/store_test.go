package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestHelper provides utilities for manifest tests
type TestHelper struct {
	t       *testing.T
	tempDir string
}

// NewTestHelper creates a new test helper with a temporary directory
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "dirdiff-manifest-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	return &TestHelper{t: t, tempDir: tempDir}
}

// Cleanup removes all temporary files
func (h *TestHelper) Cleanup() {
	os.RemoveAll(h.tempDir)
}

// ManifestPath returns a manifest path under the temp dir
func (h *TestHelper) ManifestPath() string {
	return filepath.Join(h.tempDir, DefaultFileName)
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

// TestOpenAndLoad tests the two entry points against a missing file
func TestOpenAndLoad(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	t.Run("OpenMissingStartsEmpty", func(t *testing.T) {
		store, err := Open(h.ManifestPath())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if store.HasRoot() {
			t.Errorf("fresh store HasRoot() = true")
		}
		if paths := store.OnlyPaths(); len(paths) != 0 {
			t.Errorf("fresh store OnlyPaths() = %v, want empty", paths)
		}
	})

	t.Run("LoadMissingIsNotFound", func(t *testing.T) {
		_, err := Load(filepath.Join(h.tempDir, "absent.ini"))
		if err == nil {
			t.Fatalf("Load() error = nil for missing file")
		}
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Load() error = %v, want ErrNotFound", err)
		}
	})
}

// TestRoot tests the write-once [Root] section
func TestRoot(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	store, err := Open(h.ManifestPath())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, _, err := store.Root(); err == nil {
		t.Errorf("Root() error = nil before EnsureRoot")
	}

	if err := store.EnsureRoot("v1", "v2"); err != nil {
		t.Fatalf("EnsureRoot() error = %v", err)
	}
	oldRoot, newRoot, err := store.Root()
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	if oldRoot != "v1" || newRoot != "v2" {
		t.Errorf("Root() = (%s, %s), want (v1, v2)", oldRoot, newRoot)
	}

	// A second run against other trees must not overwrite the roots.
	if err := store.EnsureRoot("other1", "other2"); err != nil {
		t.Fatalf("EnsureRoot() error = %v", err)
	}
	oldRoot, newRoot, err = store.Root()
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	if oldRoot != "v1" || newRoot != "v2" {
		t.Errorf("Root() = (%s, %s) after repeat, want (v1, v2)", oldRoot, newRoot)
	}
}

// TestOnly tests per-path one-sided entry storage
func TestOnly(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	store, err := Open(h.ManifestPath())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	t.Run("SortedOnWrite", func(t *testing.T) {
		store.SetOnly("v1/sub", []string{"zeta.txt", "alpha.txt"})
		mustStrings(t, "Only()", store.Only("v1/sub"), []string{"alpha.txt", "zeta.txt"})
	})

	t.Run("OverwriteSamePath", func(t *testing.T) {
		store.SetOnly("v1/sub", []string{"beta.txt"})
		mustStrings(t, "Only()", store.Only("v1/sub"), []string{"beta.txt"})
	})

	t.Run("UnknownPath", func(t *testing.T) {
		if names := store.Only("nowhere"); names != nil {
			t.Errorf("Only(nowhere) = %v, want nil", names)
		}
	})

	t.Run("OnlyPathsSorted", func(t *testing.T) {
		store.SetOnly("v2/deep", []string{"x"})
		store.SetOnly("v1/a", []string{"y"})
		mustStrings(t, "OnlyPaths()", store.OnlyPaths(),
			[]string{"v1/a", "v1/sub", "v2/deep"})
	})
}

// TestPersistence tests save/reload round trips and cross-run merging
func TestPersistence(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()
	path := h.ManifestPath()

	// First run records one path.
	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := first.EnsureRoot("old-tree", "new-tree"); err != nil {
		t.Fatalf("EnsureRoot() error = %v", err)
	}
	first.SetOnly("old-tree", []string{"removed.txt"})
	if err := first.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Second run reopens, sees the first run's data and adds its own.
	second, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !second.HasRoot() {
		t.Fatalf("reloaded store HasRoot() = false")
	}
	mustStrings(t, "Only()", second.Only("old-tree"), []string{"removed.txt"})

	second.SetOnly("new-tree", []string{"added.txt"})
	if err := second.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Third run sees both.
	third, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	mustStrings(t, "OnlyPaths()", third.OnlyPaths(), []string{"new-tree", "old-tree"})
	mustStrings(t, "Only(old)", third.Only("old-tree"), []string{"removed.txt"})
	mustStrings(t, "Only(new)", third.Only("new-tree"), []string{"added.txt"})
}
