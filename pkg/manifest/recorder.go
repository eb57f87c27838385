package manifest

import (
	"context"

	"github.com/sdejongh/dirdiff/pkg/dircmp"
	"github.com/sdejongh/dirdiff/pkg/storage"
)

// Recorder accumulates only-left/only-right results into a manifest
// store across possibly many runs. Root names are the original
// top-level pair, not whatever subdirectory a recursive comparator
// happens to cover.
type Recorder struct {
	store   *Store
	rootOld string
	rootNew string
}

// NewRecorder creates a recorder for the given top-level pair
func NewRecorder(store *Store, left, right string) *Recorder {
	return &Recorder{
		store:   store,
		rootOld: left,
		rootNew: right,
	}
}

// Record writes this comparator's only-left/only-right entries into
// the store and persists it. The [Root] section is written once for
// the whole run; paths with no one-sided entries leave no key behind.
func (r *Recorder) Record(ctx context.Context, c *dircmp.Comparator) error {
	if err := r.store.EnsureRoot(r.rootOld, r.rootNew); err != nil {
		return err
	}

	leftOnly, err := c.LeftOnly(ctx)
	if err != nil {
		return err
	}
	rightOnly, err := c.RightOnly(ctx)
	if err != nil {
		return err
	}

	if len(leftOnly) > 0 {
		r.store.SetOnly(c.Left, leftOnly)
	}
	if len(rightOnly) > 0 {
		r.store.SetOnly(c.Right, rightOnly)
	}

	return r.store.Save()
}

// RecordClosure records this comparator and every descendant
func (r *Recorder) RecordClosure(ctx context.Context, c *dircmp.Comparator) error {
	return c.Walk(ctx, func(node *dircmp.Comparator) error {
		return r.Record(ctx, node)
	})
}

// MaterializeDiffDir (re)creates the empty output directory derived
// from the manifest's [Root] section, named "<new>-<old>". An existing
// directory of that name is removed first. The manifest must already
// exist; otherwise ErrNotFound is returned and no filesystem mutation
// occurs. Populating the directory with differing content is out of
// scope.
func MaterializeDiffDir(ctx context.Context, fs storage.Backend, manifestPath string) (string, error) {
	store, err := Load(manifestPath)
	if err != nil {
		return "", err
	}

	oldRoot, newRoot, err := store.Root()
	if err != nil {
		return "", err
	}
	diffDir := newRoot + "-" + oldRoot

	exists, err := fs.Exists(ctx, diffDir)
	if err != nil {
		return "", err
	}
	if exists {
		if err := fs.Delete(ctx, diffDir); err != nil {
			return "", err
		}
	}

	if err := fs.MkdirAll(ctx, diffDir); err != nil {
		return "", err
	}

	return diffDir, nil
}
