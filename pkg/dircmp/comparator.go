package dircmp

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/sdejongh/dirdiff/internal/platform"
	"github.com/sdejongh/dirdiff/pkg/compare"
	"github.com/sdejongh/dirdiff/pkg/logging"
	"github.com/sdejongh/dirdiff/pkg/storage"
)

// DefaultHide returns the names never shown in listings
func DefaultHide() []string {
	return []string{".", ".."}
}

// DefaultIgnore returns the names excluded from comparison
func DefaultIgnore() []string {
	return []string{"RCS", "CVS", "tags"}
}

// Options configures a Comparator. Hide and Ignore are inherited
// unchanged by child comparators.
type Options struct {
	// Hide lists names never shown in listings (defaults to "." and "..")
	Hide []string
	// Ignore lists names excluded from comparison (defaults to
	// version-control metadata directories)
	Ignore []string
	// Shallow trusts a full signature match as proof of file equality
	Shallow bool
	// Logger receives diagnostics; nil disables logging
	Logger logging.Logger
}

// Comparator compares one level of two directory trees.
//
// All derived attributes are computed lazily in phases: listing,
// name partition, kind classification, file comparison and child
// construction. Each phase runs at most once per object; accessing an
// attribute triggers its phase and, transitively, its prerequisites.
// A Comparator is not safe for concurrent use; closure builders
// synchronize externally.
type Comparator struct {
	// Left and Right are the two directory paths under comparison.
	// They need not be siblings or related in any way.
	Left  string
	Right string

	hide    []string
	ignore  []string
	skip    map[string]struct{}
	shallow bool

	fs     storage.Backend
	files  *compare.FileComparator
	logger logging.Logger

	// phase 0: filtered, sorted listings
	listed    bool
	listErr   error
	leftList  []string
	rightList []string

	// phase 1: case-normalized name partition
	partitioned bool
	common      []string
	leftOnly    []string
	rightOnly   []string

	// phase 2: kind classification of common names
	classified  bool
	commonDirs  []string
	commonFiles []string
	commonFunny []string

	// phase 3: file comparison over common files
	compared   bool
	sameFiles  []string
	diffFiles  []string
	funnyFiles []string

	// phase 4: child comparators for common subdirectories
	descended bool
	subdirs   map[string]*Comparator
}

// New creates a comparator for the (left, right) directory pair
func New(fs storage.Backend, files *compare.FileComparator, left, right string, opts Options) *Comparator {
	hide := opts.Hide
	if hide == nil {
		hide = DefaultHide()
	}
	ignore := opts.Ignore
	if ignore == nil {
		ignore = DefaultIgnore()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	skip := make(map[string]struct{}, len(hide)+len(ignore))
	for _, name := range hide {
		skip[name] = struct{}{}
	}
	for _, name := range ignore {
		skip[name] = struct{}{}
	}

	return &Comparator{
		Left:    left,
		Right:   right,
		hide:    hide,
		ignore:  ignore,
		skip:    skip,
		shallow: opts.Shallow,
		fs:      fs,
		files:   files,
		logger:  logger,
	}
}

// Hide returns the hidden-name set
func (c *Comparator) Hide() []string {
	return c.hide
}

// Ignore returns the ignored-name set
func (c *Comparator) Ignore() []string {
	return c.ignore
}

// phase0 lists both directories, removes hidden and ignored names and
// sorts the remainder. A listing failure here is structural and is
// returned from every dependent accessor without retrying.
func (c *Comparator) phase0(ctx context.Context) error {
	if c.listed {
		return c.listErr
	}
	c.listed = true

	left, err := c.listNames(ctx, c.Left)
	if err != nil {
		c.listErr = err
		return c.listErr
	}
	right, err := c.listNames(ctx, c.Right)
	if err != nil {
		c.listErr = err
		return c.listErr
	}

	c.leftList = left
	c.rightList = right
	return nil
}

func (c *Comparator) listNames(ctx context.Context, dir string) ([]string, error) {
	entries, err := c.fs.ReadDir(ctx, dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if _, skipped := c.skip[entry.Name]; skipped {
			continue
		}
		names = append(names, entry.Name)
	}
	sort.Strings(names)

	return names, nil
}

// phase1 partitions the listings into common, left-only and right-only
// using the host's case-normalization rule. The original left-side
// spelling is reported for common names. If two names on one side
// normalize to the same key, the last one wins in that side's lookup
// table; the collision is logged but not repaired.
func (c *Comparator) phase1(ctx context.Context) error {
	if c.partitioned {
		return c.listErr
	}
	if err := c.phase0(ctx); err != nil {
		return err
	}
	c.partitioned = true

	a := c.normalize(c.Left, c.leftList)
	b := c.normalize(c.Right, c.rightList)

	for key, name := range a {
		if _, ok := b[key]; ok {
			c.common = append(c.common, name)
		} else {
			c.leftOnly = append(c.leftOnly, name)
		}
	}
	for key, name := range b {
		if _, ok := a[key]; !ok {
			c.rightOnly = append(c.rightOnly, name)
		}
	}

	sort.Strings(c.common)
	sort.Strings(c.leftOnly)
	sort.Strings(c.rightOnly)
	return nil
}

// normalize builds the case-normalized lookup table for one side
func (c *Comparator) normalize(dir string, names []string) map[string]string {
	table := make(map[string]string, len(names))
	for _, name := range names {
		key := platform.NormalizeCase(name)
		if prev, ok := table[key]; ok {
			c.logger.Warn("case-normalized name collision", logging.Fields{
				"dir":      dir,
				"kept":     name,
				"shadowed": prev,
			})
		}
		table[key] = name
	}
	return table
}

// phase2 classifies every common name by kind. Entries that cannot be
// stat'd on either side, that differ in kind between sides, or that
// are neither directories nor regular files, classify as funny.
func (c *Comparator) phase2(ctx context.Context) error {
	if c.classified {
		return c.listErr
	}
	if err := c.phase1(ctx); err != nil {
		return err
	}
	c.classified = true

	for _, name := range c.common {
		leftInfo, leftErr := c.fs.Stat(ctx, filepath.Join(c.Left, name))
		rightInfo, rightErr := c.fs.Stat(ctx, filepath.Join(c.Right, name))

		switch {
		case leftErr != nil || rightErr != nil:
			c.commonFunny = append(c.commonFunny, name)
		case leftInfo.Mode.Type() != rightInfo.Mode.Type():
			c.commonFunny = append(c.commonFunny, name)
		case leftInfo.IsDir():
			c.commonDirs = append(c.commonDirs, name)
		case leftInfo.IsRegular():
			c.commonFiles = append(c.commonFiles, name)
		default:
			c.commonFunny = append(c.commonFunny, name)
		}
	}

	return nil
}

// phase3 runs the file comparator over the common files
func (c *Comparator) phase3(ctx context.Context) error {
	if c.compared {
		return c.listErr
	}
	if err := c.phase2(ctx); err != nil {
		return err
	}
	c.compared = true

	c.sameFiles, c.diffFiles, c.funnyFiles =
		c.files.CompareCommon(ctx, c.Left, c.Right, c.commonFiles, c.shallow)
	return nil
}

// phase4 constructs a child comparator per common subdirectory,
// inheriting the hide and ignore sets
func (c *Comparator) phase4(ctx context.Context) error {
	if c.descended {
		return c.listErr
	}
	if err := c.phase2(ctx); err != nil {
		return err
	}
	c.descended = true

	c.subdirs = make(map[string]*Comparator, len(c.commonDirs))
	for _, name := range c.commonDirs {
		c.subdirs[name] = New(
			c.fs,
			c.files,
			filepath.Join(c.Left, name),
			filepath.Join(c.Right, name),
			Options{
				Hide:    c.hide,
				Ignore:  c.ignore,
				Shallow: c.shallow,
				Logger:  c.logger,
			},
		)
	}

	return nil
}

// LeftList returns the filtered, sorted entries of the left directory
func (c *Comparator) LeftList(ctx context.Context) ([]string, error) {
	if err := c.phase0(ctx); err != nil {
		return nil, err
	}
	return c.leftList, nil
}

// RightList returns the filtered, sorted entries of the right directory
func (c *Comparator) RightList(ctx context.Context) ([]string, error) {
	if err := c.phase0(ctx); err != nil {
		return nil, err
	}
	return c.rightList, nil
}

// Common returns the names present on both sides
func (c *Comparator) Common(ctx context.Context) ([]string, error) {
	if err := c.phase1(ctx); err != nil {
		return nil, err
	}
	return c.common, nil
}

// LeftOnly returns the names present only on the left side
func (c *Comparator) LeftOnly(ctx context.Context) ([]string, error) {
	if err := c.phase1(ctx); err != nil {
		return nil, err
	}
	return c.leftOnly, nil
}

// RightOnly returns the names present only on the right side
func (c *Comparator) RightOnly(ctx context.Context) ([]string, error) {
	if err := c.phase1(ctx); err != nil {
		return nil, err
	}
	return c.rightOnly, nil
}

// CommonDirs returns the common names that are directories on both sides
func (c *Comparator) CommonDirs(ctx context.Context) ([]string, error) {
	if err := c.phase2(ctx); err != nil {
		return nil, err
	}
	return c.commonDirs, nil
}

// CommonFiles returns the common names that are regular files on both sides
func (c *Comparator) CommonFiles(ctx context.Context) ([]string, error) {
	if err := c.phase2(ctx); err != nil {
		return nil, err
	}
	return c.commonFiles, nil
}

// CommonFunny returns the common names that could not be classified
func (c *Comparator) CommonFunny(ctx context.Context) ([]string, error) {
	if err := c.phase2(ctx); err != nil {
		return nil, err
	}
	return c.commonFunny, nil
}

// SameFiles returns the common files with identical content
func (c *Comparator) SameFiles(ctx context.Context) ([]string, error) {
	if err := c.phase3(ctx); err != nil {
		return nil, err
	}
	return c.sameFiles, nil
}

// DiffFiles returns the common files whose content differs
func (c *Comparator) DiffFiles(ctx context.Context) ([]string, error) {
	if err := c.phase3(ctx); err != nil {
		return nil, err
	}
	return c.diffFiles, nil
}

// FunnyFiles returns the common files that could not be compared
func (c *Comparator) FunnyFiles(ctx context.Context) ([]string, error) {
	if err := c.phase3(ctx); err != nil {
		return nil, err
	}
	return c.funnyFiles, nil
}

// Subdirs returns child comparators keyed by common subdirectory name
func (c *Comparator) Subdirs(ctx context.Context) (map[string]*Comparator, error) {
	if err := c.phase4(ctx); err != nil {
		return nil, err
	}
	return c.subdirs, nil
}

// sortedSubdirs returns the children in sorted name order. Requires
// phase4 to have run.
func (c *Comparator) sortedSubdirs() []*Comparator {
	names := make([]string, 0, len(c.subdirs))
	for name := range c.subdirs {
		names = append(names, name)
	}
	sort.Strings(names)

	children := make([]*Comparator, 0, len(names))
	for _, name := range names {
		children = append(children, c.subdirs[name])
	}
	return children
}
