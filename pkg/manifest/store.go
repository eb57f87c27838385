package manifest

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-ini/ini"
)

// DefaultFileName is the manifest file written next to the working
// directory when no path is configured
const DefaultFileName = "dirpatch.ini"

const (
	rootSection = "Root"
	onlySection = "Only"

	oldKey = "old"
	newKey = "new"

	listSeparator = ","
)

// ErrNotFound indicates the manifest file does not exist yet
var ErrNotFound = errors.New("manifest file not found")

// Store is the persisted patch manifest: an INI file with a [Root]
// section naming the two top-level trees and an [Only] section holding
// one key per path with only-on-that-side entries. Loading merges with
// whatever a previous run recorded; saving rewrites the whole file.
type Store struct {
	path string
	file *ini.File
}

// Open loads the manifest at path, or starts an empty one if the file
// does not exist yet
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Store{path: path, file: ini.Empty()}, nil
	}
	return Load(path)
}

// Load loads an existing manifest; a missing file is ErrNotFound
func Load(path string) (*Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	return &Store{path: path, file: file}, nil
}

// Path returns the manifest file path
func (s *Store) Path() string {
	return s.path
}

// HasRoot reports whether the [Root] section has been written
func (s *Store) HasRoot() bool {
	if !s.file.HasSection(rootSection) {
		return false
	}
	section := s.file.Section(rootSection)
	return section.HasKey(oldKey) && section.HasKey(newKey)
}

// EnsureRoot writes the [Root] section naming the two top-level trees,
// unless a previous run already wrote one. Existing values are never
// overwritten.
func (s *Store) EnsureRoot(oldRoot, newRoot string) error {
	if s.HasRoot() {
		return nil
	}

	section := s.file.Section(rootSection)
	if _, err := section.NewKey(oldKey, oldRoot); err != nil {
		return fmt.Errorf("failed to set root old: %w", err)
	}
	if _, err := section.NewKey(newKey, newRoot); err != nil {
		return fmt.Errorf("failed to set root new: %w", err)
	}

	return nil
}

// Root returns the recorded top-level tree names
func (s *Store) Root() (oldRoot, newRoot string, err error) {
	if !s.HasRoot() {
		return "", "", errors.New("manifest has no Root section")
	}
	section := s.file.Section(rootSection)
	return section.Key(oldKey).String(), section.Key(newKey).String(), nil
}

// SetOnly records the sorted only-on-this-side names for a path,
// overwriting any previous value for the same path
func (s *Store) SetOnly(path string, names []string) {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	s.file.Section(onlySection).Key(path).SetValue(strings.Join(sorted, listSeparator))
}

// Only returns the recorded names for a path, sorted
func (s *Store) Only(path string) []string {
	if !s.file.HasSection(onlySection) {
		return nil
	}
	section := s.file.Section(onlySection)
	if !section.HasKey(path) {
		return nil
	}

	names := section.Key(path).Strings(listSeparator)
	sort.Strings(names)
	return names
}

// OnlyPaths returns every path with a recorded entry, sorted
func (s *Store) OnlyPaths() []string {
	if !s.file.HasSection(onlySection) {
		return nil
	}

	paths := s.file.Section(onlySection).KeyStrings()
	sort.Strings(paths)
	return paths
}

// Save rewrites the whole manifest file
func (s *Store) Save() error {
	if err := s.file.SaveTo(s.path); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	return nil
}
