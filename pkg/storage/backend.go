package storage

import (
	"context"
	"io"
	"io/fs"
	"time"
)

// FileInfo represents metadata about a directory entry
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	Mode    fs.FileMode
}

// IsDir reports whether the entry is a directory
func (fi *FileInfo) IsDir() bool {
	return fi.Mode.IsDir()
}

// IsRegular reports whether the entry is a regular file
func (fi *FileInfo) IsRegular() bool {
	return fi.Mode.IsRegular()
}

// Backend defines the interface for the filesystem operations the
// comparison engine depends on. Paths are passed through verbatim,
// so callers may compare two completely unrelated directory trees.
type Backend interface {
	// ReadDir lists the immediate entries of a directory (one level,
	// no recursion)
	ReadDir(ctx context.Context, path string) ([]FileInfo, error)

	// Stat returns metadata for a single path
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists checks if a path exists
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes a file or directory tree
	Delete(ctx context.Context, path string) error

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error

	// Close releases any resources held by the backend
	Close() error
}
