package compare

import (
	"io/fs"
	"time"

	"github.com/sdejongh/dirdiff/pkg/storage"
)

// Signature is a cheap fingerprint of a directory entry: its kind
// (type bits only), byte size and modification time. Two files with
// equal signatures are assumed unchanged for shallow comparison and
// cache invalidation purposes.
type Signature struct {
	Kind    fs.FileMode
	Size    int64
	ModTime time.Time
}

// SignatureOf derives a signature from entry metadata. It is a pure
// function of the metadata and never touches the filesystem.
func SignatureOf(info *storage.FileInfo) Signature {
	return Signature{
		Kind:    info.Mode.Type(),
		Size:    info.Size,
		ModTime: info.ModTime,
	}
}

// Equal reports whether two signatures match in all components
func (s Signature) Equal(other Signature) bool {
	return s.Kind == other.Kind &&
		s.Size == other.Size &&
		s.ModTime.Equal(other.ModTime)
}

// IsRegular reports whether the signature belongs to a regular file
func (s Signature) IsRegular() bool {
	return s.Kind.IsRegular()
}
