package compare

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/sdejongh/dirdiff/pkg/ratelimit"
	"github.com/sdejongh/dirdiff/pkg/storage"
)

// DefaultBufferSize is the chunk size for deep content comparison
const DefaultBufferSize = 8 * 1024

// Outcome classifies a single file-pair comparison
type Outcome string

const (
	// OutcomeEqual indicates identical files
	OutcomeEqual Outcome = "equal"
	// OutcomeDifferent indicates files that differ
	OutcomeDifferent Outcome = "different"
	// OutcomeFunny indicates files that could not be compared
	OutcomeFunny Outcome = "funny"
)

// FileComparator decides whether two regular files are equal, using
// shallow signature comparison plus a memoized cache for deep
// byte-level comparisons.
type FileComparator struct {
	fs         storage.Backend
	cache      *Cache
	bufferSize int
	bufferPool *sync.Pool
	limiter    *ratelimit.Limiter
	onDeep     func(path string) // Optional deep-comparison callback
}

// NewFileComparator creates a file comparator backed by the given
// filesystem and cache. A nil cache uses the process-wide default.
func NewFileComparator(fs storage.Backend, cache *Cache, bufferSize int) *FileComparator {
	if cache == nil {
		cache = DefaultCache()
	}
	if bufferSize < 1024 {
		bufferSize = DefaultBufferSize
	}
	return &FileComparator{
		fs:         fs,
		cache:      cache,
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// SetLimiter sets a bandwidth limiter applied to deep comparison reads
func (c *FileComparator) SetLimiter(limiter *ratelimit.Limiter) {
	c.limiter = limiter
}

// SetDeepCallback sets a callback invoked before each deep (content)
// comparison, e.g. for progress reporting
func (c *FileComparator) SetDeepCallback(callback func(path string)) {
	c.onDeep = callback
}

// Equal reports whether two files hold identical content.
//
// Non-regular entries on either side are not comparable and report
// false without error. With shallow enabled, a full signature match is
// trusted as proof of equality without reading content. A size
// mismatch is a difference without reading content. Everything else is
// answered from the cache when the stored signatures still match, or
// by a fresh byte-for-byte comparison whose result overwrites the
// cache entry for the pair.
//
// A returned error means the pair could not be compared at all (stat
// or read failure); callers classify that as funny.
func (c *FileComparator) Equal(ctx context.Context, f1, f2 string, shallow bool) (bool, error) {
	info1, err := c.fs.Stat(ctx, f1)
	if err != nil {
		return false, err
	}
	info2, err := c.fs.Stat(ctx, f2)
	if err != nil {
		return false, err
	}

	s1 := SignatureOf(info1)
	s2 := SignatureOf(info2)

	if !s1.IsRegular() || !s2.IsRegular() {
		return false, nil
	}

	if shallow && s1.Equal(s2) {
		return true, nil
	}

	if s1.Size != s2.Size {
		return false, nil
	}

	if equal, ok := c.cache.Lookup(f1, f2, s1, s2); ok {
		return equal, nil
	}

	if c.onDeep != nil {
		c.onDeep(f1)
	}

	equal, err := c.compareContent(ctx, f1, f2)
	if err != nil {
		return false, err
	}

	c.cache.Store(f1, f2, s1, s2, equal)
	return equal, nil
}

// compareContent compares two files byte-for-byte in fixed chunks.
// Files are equal iff every chunk matches through simultaneous EOF.
func (c *FileComparator) compareContent(ctx context.Context, f1, f2 string) (bool, error) {
	r1, err := c.fs.Read(ctx, f1)
	if err != nil {
		return false, fmt.Errorf("failed to open left file: %w", err)
	}
	defer r1.Close()

	r2, err := c.fs.Read(ctx, f2)
	if err != nil {
		return false, fmt.Errorf("failed to open right file: %w", err)
	}
	defer r2.Close()

	var left io.Reader = r1
	var right io.Reader = r2
	if c.limiter != nil {
		left = ratelimit.NewReader(ctx, left, c.limiter)
		right = ratelimit.NewReader(ctx, right, c.limiter)
	}

	buf1Ptr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(buf1Ptr)
	buf1 := *buf1Ptr

	buf2Ptr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(buf2Ptr)
	buf2 := *buf2Ptr

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		n1, err1 := readChunk(left, buf1)
		if err1 != nil {
			return false, fmt.Errorf("failed to read left file: %w", err1)
		}
		n2, err2 := readChunk(right, buf2)
		if err2 != nil {
			return false, fmt.Errorf("failed to read right file: %w", err2)
		}

		if n1 != n2 || !bytes.Equal(buf1[:n1], buf2[:n2]) {
			return false, nil
		}
		if n1 == 0 {
			return true, nil
		}
	}
}

// readChunk fills buf as far as possible, treating EOF as a short read
func readChunk(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	}
	return n, err
}

// CompareCommon compares the named files present in both directories
// and partitions the names into equal, different and funny, preserving
// input order within each partition. Funny means the pair raised a
// filesystem error, not that content differed.
func (c *FileComparator) CompareCommon(ctx context.Context, dirA, dirB string, names []string, shallow bool) (same, diff, funny []string) {
	for _, name := range names {
		a := filepath.Join(dirA, name)
		b := filepath.Join(dirB, name)

		equal, err := c.Equal(ctx, a, b, shallow)
		switch {
		case err != nil:
			funny = append(funny, name)
		case equal:
			same = append(same, name)
		default:
			diff = append(diff, name)
		}
	}

	return same, diff, funny
}
