package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// shardPrefixLen is the number of leading filename characters used as the
// first shard segment. For a UUIDv7 name those characters come from the
// millisecond timestamp, so files spread across top-level directories by
// generation time.
const shardPrefixLen = 5

// DiskStore implements Store on the local filesystem with a two-level
// sharded directory layout, keeping any single directory's entry count
// bounded as the corpus grows.
type DiskStore struct {
	root string
}

// NewDiskStore creates the storage root if missing and returns a DiskStore.
func NewDiskStore(root string) (*DiskStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &DiskStore{root: root}, nil
}

var _ Store = (*DiskStore)(nil)

// shardPath builds the relative path for a generated filename: the first
// segment is a fixed-length prefix of the filename, the second is the last
// character of the generated name's random portion.
func shardPath(name, ext string) string {
	filename := name + ext
	return filepath.ToSlash(filepath.Join(filename[:shardPrefixLen], name[len(name)-1:], filename))
}

// Save writes the stream under a new UUIDv7-derived name. The content is
// first copied to a temp file in the target shard directory and then renamed,
// so an I/O failure never leaves a partial file at the final path.
func (s *DiskStore) Save(ctx context.Context, r io.Reader, contentType string) (SavedFile, error) {
	ext, err := ExtensionByType(contentType)
	if err != nil {
		return SavedFile{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return SavedFile{}, fmt.Errorf("generate name: %w", err)
	}
	name := id.String()

	rel := shardPath(name, ext)
	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return SavedFile{}, fmt.Errorf("create shard directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return SavedFile{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name()) // no-op after a successful rename
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return SavedFile{}, fmt.Errorf("write content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return SavedFile{}, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), abs); err != nil {
		return SavedFile{}, fmt.Errorf("rename into place: %w", err)
	}

	return SavedFile{Path: rel, Name: name + ext, Size: size}, nil
}

// Open returns a reader over the stored file.
func (s *DiskStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// Delete removes the stored file. Empty shard directories are left in place.
func (s *DiskStore) Delete(ctx context.Context, path string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrFileNotFound
		}
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
