// Package storage persists uploaded media bytes under generated,
// collision-resistant names. Implementations must be safe for concurrent use;
// name uniqueness is probabilistic (UUIDv7) and requires no cross-request
// coordination.
package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrUnsupportedMediaType is returned when no file extension is mapped
	// for the supplied MIME type. Nothing is written in that case.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrFileNotFound is returned by Delete and Open when no file exists at
	// the given path.
	ErrFileNotFound = errors.New("file not found")
)

// SavedFile describes a stored file.
type SavedFile struct {
	// Path is the sharded path relative to the storage root (or bucket).
	Path string
	// Name is the bare generated filename, used as the externally visible
	// content name.
	Name string
	// Size is the number of bytes written.
	Size int64
}

// Store is the file persistence boundary used by the content service.
type Store interface {
	// Save writes the full byte stream under a freshly generated name,
	// choosing the extension from contentType. Two concurrent calls always
	// produce distinct names and paths.
	Save(ctx context.Context, r io.Reader, contentType string) (SavedFile, error)

	// Open returns a reader over the file at path.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the file at path. A missing file yields ErrFileNotFound;
	// callers are expected to treat that as non-fatal since the metadata row
	// is the source of truth.
	Delete(ctx context.Context, path string) error
}

// extByType maps the accepted media types to their storage extension. The
// upload path enforces the same allow-list before calling Save.
var extByType = map[string]string{
	"image/gif":  ".gif",
	"image/jpeg": ".jpeg",
	"image/png":  ".png",
}

// typeByExt is the inverse of extByType, kept as a literal so the two
// allow-lists stay side by side.
var typeByExt = map[string]string{
	".gif":  "image/gif",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ExtensionByType returns the file extension for a MIME type, or
// ErrUnsupportedMediaType when no mapping exists.
func ExtensionByType(contentType string) (string, error) {
	ext, ok := extByType[contentType]
	if !ok {
		return "", ErrUnsupportedMediaType
	}
	return ext, nil
}

// TypeByExtension is the reverse mapping, used when serving stored files.
// Unknown extensions fall back to application/octet-stream.
func TypeByExtension(ext string) string {
	if t, ok := typeByExt[ext]; ok {
		return t
	}
	return "application/octet-stream"
}
