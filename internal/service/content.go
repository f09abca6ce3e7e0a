package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"slices"

	"github.com/h2non/filetype"

	"mediapi/internal/keyword"
	"mediapi/internal/model"
	"mediapi/internal/repository"
	"mediapi/internal/storage"
)

var (
	ErrNotFound          = errors.New("content not found")
	ErrEmptyKeywords     = errors.New("empty keywords")
	ErrInconsistentState = errors.New("content file missing from storage")
	ErrReaderNil         = errors.New("reader is nil")
)

// sniffLen is how many leading bytes are read for media type detection.
// filetype needs at most 262 bytes for any of its matchers.
const sniffLen = 512

// ContentService defines the use cases for hosted media content.
type ContentService interface {
	// Upload validates the media type and keyword input, persists the bytes
	// under a generated name, and creates the metadata record. Nothing is
	// written if validation fails; a metadata failure after the file write
	// leaves an orphan file (logged, never referenced).
	Upload(ctx context.Context, r io.Reader, rawKeywords string) (*model.Content, error)

	// Fetch returns the content record and a reader over its file. When
	// count is true the access counter is incremented on a detached task
	// that may complete after the response has been sent.
	Fetch(ctx context.Context, name string, count bool) (*model.Content, io.ReadCloser, error)

	// Search returns contents matching any of the given raw keywords,
	// best matches first.
	Search(ctx context.Context, rawKeywords []string) ([]model.Content, error)

	// UpdateKeywords replaces the content's keyword set.
	UpdateKeywords(ctx context.Context, name string, rawKeywords []string) (*model.Content, error)

	// Delete removes the metadata record before the file. A file removal
	// failure is non-fatal: the metadata row is the authority.
	Delete(ctx context.Context, name string) error
}

// contentService is a concrete implementation of ContentService.
type contentService struct {
	store storage.Store
	repo  repository.ContentRepository
}

// NewContentService constructs a new ContentService.
func NewContentService(store storage.Store, repo repository.ContentRepository) ContentService {
	return &contentService{store: store, repo: repo}
}

func (s *contentService) Upload(ctx context.Context, r io.Reader, rawKeywords string) (*model.Content, error) {
	if r == nil {
		return nil, ErrReaderNil
	}

	// Sniff the media type from the leading bytes, then stitch them back
	// onto the stream for the storage write.
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read content head: %w", err)
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil {
		return nil, fmt.Errorf("detect media type: %w", err)
	}
	contentType := kind.MIME.Value
	if _, err := storage.ExtensionByType(contentType); err != nil {
		return nil, fmt.Errorf("media type %q: %w", contentType, err)
	}

	if rawKeywords == "" {
		return nil, ErrEmptyKeywords
	}
	keywords := keyword.NormalizeAll(keyword.Split(rawKeywords))
	if len(keywords) == 0 {
		return nil, ErrEmptyKeywords
	}

	saved, err := s.store.Save(ctx, io.MultiReader(bytes.NewReader(head), r), contentType)
	if err != nil {
		return nil, fmt.Errorf("save to storage: %w", err)
	}

	content, err := s.repo.Create(ctx, saved.Name, saved.Path, keywords)
	if err != nil {
		// The file stays on disk unreferenced; orphans are an accepted
		// inconsistency and are never auto-reconciled.
		logJSON(map[string]any{
			"component": "content_service",
			"event":     "upload_orphan_file",
			"status":    "error",
			"path":      saved.Path,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("create metadata: %w", err)
	}
	return content, nil
}

func (s *contentService) Fetch(ctx context.Context, name string, count bool) (*model.Content, io.ReadCloser, error) {
	content, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	f, err := s.store.Open(ctx, content.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			// The row exists but the file is gone: external interference.
			// Surfaced as not-found, flagged for the operator.
			logJSON(map[string]any{
				"component": "content_service",
				"event":     "inconsistent_state",
				"status":    "error",
				"name":      name,
				"path":      content.StoragePath,
			})
			return nil, nil, ErrInconsistentState
		}
		return nil, nil, err
	}

	if count {
		// Fire-and-forget: runs after the response path, detached from the
		// request context. Ordering relative to later requests for the same
		// content is not guaranteed.
		go func(id int64) {
			if err := s.repo.IncrementAccess(context.Background(), id); err != nil {
				logJSON(map[string]any{
					"component": "content_service",
					"event":     "increment_access_failed",
					"status":    "error",
					"id":        id,
					"error":     err.Error(),
				})
			}
		}(content.ID)
	}

	return content, f, nil
}

func (s *contentService) Search(ctx context.Context, rawKeywords []string) ([]model.Content, error) {
	keywords := keyword.NormalizeAll(slices.Values(rawKeywords))
	if len(keywords) == 0 {
		return []model.Content{}, nil
	}
	return s.repo.SearchByKeywords(ctx, keywords)
}

func (s *contentService) UpdateKeywords(ctx context.Context, name string, rawKeywords []string) (*model.Content, error) {
	keywords := keyword.NormalizeAll(slices.Values(rawKeywords))
	if len(keywords) == 0 {
		return nil, ErrEmptyKeywords
	}

	content, err := s.repo.UpdateKeywords(ctx, name, keywords)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return content, nil
}

func (s *contentService) Delete(ctx context.Context, name string) error {
	content, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	// Metadata first: a file-removal failure must never leave a metadata row
	// pointing at a missing file, while a dangling file is acceptable.
	if err := s.repo.Delete(ctx, content.ID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, content.StoragePath); err != nil {
		logJSON(map[string]any{
			"component": "content_service",
			"event":     "file_delete_failed",
			"status":    "error",
			"name":      name,
			"path":      content.StoragePath,
			"error":     err.Error(),
		})
	}
	return nil
}

func logJSON(data map[string]any) {
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal service log: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, string(b))
}
