package repository

import (
	"context"

	"mediapi/internal/model"
)

// ContentRepository defines data access for contents and their keyword
// associations using SQL queries only. No business logic here — strictly
// persistence operations. Keyword arguments are expected to be already
// normalized by the caller.
type ContentRepository interface {
	// FindByName returns the content with the given external name, keywords
	// included. Returns ErrNotFound if absent.
	FindByName(ctx context.Context, name string) (*model.Content, error)

	// Create inserts a content row associated with the given keyword set.
	// Keywords that already exist as rows are reused; the rest are created.
	// The content row, any new keyword rows, and all association rows commit
	// atomically. A uniqueness race surfaces as ErrConflict.
	Create(ctx context.Context, name, path string, keywords []string) (*model.Content, error)

	// UpdateKeywords replaces — not merges — the content's association set
	// with the given keyword list, reusing and creating keyword rows the same
	// way Create does. Returns ErrNotFound if no content has that name.
	UpdateKeywords(ctx context.Context, name string, keywords []string) (*model.Content, error)

	// SearchByKeywords returns every content associated with at least one of
	// the given keywords, ordered by descending matched-keyword count. Ties
	// are broken by id, which is incidental and not part of the contract.
	SearchByKeywords(ctx context.Context, keywords []string) ([]model.Content, error)

	// IncrementAccess adds exactly 1 to the content's access counter with a
	// single atomic update, safe under concurrent calls.
	IncrementAccess(ctx context.Context, id int64) error

	// Delete removes the content row and its association rows. Keyword rows
	// are never deleted, even when orphaned.
	Delete(ctx context.Context, id int64) error
}
