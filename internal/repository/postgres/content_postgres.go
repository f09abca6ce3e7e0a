package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"mediapi/internal/model"
	"mediapi/internal/repository"
)

// ContentPostgres is a PostgreSQL implementation of repository.ContentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ContentPostgres struct {
	db *sql.DB
}

// NewContentPostgres creates a new ContentPostgres repository.
func NewContentPostgres(db *sql.DB) *ContentPostgres {
	return &ContentPostgres{db: db}
}

var _ repository.ContentRepository = (*ContentPostgres)(nil)

const contentColumns = "id, name, storage_path, access_count, created_at"

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

func translateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.ConstraintName)
	}
	return err
}

// placeholders returns "$1, $2, ..., $n".
func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

func scanContent(row interface{ Scan(...any) error }, c *model.Content) error {
	return row.Scan(&c.ID, &c.Name, &c.StoragePath, &c.AccessCount, &c.CreatedAt)
}

// FindByName fetches a single content by its external name, keywords included.
func (r *ContentPostgres) FindByName(ctx context.Context, name string) (*model.Content, error) {
	q := "SELECT " + contentColumns + " FROM contents WHERE name = $1"
	var c model.Content
	if err := scanContent(r.db.QueryRowContext(ctx, q, name), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	kws, err := r.loadKeywords(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Keywords = kws
	return &c, nil
}

// Create inserts a content row, reconciles the keyword set, and links the two,
// all inside one transaction.
func (r *ContentPostgres) Create(ctx context.Context, name, path string, keywords []string) (*model.Content, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	kws, err := reconcileKeywords(ctx, tx, keywords)
	if err != nil {
		return nil, translateErr(err)
	}

	q := "INSERT INTO contents (name, storage_path) VALUES ($1, $2) RETURNING " + contentColumns
	var c model.Content
	if err := scanContent(tx.QueryRowContext(ctx, q, name, path), &c); err != nil {
		return nil, translateErr(err)
	}

	if err := linkKeywords(ctx, tx, c.ID, kws); err != nil {
		return nil, translateErr(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, translateErr(err)
	}
	c.Keywords = kws
	return &c, nil
}

// UpdateKeywords replaces the content's association set with the given list.
// The previous association rows are removed in the same transaction; keyword
// rows themselves are never deleted.
func (r *ContentPostgres) UpdateKeywords(ctx context.Context, name string, keywords []string) (*model.Content, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	q := "SELECT " + contentColumns + " FROM contents WHERE name = $1"
	var c model.Content
	if err := scanContent(tx.QueryRowContext(ctx, q, name), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM contents_keywords WHERE content_id = $1", c.ID); err != nil {
		return nil, err
	}

	kws, err := reconcileKeywords(ctx, tx, keywords)
	if err != nil {
		return nil, translateErr(err)
	}
	if err := linkKeywords(ctx, tx, c.ID, kws); err != nil {
		return nil, translateErr(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, translateErr(err)
	}
	c.Keywords = kws
	return &c, nil
}

// SearchByKeywords returns contents matching at least one keyword, best
// matches first. The matched-count ordering is computed by the database.
func (r *ContentPostgres) SearchByKeywords(ctx context.Context, keywords []string) ([]model.Content, error) {
	if len(keywords) == 0 {
		return []model.Content{}, nil
	}

	q := `
		SELECT c.id, c.name, c.storage_path, c.access_count, c.created_at, COUNT(k.id) AS matched
		FROM contents c
		JOIN contents_keywords ck ON ck.content_id = c.id
		JOIN keywords k ON k.id = ck.keyword_id
		WHERE k.name IN (` + placeholders(len(keywords)) + `)
		GROUP BY c.id, c.name, c.storage_path, c.access_count, c.created_at
		ORDER BY matched DESC, c.id
	`
	args := make([]any, len(keywords))
	for i, k := range keywords {
		args[i] = k
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Content, 0)
	for rows.Next() {
		var c model.Content
		var matched int
		if err := rows.Scan(&c.ID, &c.Name, &c.StoragePath, &c.AccessCount, &c.CreatedAt, &matched); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		kws, err := r.loadKeywords(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Keywords = kws
	}
	return items, nil
}

// IncrementAccess bumps the access counter by exactly 1. The arithmetic runs
// in the database, so concurrent increments never lose updates.
func (r *ContentPostgres) IncrementAccess(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE contents SET access_count = access_count + 1 WHERE id = $1", id)
	return err
}

// Delete removes the association rows and the content row atomically.
func (r *ContentPostgres) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM contents_keywords WHERE content_id = $1", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM contents WHERE id = $1", id); err != nil {
		return err
	}
	return tx.Commit()
}

// reconcileKeywords resolves a normalized keyword list to keyword rows:
// names that already exist are reused, the rest are inserted. Shared by
// Create and UpdateKeywords so the two paths cannot diverge.
func reconcileKeywords(ctx context.Context, tx *sql.Tx, keywords []string) ([]model.Keyword, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	q := "SELECT id, name FROM keywords WHERE name IN (" + placeholders(len(keywords)) + ")"
	args := make([]any, len(keywords))
	for i, k := range keywords {
		args[i] = k
	}
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[string]int64, len(keywords))
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		existing[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]model.Keyword, 0, len(keywords))
	for _, name := range keywords {
		if id, ok := existing[name]; ok {
			out = append(out, model.Keyword{ID: id, Name: name})
			continue
		}
		var id int64
		if err := tx.QueryRowContext(ctx, "INSERT INTO keywords (name) VALUES ($1) RETURNING id", name).Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, model.Keyword{ID: id, Name: name})
	}
	return out, nil
}

func linkKeywords(ctx context.Context, tx *sql.Tx, contentID int64, kws []model.Keyword) error {
	for _, k := range kws {
		if _, err := tx.ExecContext(ctx, "INSERT INTO contents_keywords (content_id, keyword_id) VALUES ($1, $2)", contentID, k.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *ContentPostgres) loadKeywords(ctx context.Context, contentID int64) ([]model.Keyword, error) {
	q := `
		SELECT k.id, k.name
		FROM keywords k
		JOIN contents_keywords ck ON ck.keyword_id = k.id
		WHERE ck.content_id = $1
		ORDER BY k.id
	`
	rows, err := r.db.QueryContext(ctx, q, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kws := make([]model.Keyword, 0)
	for rows.Next() {
		var k model.Keyword
		if err := rows.Scan(&k.ID, &k.Name); err != nil {
			return nil, err
		}
		kws = append(kws, k)
	}
	return kws, rows.Err()
}
