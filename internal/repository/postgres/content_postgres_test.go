package postgres

import (
	"context"
	"testing"
	"time"

	"mediapi/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contentRows(t *testing.T) *sqlmock.Rows {
	t.Helper()
	return sqlmock.NewRows([]string{"id", "name", "storage_path", "access_count", "created_at"})
}

func TestContentPostgres_FindByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContentPostgres(db)
	ctx := context.Background()

	t.Run("found with keywords", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM contents WHERE name = ?").
			WithArgs("abc.png").
			WillReturnRows(contentRows(t).AddRow(1, "abc.png", "abc12/f/abc.png", 3, time.Now()))
		mock.ExpectQuery("SELECT k.id, k.name FROM keywords k").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "cat").AddRow(2, "dog"))

		c, err := repo.FindByName(ctx, "abc.png")

		require.NoError(t, err)
		assert.Equal(t, int64(1), c.ID)
		assert.Equal(t, []string{"cat", "dog"}, c.KeywordNames())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM contents WHERE name = ?").
			WithArgs("missing.png").
			WillReturnRows(contentRows(t))

		c, err := repo.FindByName(ctx, "missing.png")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, c)
	})
}

func TestContentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContentPostgres(db)
	ctx := context.Background()

	t.Run("reuses existing keywords and creates missing ones", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, name FROM keywords WHERE name IN").
			WithArgs("cat", "dog").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "cat"))
		mock.ExpectQuery("INSERT INTO keywords").
			WithArgs("dog").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
		mock.ExpectQuery("INSERT INTO contents").
			WithArgs("abc.png", "abc12/f/abc.png").
			WillReturnRows(contentRows(t).AddRow(10, "abc.png", "abc12/f/abc.png", 0, time.Now()))
		mock.ExpectExec("INSERT INTO contents_keywords").
			WithArgs(int64(10), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO contents_keywords").
			WithArgs(int64(10), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		c, err := repo.Create(ctx, "abc.png", "abc12/f/abc.png", []string{"cat", "dog"})

		require.NoError(t, err)
		assert.Equal(t, int64(10), c.ID)
		assert.Equal(t, []string{"cat", "dog"}, c.KeywordNames())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to conflict", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, name FROM keywords WHERE name IN").
			WithArgs("cat").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
		mock.ExpectQuery("INSERT INTO keywords").
			WithArgs("cat").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "keywords_name_key"})
		mock.ExpectRollback()

		c, err := repo.Create(ctx, "abc.png", "p", []string{"cat"})

		assert.ErrorIs(t, err, repository.ErrConflict)
		assert.Nil(t, c)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContentPostgres_UpdateKeywords(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContentPostgres(db)
	ctx := context.Background()

	t.Run("replaces association set", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM contents WHERE name = ?").
			WithArgs("abc.png").
			WillReturnRows(contentRows(t).AddRow(10, "abc.png", "p", 0, time.Now()))
		mock.ExpectExec("DELETE FROM contents_keywords").
			WithArgs(int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectQuery("SELECT id, name FROM keywords WHERE name IN").
			WithArgs("bird").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
		mock.ExpectQuery("INSERT INTO keywords").
			WithArgs("bird").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectExec("INSERT INTO contents_keywords").
			WithArgs(int64(10), int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		c, err := repo.UpdateKeywords(ctx, "abc.png", []string{"bird"})

		require.NoError(t, err)
		assert.Equal(t, []string{"bird"}, c.KeywordNames())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent content", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM contents WHERE name = ?").
			WithArgs("missing.png").
			WillReturnRows(contentRows(t))
		mock.ExpectRollback()

		c, err := repo.UpdateKeywords(ctx, "missing.png", []string{"bird"})

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, c)
	})
}

func TestContentPostgres_SearchByKeywords(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContentPostgres(db)
	ctx := context.Background()

	t.Run("ordered by matched count", func(t *testing.T) {
		ranked := sqlmock.NewRows([]string{"id", "name", "storage_path", "access_count", "created_at", "matched"}).
			AddRow(1, "both.png", "p1", 0, time.Now(), 2).
			AddRow(2, "one.png", "p2", 0, time.Now(), 1)
		mock.ExpectQuery("SELECT (.+) COUNT\\(k.id\\) AS matched").
			WithArgs("cat", "dog").
			WillReturnRows(ranked)
		mock.ExpectQuery("SELECT k.id, k.name FROM keywords k").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "cat").AddRow(2, "dog"))
		mock.ExpectQuery("SELECT k.id, k.name FROM keywords k").
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "cat"))

		items, err := repo.SearchByKeywords(ctx, []string{"cat", "dog"})

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "both.png", items[0].Name)
		assert.Equal(t, "one.png", items[1].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty keyword list short-circuits", func(t *testing.T) {
		items, err := repo.SearchByKeywords(ctx, nil)

		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestContentPostgres_IncrementAccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContentPostgres(db)

	mock.ExpectExec("UPDATE contents SET access_count = access_count \\+ 1").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.IncrementAccess(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewContentPostgres(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM contents_keywords WHERE content_id = ?").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM contents WHERE id = ?").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Delete(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}
