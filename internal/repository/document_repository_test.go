package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perda-lpj-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

var documentRowColumns = []string{"id", "kind", "year", "title", "body_file_path", "body_size_bytes", "body_page_count", "created_at", "updated_at"}

func TestDocumentRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).
		WithArgs(sqlmock.AnyArg(), models.ReportKindRaperda, 2024, "LPJ APBD 2024", nil, int64(0), 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	doc := &models.Document{Kind: models.ReportKindRaperda, Year: 2024, Title: "LPJ APBD 2024"}
	require.NoError(t, repo.Create(context.Background(), doc))
	require.NotEmpty(t, doc.ID)
	require.False(t, doc.CreatedAt.IsZero())

	body := "bodies/batang-tubuh.pdf"
	rows := sqlmock.NewRows(documentRowColumns).
		AddRow(doc.ID, "RAPERDA", 2024, "LPJ APBD 2024", body, 2048, 5, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + documentColumns + " FROM documents WHERE id = $1")).
		WithArgs(doc.ID).
		WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	require.True(t, fetched.HasBody())
	require.Equal(t, 5, fetched.BodyPageCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryGetMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("SELECT .* FROM documents WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	require.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestDocumentRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM documents WHERE kind = $1 AND year = $2 AND LOWER(title) LIKE $3")).
		WithArgs(models.ReportKindPerbup, 2023, "%apbd%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY year DESC, created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.ReportKindPerbup, 2023, "%apbd%").
		WillReturnRows(sqlmock.NewRows(documentRowColumns).
			AddRow("doc-1", "PERBUP", 2023, "Penjabaran APBD", nil, 0, 0, time.Now(), time.Now()))

	docs, total, err := repo.List(context.Background(), models.DocumentFilter{
		Kind:   models.ReportKindPerbup,
		Year:   2023,
		Search: "APBD",
		Limit:  500,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, docs, 1)
	require.False(t, docs[0].HasBody())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositorySetBodyMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	path := "bodies/new.pdf"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET body_file_path = $2")).
		WithArgs("doc-1", path, int64(1024), 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetBody(context.Background(), "doc-1", &path, 1024, 3)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "doc-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
