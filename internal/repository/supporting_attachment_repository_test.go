package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perda-lpj-api/internal/models"
)

func TestSupportingAttachmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSupportingAttachmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(urutan), 0) + 1 FROM supporting_attachments")).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO supporting_attachments")).
		WithArgs(sqlmock.AnyArg(), "doc-1", 1, "Berita Acara", "supporting/ba.pdf", int64(512), 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	att := &models.SupportingAttachment{
		DocumentID:  "doc-1",
		Title:       "Berita Acara",
		FilePath:    "supporting/ba.pdf",
		SizeBytes:   512,
		TotalSheets: 2,
	}
	require.NoError(t, repo.Create(context.Background(), att))
	require.Equal(t, 1, att.Urutan)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSupportingAttachmentRepositoryListAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSupportingAttachmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM supporting_attachments WHERE document_id = $1 ORDER BY urutan ASC")).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "urutan", "title", "file_path", "size_bytes", "total_sheets", "created_at", "updated_at"}).
			AddRow("sup-1", "doc-1", 1, "Berita Acara", "a.pdf", 10, 1, time.Now(), time.Now()).
			AddRow("sup-2", "doc-1", 2, "Nota Keuangan", "b.pdf", 20, 6, time.Now(), time.Now()))

	atts, err := repo.ListByDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Len(t, atts, 2)
	require.Equal(t, "Nota Keuangan", atts[1].Title)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM supporting_attachments WHERE id = $1 RETURNING document_id")).
		WithArgs("sup-1").
		WillReturnRows(sqlmock.NewRows([]string{"document_id"}).AddRow("doc-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE supporting_attachments t SET urutan = s.rn")).
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "sup-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
