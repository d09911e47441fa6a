package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/perda-lpj-api/internal/models"
)

const supportingAttachmentColumns = `id, document_id, urutan, title, file_path, size_bytes, total_sheets, created_at, updated_at`

// SupportingAttachmentRepository persists lampiran pendukung rows.
type SupportingAttachmentRepository struct {
	db *sqlx.DB
}

// NewSupportingAttachmentRepository constructs the repository.
func NewSupportingAttachmentRepository(db *sqlx.DB) *SupportingAttachmentRepository {
	return &SupportingAttachmentRepository{db: db}
}

// Create appends the attachment at the end of its document.
func (r *SupportingAttachmentRepository) Create(ctx context.Context, att *models.SupportingAttachment) (err error) {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	att.CreatedAt = now
	att.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create supporting attachment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if att.Urutan, err = nextSequence(ctx, tx, tableSupportingAttachments, att.DocumentID); err != nil {
		return err
	}
	const query = `INSERT INTO supporting_attachments (` + supportingAttachmentColumns + `)
VALUES (:id, :document_id, :urutan, :title, :file_path, :size_bytes, :total_sheets, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, att); err != nil {
		return sequenceError("create supporting attachment", err)
	}
	if err = tx.Commit(); err != nil {
		return sequenceError("commit create supporting attachment", err)
	}
	return nil
}

// GetByID returns one attachment.
func (r *SupportingAttachmentRepository) GetByID(ctx context.Context, id string) (*models.SupportingAttachment, error) {
	const query = `SELECT ` + supportingAttachmentColumns + ` FROM supporting_attachments WHERE id = $1`
	var att models.SupportingAttachment
	if err := r.db.GetContext(ctx, &att, query, id); err != nil {
		return nil, err
	}
	return &att, nil
}

// ListByDocument returns the attachments of a document in urutan order.
func (r *SupportingAttachmentRepository) ListByDocument(ctx context.Context, documentID string) ([]models.SupportingAttachment, error) {
	const query = `SELECT ` + supportingAttachmentColumns + ` FROM supporting_attachments WHERE document_id = $1 ORDER BY urutan ASC`
	var atts []models.SupportingAttachment
	if err := r.db.SelectContext(ctx, &atts, query, documentID); err != nil {
		return nil, fmt.Errorf("list supporting attachments: %w", err)
	}
	return atts, nil
}

// Update persists the title and file fields.
func (r *SupportingAttachmentRepository) Update(ctx context.Context, att *models.SupportingAttachment) error {
	att.UpdatedAt = time.Now().UTC()
	const query = `UPDATE supporting_attachments SET title = :title, file_path = :file_path, size_bytes = :size_bytes,
       total_sheets = :total_sheets, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, att)
	if err != nil {
		return fmt.Errorf("update supporting attachment: %w", err)
	}
	return expectAffected(res, "update supporting attachment")
}

// Delete removes the attachment and closes the gap in urutan.
func (r *SupportingAttachmentRepository) Delete(ctx context.Context, id string) error {
	return deleteAndResequence(ctx, r.db, tableSupportingAttachments, id)
}

// Reorder writes the given urutan values atomically.
func (r *SupportingAttachmentRepository) Reorder(ctx context.Context, documentID string, updates []models.SequenceUpdate) error {
	return applySequences(ctx, r.db, tableSupportingAttachments, documentID, updates)
}
