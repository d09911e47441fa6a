package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/perda-lpj-api/internal/models"
)

const mainAttachmentColumns = `id, document_id, urutan, file_path, size_bytes, roman_label, divider_title, footer_text,
       footer_width, footer_x, footer_y, footer_height, footer_font_size, page_count, total_sheets,
       is_calk, calk_chapters, created_at, updated_at`

// MainAttachmentRepository persists lampiran utama rows.
type MainAttachmentRepository struct {
	db *sqlx.DB
}

// NewMainAttachmentRepository constructs the repository.
func NewMainAttachmentRepository(db *sqlx.DB) *MainAttachmentRepository {
	return &MainAttachmentRepository{db: db}
}

// Create appends the attachment at the end of its document (urutan n+1).
func (r *MainAttachmentRepository) Create(ctx context.Context, att *models.MainAttachment) (err error) {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	att.CreatedAt = now
	att.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create main attachment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if att.Urutan, err = nextSequence(ctx, tx, tableMainAttachments, att.DocumentID); err != nil {
		return err
	}
	const query = `INSERT INTO main_attachments (id, document_id, urutan, file_path, size_bytes, roman_label, divider_title, footer_text,
       footer_width, footer_x, footer_y, footer_height, footer_font_size, page_count, total_sheets,
       is_calk, calk_chapters, created_at, updated_at)
VALUES (:id, :document_id, :urutan, :file_path, :size_bytes, :roman_label, :divider_title, :footer_text,
       :footer_width, :footer_x, :footer_y, :footer_height, :footer_font_size, :page_count, :total_sheets,
       :is_calk, :calk_chapters, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, att); err != nil {
		return sequenceError("create main attachment", err)
	}
	if err = tx.Commit(); err != nil {
		return sequenceError("commit create main attachment", err)
	}
	return nil
}

// GetByID returns one attachment.
func (r *MainAttachmentRepository) GetByID(ctx context.Context, id string) (*models.MainAttachment, error) {
	const query = `SELECT ` + mainAttachmentColumns + ` FROM main_attachments WHERE id = $1`
	var att models.MainAttachment
	if err := r.db.GetContext(ctx, &att, query, id); err != nil {
		return nil, err
	}
	return &att, nil
}

// ListByDocument returns the attachments of a document in urutan order.
func (r *MainAttachmentRepository) ListByDocument(ctx context.Context, documentID string) ([]models.MainAttachment, error) {
	const query = `SELECT ` + mainAttachmentColumns + ` FROM main_attachments WHERE document_id = $1 ORDER BY urutan ASC`
	var atts []models.MainAttachment
	if err := r.db.SelectContext(ctx, &atts, query, documentID); err != nil {
		return nil, fmt.Errorf("list main attachments: %w", err)
	}
	return atts, nil
}

// Update persists labels, footer geometry, CALK structure and file fields.
// urutan is managed by Reorder and Delete only.
func (r *MainAttachmentRepository) Update(ctx context.Context, att *models.MainAttachment) error {
	att.UpdatedAt = time.Now().UTC()
	const query = `UPDATE main_attachments SET file_path = :file_path, size_bytes = :size_bytes, roman_label = :roman_label,
       divider_title = :divider_title, footer_text = :footer_text, footer_width = :footer_width, footer_x = :footer_x,
       footer_y = :footer_y, footer_height = :footer_height, footer_font_size = :footer_font_size,
       page_count = :page_count, total_sheets = :total_sheets, is_calk = :is_calk, calk_chapters = :calk_chapters,
       updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, att)
	if err != nil {
		return fmt.Errorf("update main attachment: %w", err)
	}
	return expectAffected(res, "update main attachment")
}

// Delete removes the attachment and closes the gap in urutan.
func (r *MainAttachmentRepository) Delete(ctx context.Context, id string) error {
	return deleteAndResequence(ctx, r.db, tableMainAttachments, id)
}

// Reorder writes the given urutan values atomically.
func (r *MainAttachmentRepository) Reorder(ctx context.Context, documentID string, updates []models.SequenceUpdate) error {
	return applySequences(ctx, r.db, tableMainAttachments, documentID, updates)
}
