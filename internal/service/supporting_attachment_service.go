package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/perda-lpj-api/internal/dto"
	"github.com/noah-isme/perda-lpj-api/internal/models"
	appErrors "github.com/noah-isme/perda-lpj-api/pkg/errors"
)

type supportingAttachmentStore interface {
	Create(ctx context.Context, att *models.SupportingAttachment) error
	GetByID(ctx context.Context, id string) (*models.SupportingAttachment, error)
	ListByDocument(ctx context.Context, documentID string) ([]models.SupportingAttachment, error)
	Update(ctx context.Context, att *models.SupportingAttachment) error
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, documentID string, updates []models.SequenceUpdate) error
}

// SupportingAttachmentService manages lampiran pendukung. They are stored and
// ordered like main attachments but never stamped or compiled.
type SupportingAttachmentService struct {
	docs      documentReader
	repo      supportingAttachmentStore
	files     fileStorage
	cache     detailCache
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AttachmentServiceConfig
}

// NewSupportingAttachmentService constructs the service. cache may be nil.
func NewSupportingAttachmentService(docs documentReader, repo supportingAttachmentStore, files fileStorage, cache detailCache, validate *validator.Validate, logger *zap.Logger, cfg AttachmentServiceConfig) *SupportingAttachmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = defaultMaxUploadSize
	}
	return &SupportingAttachmentService{
		docs:      docs,
		repo:      repo,
		files:     files,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Create stores a new supporting attachment at the end of the document.
func (s *SupportingAttachmentService) Create(ctx context.Context, documentID string, req dto.SupportingAttachmentRequest, upload PDFUpload) (*models.SupportingAttachment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := loadDocument(ctx, s.docs, documentID); err != nil {
		return nil, err
	}
	data, src, err := readPDF(upload, s.cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}
	path, err := s.files.Save(storedFileName(documentID, "pendukung"), data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment file")
	}
	att := &models.SupportingAttachment{
		DocumentID:  documentID,
		Title:       strings.TrimSpace(req.Title),
		FilePath:    path,
		SizeBytes:   int64(len(data)),
		TotalSheets: src.PageCount(),
	}
	if err := s.repo.Create(ctx, att); err != nil {
		s.removeFile(documentID, path)
		return nil, mapStoreError(err, "failed to create supporting attachment")
	}
	invalidateDocument(ctx, s.cache, s.logger, documentID)
	s.logger.Info("supporting attachment created", zap.String("document_id", documentID), zap.String("attachment_id", att.ID), zap.Int("pages", att.TotalSheets))
	return att, nil
}

// Update changes the title and, when upload is non-nil, replaces the PDF.
func (s *SupportingAttachmentService) Update(ctx context.Context, documentID, id string, req dto.SupportingAttachmentRequest, upload *PDFUpload) (*models.SupportingAttachment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	att, err := s.Get(ctx, documentID, id)
	if err != nil {
		return nil, err
	}
	att.Title = strings.TrimSpace(req.Title)
	previous := att.FilePath
	replaced := false
	if upload != nil {
		data, src, err := readPDF(*upload, s.cfg.MaxFileSize)
		if err != nil {
			return nil, err
		}
		path, err := s.files.Save(storedFileName(documentID, "pendukung"), data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment file")
		}
		att.FilePath = path
		att.SizeBytes = int64(len(data))
		att.TotalSheets = src.PageCount()
		replaced = true
	}
	if err := s.repo.Update(ctx, att); err != nil {
		if replaced {
			s.removeFile(documentID, att.FilePath)
		}
		return nil, mapStoreError(err, "failed to update supporting attachment")
	}
	if replaced {
		s.removeFile(documentID, previous)
	}
	invalidateDocument(ctx, s.cache, s.logger, documentID)
	return att, nil
}

// Delete removes the attachment and renumbers the remaining ones.
func (s *SupportingAttachmentService) Delete(ctx context.Context, documentID, id string) error {
	att, err := s.Get(ctx, documentID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreError(err, "failed to delete supporting attachment")
	}
	s.removeFile(documentID, att.FilePath)
	invalidateDocument(ctx, s.cache, s.logger, documentID)
	return nil
}

// List returns the supporting attachments of a document in urutan order.
func (s *SupportingAttachmentService) List(ctx context.Context, documentID string) ([]models.SupportingAttachment, error) {
	if _, err := loadDocument(ctx, s.docs, documentID); err != nil {
		return nil, err
	}
	atts, err := s.repo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list supporting attachments")
	}
	return nonNilSupporting(atts), nil
}

// Get returns one supporting attachment of the document.
func (s *SupportingAttachmentService) Get(ctx context.Context, documentID, id string) (*models.SupportingAttachment, error) {
	att, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "supporting attachment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load supporting attachment")
	}
	if att.DocumentID != documentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "supporting attachment not found")
	}
	return att, nil
}

// Move swaps the attachment with its neighbour.
func (s *SupportingAttachmentService) Move(ctx context.Context, documentID, id, direction string) ([]models.SupportingAttachment, error) {
	atts, err := s.List(ctx, documentID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(atts))
	for i, att := range atts {
		ids[i] = att.ID
	}
	updates, err := moveUpdates(ids, id, direction)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return atts, nil
	}
	return s.applyOrder(ctx, documentID, updates)
}

// Reorder rewrites urutan for every supporting attachment following ids.
func (s *SupportingAttachmentService) Reorder(ctx context.Context, documentID string, req dto.ReorderRequest) ([]models.SupportingAttachment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	atts, err := s.List(ctx, documentID)
	if err != nil {
		return nil, err
	}
	current := make([]string, len(atts))
	for i, att := range atts {
		current[i] = att.ID
	}
	updates, err := reorderUpdates(current, req.IDs)
	if err != nil {
		return nil, err
	}
	return s.applyOrder(ctx, documentID, updates)
}

// Download opens the stored PDF.
func (s *SupportingAttachmentService) Download(ctx context.Context, documentID, id string) (*FileDownload, error) {
	att, err := s.Get(ctx, documentID, id)
	if err != nil {
		return nil, err
	}
	return openDownload(s.files, att.FilePath, fmt.Sprintf("lampiran_pendukung_%d.pdf", att.Urutan))
}

func (s *SupportingAttachmentService) applyOrder(ctx context.Context, documentID string, updates []models.SequenceUpdate) ([]models.SupportingAttachment, error) {
	if err := s.repo.Reorder(ctx, documentID, updates); err != nil {
		return nil, mapStoreError(err, "failed to reorder supporting attachments")
	}
	invalidateDocument(ctx, s.cache, s.logger, documentID)
	return s.List(ctx, documentID)
}

func (s *SupportingAttachmentService) removeFile(documentID, path string) {
	if err := s.files.Delete(path); err != nil {
		s.logger.Warn("failed to delete stored file", zap.String("document_id", documentID), zap.String("path", path), zap.Error(err))
	}
}
