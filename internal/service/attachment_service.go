package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/perda-lpj-api/internal/assembly"
	"github.com/noah-isme/perda-lpj-api/internal/dto"
	"github.com/noah-isme/perda-lpj-api/internal/models"
	appErrors "github.com/noah-isme/perda-lpj-api/pkg/errors"
)

type mainAttachmentStore interface {
	Create(ctx context.Context, att *models.MainAttachment) error
	GetByID(ctx context.Context, id string) (*models.MainAttachment, error)
	ListByDocument(ctx context.Context, documentID string) ([]models.MainAttachment, error)
	Update(ctx context.Context, att *models.MainAttachment) error
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, documentID string, updates []models.SequenceUpdate) error
}

type attachmentPreviewer interface {
	PreviewAttachment(ctx context.Context, kind models.ReportKind, year int, att assembly.Attachment) ([]byte, error)
}

// AttachmentServiceConfig tunes upload validation.
type AttachmentServiceConfig struct {
	MaxFileSize int64
}

// AttachmentService manages lampiran utama: upload, styling, ordering and preview.
type AttachmentService struct {
	docs      documentReader
	repo      mainAttachmentStore
	files     fileStorage
	previewer attachmentPreviewer
	cache     detailCache
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AttachmentServiceConfig
}

// NewAttachmentService constructs the service. cache may be nil.
func NewAttachmentService(docs documentReader, repo mainAttachmentStore, files fileStorage, previewer attachmentPreviewer, cache detailCache, validate *validator.Validate, logger *zap.Logger, cfg AttachmentServiceConfig) *AttachmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = defaultMaxUploadSize
	}
	return &AttachmentService{
		docs:      docs,
		repo:      repo,
		files:     files,
		previewer: previewer,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Create validates and stores a new attachment at the end of the document.
func (s *AttachmentService) Create(ctx context.Context, documentID string, req dto.MainAttachmentRequest, upload PDFUpload) (*models.MainAttachment, error) {
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
	att := &models.MainAttachment{
		DocumentID:  documentID,
		SizeBytes:   int64(len(data)),
		TotalSheets: src.PageCount(),
	}
	if err := applyMainRequest(att, req); err != nil {
		return nil, err
	}

	path, err := s.files.Save(storedFileName(documentID, "lampiran"), data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment file")
	}
	att.FilePath = path
	if err := s.repo.Create(ctx, att); err != nil {
		s.removeFile(documentID, path)
		return nil, mapStoreError(err, "failed to create attachment")
	}
	invalidateDocument(ctx, s.cache, s.logger, documentID)
	s.logger.Info("attachment created",
		zap.String("document_id", documentID),
		zap.String("attachment_id", att.ID),
		zap.Int("urutan", att.Urutan),
		zap.Bool("calk", att.IsCalk),
		zap.Int("pages", att.TotalSheets),
	)
	return att, nil
}

// Update replaces the metadata and, when upload is non-nil, the PDF itself.
func (s *AttachmentService) Update(ctx context.Context, documentID, id string, req dto.MainAttachmentRequest, upload *PDFUpload) (*models.MainAttachment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	att, err := s.Get(ctx, documentID, id)
	if err != nil {
		return nil, err
	}
	var data []byte
	if upload != nil {
		content, src, err := readPDF(*upload, s.cfg.MaxFileSize)
		if err != nil {
			return nil, err
		}
		data = content
		att.TotalSheets = src.PageCount()
		att.SizeBytes = int64(len(content))
	}
	if err := applyMainRequest(att, req); err != nil {
		return nil, err
	}

	previous := att.FilePath
	if data != nil {
		path, err := s.files.Save(storedFileName(documentID, "lampiran"), data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment file")
		}
		att.FilePath = path
	}
	if err := s.repo.Update(ctx, att); err != nil {
		if data != nil {
			s.removeFile(documentID, att.FilePath)
		}
		return nil, mapStoreError(err, "failed to update attachment")
	}
	if data != nil {
		s.removeFile(documentID, previous)
	}
	invalidateDocument(ctx, s.cache, s.logger, documentID)
	return att, nil
}

// Delete removes the attachment and renumbers the remaining ones.
func (s *AttachmentService) Delete(ctx context.Context, documentID, id string) error {
	att, err := s.Get(ctx, documentID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreError(err, "failed to delete attachment")
	}
	s.removeFile(documentID, att.FilePath)
	invalidateDocument(ctx, s.cache, s.logger, documentID)
	return nil
}

// List returns the attachments of a document in urutan order.
func (s *AttachmentService) List(ctx context.Context, documentID string) ([]models.MainAttachment, error) {
	if _, err := loadDocument(ctx, s.docs, documentID); err != nil {
		return nil, err
	}
	atts, err := s.repo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attachments")
	}
	return nonNilMains(atts), nil
}

// Get returns one attachment of the document.
func (s *AttachmentService) Get(ctx context.Context, documentID, id string) (*models.MainAttachment, error) {
	att, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attachment")
	}
	if att.DocumentID != documentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
	}
	return att, nil
}

// Move swaps the attachment with its neighbour. Moving the first item up or
// the last item down leaves the order unchanged.
func (s *AttachmentService) Move(ctx context.Context, documentID, id, direction string) ([]models.MainAttachment, error) {
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

// Reorder rewrites urutan for every attachment following ids.
func (s *AttachmentService) Reorder(ctx context.Context, documentID string, req dto.ReorderRequest) ([]models.MainAttachment, error) {
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

// Preview renders the attachment's divider and stamped pages, numbered from 1.
func (s *AttachmentService) Preview(ctx context.Context, documentID, id string) ([]byte, error) {
	doc, err := loadDocument(ctx, s.docs, documentID)
	if err != nil {
		return nil, err
	}
	att, err := s.Get(ctx, documentID, id)
	if err != nil {
		return nil, err
	}
	content, err := s.files.Read(att.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read attachment file")
	}
	out, err := s.previewer.PreviewAttachment(ctx, doc.Kind, doc.Year, assembly.NewAttachment(*att, content))
	if err != nil {
		return nil, decodeError(err)
	}
	return out, nil
}

// Download opens the stored PDF of the attachment.
func (s *AttachmentService) Download(ctx context.Context, documentID, id string) (*FileDownload, error) {
	att, err := s.Get(ctx, documentID, id)
	if err != nil {
		return nil, err
	}
	return openDownload(s.files, att.FilePath, fmt.Sprintf("lampiran_%s.pdf", sanitizeLabel(att.RomanLabel, att.Urutan)))
}

func (s *AttachmentService) applyOrder(ctx context.Context, documentID string, updates []models.SequenceUpdate) ([]models.MainAttachment, error) {
	if err := s.repo.Reorder(ctx, documentID, updates); err != nil {
		return nil, mapStoreError(err, "failed to reorder attachments")
	}
	invalidateDocument(ctx, s.cache, s.logger, documentID)
	return s.List(ctx, documentID)
}

func (s *AttachmentService) removeFile(documentID, path string) {
	if err := s.files.Delete(path); err != nil {
		s.logger.Warn("failed to delete stored file", zap.String("document_id", documentID), zap.String("path", path), zap.Error(err))
	}
}

// footerOffsetY returns the requested vertical offset, which may be zero, or
// the default when the form omits it.
func footerOffsetY(req dto.MainAttachmentRequest) float64 {
	if req.FooterY == nil {
		return models.DefaultFooterGeometry.OffsetY
	}
	return *req.FooterY
}

// applyMainRequest copies the request onto att and zeroes the fields of the
// styling that is not selected. att.TotalSheets must already hold the true
// page count of the PDF.
func applyMainRequest(att *models.MainAttachment, req dto.MainAttachmentRequest) error {
	att.RomanLabel = strings.ToUpper(strings.TrimSpace(req.RomanLabel))
	att.DividerTitle = strings.TrimSpace(req.DividerTitle)
	att.IsCalk = req.IsCalk

	if !req.IsCalk {
		att.FooterText = strings.TrimSpace(req.FooterText)
		att.FooterGeometry = models.FooterGeometry{
			WidthPercent: req.FooterWidth,
			OffsetX:      req.FooterX,
			OffsetY:      footerOffsetY(req),
			Height:       req.FooterHeight,
			FontSize:     req.FooterFontSize,
		}.WithDefaults()
		att.PageCount = att.TotalSheets
		att.Chapters = nil
		return nil
	}

	if req.PageCount <= 0 || req.PageCount > att.TotalSheets {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("jumlahHalaman must be between 1 and jumlahTotalLembar (%d), got %d", att.TotalSheets, req.PageCount))
	}
	chapters, err := parseChapters(req.Chapters)
	if err != nil {
		return err
	}
	att.FooterText = ""
	geom := models.FooterGeometry{OffsetX: req.FooterX, OffsetY: footerOffsetY(req), FontSize: req.FooterFontSize}.WithDefaults()
	att.FooterGeometry = models.FooterGeometry{OffsetX: geom.OffsetX, OffsetY: geom.OffsetY, FontSize: geom.FontSize}
	att.PageCount = req.PageCount
	att.Chapters = chapters.Clamped()
	return nil
}

func parseChapters(raw string) (models.CalkChapters, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.CalkChapters{}, nil
	}
	var chapters models.CalkChapters
	if err := json.Unmarshal([]byte(raw), &chapters); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "calkBab must be a JSON array of chapters")
	}
	for i, ch := range chapters {
		if strings.TrimSpace(ch.Title) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("calkBab[%d].judul is required", i))
		}
		for j, sub := range ch.SubChapters {
			if strings.TrimSpace(sub.Title) == "" {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("calkBab[%d].subbab[%d].judul is required", i, j))
			}
		}
	}
	return chapters, nil
}

func sanitizeLabel(label string, fallback int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("%d", fallback)
	}
	return b.String()
}

func openDownload(files fileStorage, path, filename string) (*FileDownload, error) {
	file, err := files.Open(path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open stored file")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read stored file metadata")
	}
	return &FileDownload{File: file, Filename: filename, SizeBytes: info.Size()}, nil
}
