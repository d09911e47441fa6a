package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/perda-lpj-api/internal/dto"
	"github.com/noah-isme/perda-lpj-api/internal/models"
	"github.com/noah-isme/perda-lpj-api/internal/repository"
	appErrors "github.com/noah-isme/perda-lpj-api/pkg/errors"
)

type documentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error)
	Update(ctx context.Context, doc *models.Document) error
	SetBody(ctx context.Context, id string, path *string, sizeBytes int64, pageCount int) error
	Delete(ctx context.Context, id string) error
}

type documentReader interface {
	GetByID(ctx context.Context, id string) (*models.Document, error)
}

type mainAttachmentLister interface {
	ListByDocument(ctx context.Context, documentID string) ([]models.MainAttachment, error)
}

type supportingAttachmentLister interface {
	ListByDocument(ctx context.Context, documentID string) ([]models.SupportingAttachment, error)
}

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Read(name string) ([]byte, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
}

type detailCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

func documentDetailKey(id string) string {
	return "documents:detail:" + id
}

// storedFileName builds the storage name of a new upload for a document.
func storedFileName(documentID, prefix string) string {
	return fmt.Sprintf("documents/%s/%s-%s.pdf", documentID, prefix, uuid.NewString())
}

// DocumentServiceConfig tunes uploads and caching.
type DocumentServiceConfig struct {
	MaxFileSize int64
	CacheTTL    time.Duration
}

// DocumentService manages report documents and their batang tubuh.
type DocumentService struct {
	docs       documentStore
	mains      mainAttachmentLister
	supporting supportingAttachmentLister
	files      fileStorage
	cache      detailCache
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        DocumentServiceConfig
}

// NewDocumentService constructs the service. cache may be nil.
func NewDocumentService(docs documentStore, mains mainAttachmentLister, supporting supportingAttachmentLister, files fileStorage, cache detailCache, validate *validator.Validate, logger *zap.Logger, cfg DocumentServiceConfig) *DocumentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = defaultMaxUploadSize
	}
	return &DocumentService{
		docs:       docs,
		mains:      mains,
		supporting: supporting,
		files:      files,
		cache:      cache,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// Create registers a new document without body or attachments.
func (s *DocumentService) Create(ctx context.Context, req dto.CreateDocumentRequest) (*models.Document, error) {
	req.Kind = models.ReportKind(strings.ToUpper(strings.TrimSpace(string(req.Kind))))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	doc := &models.Document{
		Kind:  req.Kind,
		Year:  req.Year,
		Title: strings.TrimSpace(req.Title),
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document")
	}
	s.logger.Info("document created", zap.String("document_id", doc.ID), zap.String("kind", string(doc.Kind)), zap.Int("year", doc.Year))
	return doc, nil
}

// List returns a page of documents.
func (s *DocumentService) List(ctx context.Context, query dto.DocumentQuery) ([]models.Document, *models.Pagination, error) {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	filter := models.DocumentFilter{
		Kind:   models.ReportKind(strings.ToUpper(string(query.Kind))),
		Year:   query.Year,
		Search: strings.TrimSpace(query.Search),
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown document kind")
	}
	docs, total, err := s.docs.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return docs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns the document with both attachment lists, served from cache when
// enabled. The boolean reports a cache hit.
func (s *DocumentService) Get(ctx context.Context, id string) (*dto.DocumentDetail, bool, error) {
	key := documentDetailKey(id)
	if s.cache != nil {
		var cached dto.DocumentDetail
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}
	doc, err := loadDocument(ctx, s.docs, id)
	if err != nil {
		return nil, false, err
	}
	mains, err := s.mains.ListByDocument(ctx, id)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attachments")
	}
	supporting, err := s.supporting.ListByDocument(ctx, id)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load supporting attachments")
	}
	detail := &dto.DocumentDetail{
		Document:              *doc,
		MainAttachments:       nonNilMains(mains),
		SupportingAttachments: nonNilSupporting(supporting),
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, detail, s.cfg.CacheTTL)
	}
	return detail, false, nil
}

// Update changes kind, fiscal year and title.
func (s *DocumentService) Update(ctx context.Context, id string, req dto.UpdateDocumentRequest) (*models.Document, error) {
	req.Kind = models.ReportKind(strings.ToUpper(strings.TrimSpace(string(req.Kind))))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	doc, err := loadDocument(ctx, s.docs, id)
	if err != nil {
		return nil, err
	}
	doc.Kind = req.Kind
	doc.Year = req.Year
	doc.Title = strings.TrimSpace(req.Title)
	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, mapStoreError(err, "failed to update document")
	}
	s.invalidate(ctx, id)
	return doc, nil
}

// Delete removes the document, its attachment rows and every stored file.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := loadDocument(ctx, s.docs, id)
	if err != nil {
		return err
	}
	paths := make([]string, 0, 8)
	if doc.HasBody() {
		paths = append(paths, *doc.BodyFilePath)
	}
	mains, err := s.mains.ListByDocument(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attachments")
	}
	for _, att := range mains {
		paths = append(paths, att.FilePath)
	}
	supporting, err := s.supporting.ListByDocument(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load supporting attachments")
	}
	for _, att := range supporting {
		paths = append(paths, att.FilePath)
	}

	if err := s.docs.Delete(ctx, id); err != nil {
		return mapStoreError(err, "failed to delete document")
	}
	s.removeFiles(id, paths...)
	s.invalidate(ctx, id)
	s.logger.Info("document deleted", zap.String("document_id", id), zap.Int("files", len(paths)))
	return nil
}

// UploadBody stores the batang tubuh PDF, replacing any previous one.
func (s *DocumentService) UploadBody(ctx context.Context, id string, upload PDFUpload) (*models.Document, error) {
	doc, err := loadDocument(ctx, s.docs, id)
	if err != nil {
		return nil, err
	}
	data, src, err := readPDF(upload, s.cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}
	path, err := s.files.Save(storedFileName(id, "body"), data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store body file")
	}
	size := int64(len(data))
	if err := s.docs.SetBody(ctx, id, &path, size, src.PageCount()); err != nil {
		s.removeFiles(id, path)
		return nil, mapStoreError(err, "failed to record body file")
	}
	if doc.HasBody() {
		s.removeFiles(id, *doc.BodyFilePath)
	}
	doc.BodyFilePath = &path
	doc.BodySizeBytes = size
	doc.BodyPageCount = src.PageCount()
	s.invalidate(ctx, id)
	s.logger.Info("body uploaded", zap.String("document_id", id), zap.Int("pages", doc.BodyPageCount))
	return doc, nil
}

// DeleteBody detaches and removes the batang tubuh PDF.
func (s *DocumentService) DeleteBody(ctx context.Context, id string) (*models.Document, error) {
	doc, err := loadDocument(ctx, s.docs, id)
	if err != nil {
		return nil, err
	}
	if !doc.HasBody() {
		return doc, nil
	}
	if err := s.docs.SetBody(ctx, id, nil, 0, 0); err != nil {
		return nil, mapStoreError(err, "failed to clear body file")
	}
	s.removeFiles(id, *doc.BodyFilePath)
	doc.BodyFilePath = nil
	doc.BodySizeBytes = 0
	doc.BodyPageCount = 0
	s.invalidate(ctx, id)
	return doc, nil
}

func (s *DocumentService) invalidate(ctx context.Context, id string) {
	invalidateDocument(ctx, s.cache, s.logger, id)
}

func (s *DocumentService) removeFiles(documentID string, paths ...string) {
	for _, path := range paths {
		if err := s.files.Delete(path); err != nil {
			s.logger.Warn("failed to delete stored file", zap.String("document_id", documentID), zap.String("path", path), zap.Error(err))
		}
	}
}

func loadDocument(ctx context.Context, docs documentReader, id string) (*models.Document, error) {
	doc, err := docs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

func invalidateDocument(ctx context.Context, cache detailCache, logger *zap.Logger, id string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, documentDetailKey(id)); err != nil {
		logger.Warn("failed to invalidate document cache", zap.String("document_id", id), zap.Error(err))
	}
}

func mapStoreError(err error, message string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.ErrNotFound
	case errors.Is(err, repository.ErrSequenceConflict):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "attachment order changed, reload and retry")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func nonNilMains(in []models.MainAttachment) []models.MainAttachment {
	if in == nil {
		return []models.MainAttachment{}
	}
	return in
}

func nonNilSupporting(in []models.SupportingAttachment) []models.SupportingAttachment {
	if in == nil {
		return []models.SupportingAttachment{}
	}
	return in
}
