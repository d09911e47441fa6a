package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perda-lpj-api/internal/dto"
	"github.com/noah-isme/perda-lpj-api/internal/middleware"
	"github.com/noah-isme/perda-lpj-api/internal/models"
	"github.com/noah-isme/perda-lpj-api/internal/service"
	appErrors "github.com/noah-isme/perda-lpj-api/pkg/errors"
	"github.com/noah-isme/perda-lpj-api/pkg/response"
)

type documentService interface {
	Create(ctx context.Context, req dto.CreateDocumentRequest) (*models.Document, error)
	List(ctx context.Context, query dto.DocumentQuery) ([]models.Document, *models.Pagination, error)
	Get(ctx context.Context, id string) (*dto.DocumentDetail, bool, error)
	Update(ctx context.Context, id string, req dto.UpdateDocumentRequest) (*models.Document, error)
	Delete(ctx context.Context, id string) error
	UploadBody(ctx context.Context, id string, upload service.PDFUpload) (*models.Document, error)
	DeleteBody(ctx context.Context, id string) (*models.Document, error)
}

// DocumentHandler exposes report document endpoints.
type DocumentHandler struct {
	service documentService
}

// NewDocumentHandler builds a new handler.
func NewDocumentHandler(service documentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Create godoc
// @Summary Create a report document
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body dto.CreateDocumentRequest true "Document payload"
// @Success 201 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	doc, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// List godoc
// @Summary List report documents
// @Tags Documents
// @Produce json
// @Param kind query string false "RAPERDA, PERDA, RAPERBUP or PERBUP"
// @Param tahun query int false "Fiscal year"
// @Param search query string false "Title search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	var query dto.DocumentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	docs, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, pagination)
}

// Get godoc
// @Summary Get a document with its attachments
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	detail, cacheHit, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, detail, nil, middleware.ExtractMeta(c))
}

// Update godoc
// @Summary Update document kind, year and title
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.UpdateDocumentRequest true "Document payload"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	var req dto.UpdateDocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	doc, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Delete godoc
// @Summary Delete a document and its files
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadBody godoc
// @Summary Upload or replace the batang tubuh PDF
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Document ID"
// @Param file formData file true "Body PDF"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/body [put]
func (h *DocumentHandler) UploadBody(c *gin.Context) {
	upload, closer, err := pdfUploadFromForm(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closer.Close() //nolint:errcheck
	doc, err := h.service.UploadBody(c.Request.Context(), c.Param("id"), *upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// DeleteBody godoc
// @Summary Remove the batang tubuh PDF
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/body [delete]
func (h *DocumentHandler) DeleteBody(c *gin.Context) {
	doc, err := h.service.DeleteBody(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}
