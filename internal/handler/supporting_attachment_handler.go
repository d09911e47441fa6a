package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perda-lpj-api/internal/dto"
	"github.com/noah-isme/perda-lpj-api/internal/models"
	"github.com/noah-isme/perda-lpj-api/internal/service"
	"github.com/noah-isme/perda-lpj-api/pkg/response"
)

type supportingAttachmentService interface {
	Create(ctx context.Context, documentID string, req dto.SupportingAttachmentRequest, upload service.PDFUpload) (*models.SupportingAttachment, error)
	Update(ctx context.Context, documentID, id string, req dto.SupportingAttachmentRequest, upload *service.PDFUpload) (*models.SupportingAttachment, error)
	Delete(ctx context.Context, documentID, id string) error
	List(ctx context.Context, documentID string) ([]models.SupportingAttachment, error)
	Move(ctx context.Context, documentID, id, direction string) ([]models.SupportingAttachment, error)
	Reorder(ctx context.Context, documentID string, req dto.ReorderRequest) ([]models.SupportingAttachment, error)
	Download(ctx context.Context, documentID, id string) (*service.FileDownload, error)
}

// SupportingAttachmentHandler exposes lampiran pendukung endpoints.
type SupportingAttachmentHandler struct {
	service supportingAttachmentService
}

// NewSupportingAttachmentHandler builds a new handler.
func NewSupportingAttachmentHandler(service supportingAttachmentService) *SupportingAttachmentHandler {
	return &SupportingAttachmentHandler{service: service}
}

// List godoc
// @Summary List supporting attachments
// @Tags SupportingAttachments
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/supporting-attachments [get]
func (h *SupportingAttachmentHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Upload a supporting attachment
// @Tags SupportingAttachments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Document ID"
// @Param file formData file true "Attachment PDF"
// @Param title formData string true "Title"
// @Success 201 {object} response.Envelope
// @Router /documents/{id}/supporting-attachments [post]
func (h *SupportingAttachmentHandler) Create(c *gin.Context) {
	var req dto.SupportingAttachmentRequest
	if !bindForm(c, &req) {
		return
	}
	upload, closer, err := pdfUploadFromForm(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closer.Close() //nolint:errcheck
	att, err := h.service.Create(c.Request.Context(), c.Param("id"), req, *upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, att)
}

// Update godoc
// @Summary Rename a supporting attachment, optionally replacing its PDF
// @Tags SupportingAttachments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Document ID"
// @Param attachmentId path string true "Attachment ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/supporting-attachments/{attachmentId} [put]
func (h *SupportingAttachmentHandler) Update(c *gin.Context) {
	var req dto.SupportingAttachmentRequest
	if !bindForm(c, &req) {
		return
	}
	upload, closer, err := pdfUploadFromForm(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closer.Close() //nolint:errcheck
	att, err := h.service.Update(c.Request.Context(), c.Param("id"), c.Param("attachmentId"), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, att, nil)
}

// Delete godoc
// @Summary Delete a supporting attachment
// @Tags SupportingAttachments
// @Param id path string true "Document ID"
// @Param attachmentId path string true "Attachment ID"
// @Success 204
// @Router /documents/{id}/supporting-attachments/{attachmentId} [delete]
func (h *SupportingAttachmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), c.Param("attachmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Move godoc
// @Summary Move a supporting attachment one position
// @Tags SupportingAttachments
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param attachmentId path string true "Attachment ID"
// @Param payload body dto.MoveRequest true "Direction"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/supporting-attachments/{attachmentId}/move [post]
func (h *SupportingAttachmentHandler) Move(c *gin.Context) {
	var req dto.MoveRequest
	if !bindJSON(c, &req) {
		return
	}
	items, err := h.service.Move(c.Request.Context(), c.Param("id"), c.Param("attachmentId"), req.Direction)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Reorder godoc
// @Summary Rewrite the order of all supporting attachments
// @Tags SupportingAttachments
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.ReorderRequest true "Attachment ids in the new order"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/supporting-attachments/order [put]
func (h *SupportingAttachmentHandler) Reorder(c *gin.Context) {
	var req dto.ReorderRequest
	if !bindJSON(c, &req) {
		return
	}
	items, err := h.service.Reorder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Download godoc
// @Summary Download a supporting attachment PDF
// @Tags SupportingAttachments
// @Produce application/pdf
// @Param id path string true "Document ID"
// @Param attachmentId path string true "Attachment ID"
// @Success 200 {file} binary
// @Router /documents/{id}/supporting-attachments/{attachmentId}/file [get]
func (h *SupportingAttachmentHandler) Download(c *gin.Context) {
	download, err := h.service.Download(c.Request.Context(), c.Param("id"), c.Param("attachmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, download)
}
