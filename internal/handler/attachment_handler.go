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

type attachmentService interface {
	Create(ctx context.Context, documentID string, req dto.MainAttachmentRequest, upload service.PDFUpload) (*models.MainAttachment, error)
	Update(ctx context.Context, documentID, id string, req dto.MainAttachmentRequest, upload *service.PDFUpload) (*models.MainAttachment, error)
	Delete(ctx context.Context, documentID, id string) error
	List(ctx context.Context, documentID string) ([]models.MainAttachment, error)
	Move(ctx context.Context, documentID, id, direction string) ([]models.MainAttachment, error)
	Reorder(ctx context.Context, documentID string, req dto.ReorderRequest) ([]models.MainAttachment, error)
	Preview(ctx context.Context, documentID, id string) ([]byte, error)
	Download(ctx context.Context, documentID, id string) (*service.FileDownload, error)
}

// AttachmentHandler exposes lampiran utama endpoints.
type AttachmentHandler struct {
	service attachmentService
}

// NewAttachmentHandler builds a new handler.
func NewAttachmentHandler(service attachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// List godoc
// @Summary List main attachments in urutan order
// @Tags Attachments
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/attachments [get]
func (h *AttachmentHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Upload a main attachment
// @Description Standard attachments take footerText and footer geometry. CALK attachments
// @Description (isCalk=true) take jumlahHalaman and the chapter index as a JSON string in calkBab.
// @Tags Attachments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Document ID"
// @Param file formData file true "Attachment PDF"
// @Param romawiLampiran formData string true "Roman numeral label"
// @Param judulPembatas formData string true "Divider title"
// @Param isCalk formData bool false "CALK attachment"
// @Param jumlahHalaman formData int false "Last CALK page number"
// @Param calkBab formData string false "CALK chapters (JSON)"
// @Success 201 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /documents/{id}/attachments [post]
func (h *AttachmentHandler) Create(c *gin.Context) {
	var req dto.MainAttachmentRequest
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
// @Summary Update a main attachment, optionally replacing its PDF
// @Tags Attachments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Document ID"
// @Param attachmentId path string true "Attachment ID"
// @Param file formData file false "Replacement PDF"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/attachments/{attachmentId} [put]
func (h *AttachmentHandler) Update(c *gin.Context) {
	var req dto.MainAttachmentRequest
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
// @Summary Delete a main attachment
// @Tags Attachments
// @Param id path string true "Document ID"
// @Param attachmentId path string true "Attachment ID"
// @Success 204
// @Router /documents/{id}/attachments/{attachmentId} [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), c.Param("attachmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Move godoc
// @Summary Move a main attachment one position up or down
// @Tags Attachments
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param attachmentId path string true "Attachment ID"
// @Param payload body dto.MoveRequest true "Direction"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/attachments/{attachmentId}/move [post]
func (h *AttachmentHandler) Move(c *gin.Context) {
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
// @Summary Rewrite the order of all main attachments
// @Tags Attachments
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.ReorderRequest true "Attachment ids in the new order"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/attachments/order [put]
func (h *AttachmentHandler) Reorder(c *gin.Context) {
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

// Preview godoc
// @Summary Render one attachment with its divider and footers
// @Tags Attachments
// @Produce application/pdf
// @Param id path string true "Document ID"
// @Param attachmentId path string true "Attachment ID"
// @Success 200 {file} binary
// @Router /documents/{id}/attachments/{attachmentId}/preview [get]
func (h *AttachmentHandler) Preview(c *gin.Context) {
	out, err := h.service.Preview(c.Request.Context(), c.Param("id"), c.Param("attachmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", out)
}

// Download godoc
// @Summary Download the uploaded attachment PDF
// @Tags Attachments
// @Produce application/pdf
// @Param id path string true "Document ID"
// @Param attachmentId path string true "Attachment ID"
// @Success 200 {file} binary
// @Router /documents/{id}/attachments/{attachmentId}/file [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	download, err := h.service.Download(c.Request.Context(), c.Param("id"), c.Param("attachmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, download)
}
