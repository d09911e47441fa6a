package handler

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perda-lpj-api/internal/dto"
	"github.com/noah-isme/perda-lpj-api/internal/service"
	appErrors "github.com/noah-isme/perda-lpj-api/pkg/errors"
	"github.com/noah-isme/perda-lpj-api/pkg/response"
)

type compileService interface {
	Enqueue(ctx context.Context, documentID string) (*dto.CompileJobResponse, error)
	Status(ctx context.Context, id string) (*dto.CompileStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.CompileDownload, error)
	CompileNow(ctx context.Context, documentID string) ([]byte, error)
}

// CompileHandler exposes compilation endpoints.
type CompileHandler struct {
	service compileService
}

// NewCompileHandler builds a new handler.
func NewCompileHandler(service compileService) *CompileHandler {
	return &CompileHandler{service: service}
}

// Compile godoc
// @Summary Queue compilation of a document into one PDF
// @Tags Compile
// @Produce json
// @Param id path string true "Document ID"
// @Success 202 {object} response.Envelope
// @Router /documents/{id}/compile [post]
func (h *CompileHandler) Compile(c *gin.Context) {
	resp, err := h.service.Enqueue(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, resp)
}

// Status godoc
// @Summary Compile job status
// @Tags Compile
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /compile-jobs/{jobId} [get]
func (h *CompileHandler) Status(c *gin.Context) {
	resp, err := h.service.Status(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Preview godoc
// @Summary Compile a document synchronously and stream it inline
// @Tags Compile
// @Produce application/pdf
// @Param id path string true "Document ID"
// @Success 200 {file} binary
// @Failure 422 {object} response.Envelope
// @Router /documents/{id}/preview [get]
func (h *CompileHandler) Preview(c *gin.Context) {
	out, err := h.service.CompileNow(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.PDF(c, bytes.NewReader(out), int64(len(out)), service.CompiledFilename, true)
}

// Export godoc
// @Summary Download a compiled report via signed token
// @Tags Compile
// @Produce application/pdf
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /export/{token} [get]
func (h *CompileHandler) Export(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	download, err := h.service.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck
	var size int64
	if info, err := download.File.Stat(); err == nil {
		size = info.Size()
	}
	response.PDF(c, download.File, size, download.Filename, false)
}
