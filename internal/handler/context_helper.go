package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perda-lpj-api/internal/service"
	appErrors "github.com/noah-isme/perda-lpj-api/pkg/errors"
	"github.com/noah-isme/perda-lpj-api/pkg/response"
)

const uploadField = "file"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// pdfUploadFromForm opens the multipart "file" field. When optional is true a
// missing field yields a nil upload instead of an error. The returned closer
// must be closed once the service call returns.
func pdfUploadFromForm(c *gin.Context, optional bool) (*service.PDFUpload, io.Closer, error) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		if optional && errors.Is(err, http.ErrMissingFile) {
			return nil, nopCloser{}, nil
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "file is required")
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload")
	}
	return &service.PDFUpload{Filename: header.Filename, Size: header.Size, Content: file}, file, nil
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid JSON payload"))
		return false
	}
	return true
}

func bindForm(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBind(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid form payload"))
		return false
	}
	return true
}

func serveDownload(c *gin.Context, download *service.FileDownload) {
	defer download.File.Close() //nolint:errcheck
	response.PDF(c, download.File, download.SizeBytes, download.Filename, false)
}
