package service

import (
	"errors"
	"fmt"
	"io"

	appErrors "github.com/noah-isme/perda-lpj-api/pkg/errors"
	"github.com/noah-isme/perda-lpj-api/pkg/pdfdoc"
)

const defaultMaxUploadSize = 50 * 1024 * 1024

// PDFUpload is an uploaded file as received from a multipart form.
type PDFUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// FileDownload is an opened stored file ready for streaming.
type FileDownload struct {
	File      io.ReadCloser
	Filename  string
	SizeBytes int64
}

// readPDF loads the upload, rejects anything that is not a readable PDF and
// returns the bytes to store with the decoded page structure. The stored bytes
// are the importable rendition produced by pdfdoc.Decode.
func readPDF(upload PDFUpload, maxSize int64) ([]byte, *pdfdoc.Source, error) {
	if upload.Content == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if maxSize <= 0 {
		maxSize = defaultMaxUploadSize
	}
	if upload.Size > maxSize {
		return nil, nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes limit", maxSize))
	}
	data, err := io.ReadAll(io.LimitReader(upload.Content, maxSize+1))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	if len(data) == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if int64(len(data)) > maxSize {
		return nil, nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes limit", maxSize))
	}
	if !pdfdoc.IsPDF(data) {
		return nil, nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, fmt.Sprintf("unsupported file type %s, only application/pdf is accepted", pdfdoc.DetectMIME(data)))
	}
	src, err := pdfdoc.Decode(data)
	if err != nil {
		return nil, nil, decodeError(err)
	}
	if err := pdfdoc.CheckImport(src); err != nil {
		return nil, nil, decodeError(err)
	}
	return src.Bytes(), src, nil
}

// decodeError maps pdf decode failures onto the API error taxonomy.
func decodeError(err error) error {
	if errors.Is(err, pdfdoc.ErrDecode) {
		return appErrors.Wrap(err, appErrors.ErrPDFDecode.Code, appErrors.ErrPDFDecode.Status, appErrors.ErrPDFDecode.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to process pdf")
}
