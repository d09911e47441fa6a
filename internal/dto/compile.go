package dto

import "github.com/noah-isme/perda-lpj-api/internal/models"

// CompileJobResponse is returned after enqueueing a compilation.
type CompileJobResponse struct {
	ID         string               `json:"id"`
	DocumentID string               `json:"documentId"`
	Status     models.CompileStatus `json:"status"`
	Progress   int                  `json:"progress"`
}

// CompileStatusResponse exposes job progress metadata.
type CompileStatusResponse struct {
	ID         string               `json:"id"`
	DocumentID string               `json:"documentId"`
	Status     models.CompileStatus `json:"status"`
	Progress   int                  `json:"progress"`
	PageCount  int                  `json:"pageCount,omitempty"`
	ResultURL  *string              `json:"resultUrl,omitempty"`
	Error      *string              `json:"error,omitempty"`
}
