package dto

import "github.com/noah-isme/perda-lpj-api/internal/models"

// CreateDocumentRequest is the payload of POST /documents.
type CreateDocumentRequest struct {
	Kind  models.ReportKind `json:"kind" validate:"required,oneof=RAPERDA PERDA RAPERBUP PERBUP"`
	Year  int               `json:"tahun" validate:"required,gte=2000,lte=2100"`
	Title string            `json:"title" validate:"max=255"`
}

// UpdateDocumentRequest is the payload of PUT /documents/:id.
type UpdateDocumentRequest struct {
	Kind  models.ReportKind `json:"kind" validate:"required,oneof=RAPERDA PERDA RAPERBUP PERBUP"`
	Year  int               `json:"tahun" validate:"required,gte=2000,lte=2100"`
	Title string            `json:"title" validate:"max=255"`
}

// DocumentQuery captures listing query parameters.
type DocumentQuery struct {
	Kind     models.ReportKind `form:"kind"`
	Year     int               `form:"tahun"`
	Search   string            `form:"search"`
	Page     int               `form:"page"`
	PageSize int               `form:"page_size"`
}

// DocumentDetail is a document with its ordered attachments.
type DocumentDetail struct {
	models.Document
	MainAttachments       []models.MainAttachment       `json:"lampiranUtama"`
	SupportingAttachments []models.SupportingAttachment `json:"lampiranPendukung"`
}
