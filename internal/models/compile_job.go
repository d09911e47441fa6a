package models

import "time"

// CompileStatus captures compile job lifecycle states.
type CompileStatus string

const (
	CompileStatusQueued     CompileStatus = "QUEUED"
	CompileStatusProcessing CompileStatus = "PROCESSING"
	CompileStatusFinished   CompileStatus = "FINISHED"
	CompileStatusFailed     CompileStatus = "FAILED"
)

// CompileJob is a persisted request to assemble a document's final PDF.
type CompileJob struct {
	ID           string        `db:"id" json:"id"`
	DocumentID   string        `db:"document_id" json:"documentId"`
	Status       CompileStatus `db:"status" json:"status"`
	Progress     int           `db:"progress" json:"progress"`
	PageCount    int           `db:"page_count" json:"pageCount"`
	ResultURL    *string       `db:"result_url" json:"resultUrl,omitempty"`
	ErrorMessage *string       `db:"error_message" json:"errorMessage,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
	FinishedAt   *time.Time    `db:"finished_at" json:"finishedAt,omitempty"`
}
