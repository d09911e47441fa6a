package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/perda-lpj-api/internal/models"
)

const compileJobColumns = `id, document_id, status, progress, page_count, result_url, error_message, created_at, finished_at`

// CompileJobRepository persists compile job metadata.
type CompileJobRepository struct {
	db *sqlx.DB
}

// NewCompileJobRepository constructs the repository.
func NewCompileJobRepository(db *sqlx.DB) *CompileJobRepository {
	return &CompileJobRepository{db: db}
}

// Create inserts a new job row with generated defaults.
func (r *CompileJobRepository) Create(ctx context.Context, job *models.CompileJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.CompileStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO compile_jobs (` + compileJobColumns + `)
VALUES (:id, :document_id, :status, :progress, :page_count, :result_url, :error_message, :created_at, :finished_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create compile job: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier.
func (r *CompileJobRepository) GetByID(ctx context.Context, id string) (*models.CompileJob, error) {
	const query = `SELECT ` + compileJobColumns + ` FROM compile_jobs WHERE id = $1`
	var job models.CompileJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("get compile job: %w", err)
	}
	return &job, nil
}

// UpdateCompileJobParams defines the mutable fields.
type UpdateCompileJobParams struct {
	Status       *models.CompileStatus
	Progress     *int
	PageCount    *int
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update persists the provided changes for a job row.
func (r *CompileJobRepository) Update(ctx context.Context, id string, params UpdateCompileJobParams) error {
	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.Progress != nil {
		add("progress", *params.Progress)
	}
	if params.PageCount != nil {
		add("page_count", *params.PageCount)
	}
	if params.ResultURL != nil {
		add("result_url", *params.ResultURL)
	}
	if params.ErrorMessage != nil {
		add("error_message", *params.ErrorMessage)
	}
	if params.FinishedAt != nil {
		add("finished_at", *params.FinishedAt)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE compile_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update compile job: %w", err)
	}
	return nil
}

// ListQueued fetches QUEUED and interrupted PROCESSING jobs for recovery after
// a restart.
func (r *CompileJobRepository) ListQueued(ctx context.Context, limit int) ([]models.CompileJob, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT ` + compileJobColumns + ` FROM compile_jobs WHERE status IN ('QUEUED', 'PROCESSING') ORDER BY created_at ASC LIMIT $1`
	var jobs []models.CompileJob
	if err := r.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("list queued compile jobs: %w", err)
	}
	return jobs, nil
}

// ListFinishedBefore retrieves completed jobs finished before cutoff.
func (r *CompileJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.CompileJob, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT ` + compileJobColumns + ` FROM compile_jobs WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2`
	var jobs []models.CompileJob
	if err := r.db.SelectContext(ctx, &jobs, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list finished compile jobs: %w", err)
	}
	return jobs, nil
}
