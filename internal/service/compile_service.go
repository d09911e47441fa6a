package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/perda-lpj-api/internal/assembly"
	"github.com/noah-isme/perda-lpj-api/internal/dto"
	"github.com/noah-isme/perda-lpj-api/internal/models"
	"github.com/noah-isme/perda-lpj-api/internal/repository"
	appErrors "github.com/noah-isme/perda-lpj-api/pkg/errors"
	"github.com/noah-isme/perda-lpj-api/pkg/jobs"
	"github.com/noah-isme/perda-lpj-api/pkg/pdfdoc"
)

// CompileJobType tags compile jobs on the queue.
const CompileJobType = "compile"

// errCompilePanic marks a compile run that panicked. Such jobs are failed at
// once instead of retried.
var errCompilePanic = errors.New("compile panicked")

type compileJobStore interface {
	Create(ctx context.Context, job *models.CompileJob) error
	GetByID(ctx context.Context, id string) (*models.CompileJob, error)
	Update(ctx context.Context, id string, params repository.UpdateCompileJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.CompileJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.CompileJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type reportAssembler interface {
	Assemble(ctx context.Context, req assembly.Request) ([]byte, error)
}

type resultStore interface {
	Store(jobID, documentID string, payload []byte) (*CompileResult, error)
	ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
	Cleanup(ttl time.Duration) ([]string, error)
}

type compileMetrics interface {
	ObserveCompile(duration time.Duration, pages int, err error)
}

// CompileServiceConfig governs queue recovery and cleanup.
type CompileServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// CompileDownload aggregates resolved download data.
type CompileDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

// CompileService loads a document's sources, runs the assembler and manages
// compile jobs and their results.
type CompileService struct {
	jobs      compileJobStore
	docs      documentReader
	mains     mainAttachmentLister
	files     fileStorage
	assembler reportAssembler
	results   resultStore
	queue     jobDispatcher
	metrics   compileMetrics
	logger    *zap.Logger
	cfg       CompileServiceConfig
}

// NewCompileService constructs the compile service. metrics may be nil.
func NewCompileService(jobStore compileJobStore, docs documentReader, mains mainAttachmentLister, files fileStorage, assembler reportAssembler, results resultStore, queue jobDispatcher, metrics compileMetrics, logger *zap.Logger, cfg CompileServiceConfig) *CompileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &CompileService{
		jobs:      jobStore,
		docs:      docs,
		mains:     mains,
		files:     files,
		assembler: assembler,
		results:   results,
		queue:     queue,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// Enqueue persists a compile job for the document and hands it to the queue.
func (s *CompileService) Enqueue(ctx context.Context, documentID string) (*dto.CompileJobResponse, error) {
	if _, err := loadDocument(ctx, s.docs, documentID); err != nil {
		return nil, err
	}
	job := &models.CompileJob{
		DocumentID: documentID,
		Status:     models.CompileStatusQueued,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create compile job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: CompileJobType}); err != nil {
		status := models.CompileStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		progress := 100
		_ = s.jobs.Update(ctx, job.ID, repository.UpdateCompileJobParams{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to enqueue compile job")
	}
	s.logger.Info("compile job queued", zap.String("job_id", job.ID), zap.String("document_id", documentID))
	return &dto.CompileJobResponse{ID: job.ID, DocumentID: documentID, Status: job.Status, Progress: job.Progress}, nil
}

// Status exposes job metadata to clients.
func (s *CompileService) Status(ctx context.Context, id string) (*dto.CompileStatusResponse, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "compile job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load compile job")
	}
	resp := &dto.CompileStatusResponse{
		ID:         job.ID,
		DocumentID: job.DocumentID,
		Status:     job.Status,
		Progress:   job.Progress,
		PageCount:  job.PageCount,
		ResultURL:  job.ResultURL,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload validates token and opens the compiled report.
func (s *CompileService) ResolveDownload(ctx context.Context, token string) (*CompileDownload, error) {
	jobID, relPath, expiresAt, err := s.results.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load compile job")
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.CompileStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "compiled report not ready")
	}
	file, err := s.results.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open compiled report")
	}
	return &CompileDownload{File: file, Filename: CompiledFilename, ExpiresAt: expiresAt}, nil
}

// CompileNow assembles the document synchronously without storing the result.
func (s *CompileService) CompileNow(ctx context.Context, documentID string) ([]byte, error) {
	out, _, err := s.compile(ctx, documentID)
	if err != nil {
		return nil, publicCompileError(err)
	}
	return out, nil
}

// Generate compiles the job's document and stores the result.
func (s *CompileService) Generate(ctx context.Context, job *models.CompileJob) (*CompileResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	out, pages, err := s.compile(ctx, job.DocumentID)
	if err != nil {
		return nil, err
	}
	result, err := s.results.Store(job.ID, job.DocumentID, out)
	if err != nil {
		return nil, err
	}
	result.PageCount = pages
	return result, nil
}

func (s *CompileService) compile(ctx context.Context, documentID string) ([]byte, int, error) {
	start := time.Now()
	req, err := s.loadRequest(ctx, documentID)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.assembler.Assemble(ctx, *req)
	pages := 0
	if err == nil {
		pages, err = pdfdoc.CountPages(out)
	}
	if s.metrics != nil {
		s.metrics.ObserveCompile(time.Since(start), pages, err)
	}
	if err != nil {
		s.logger.Warn("compile failed", zap.String("document_id", documentID), zap.Error(err))
		return nil, 0, err
	}
	s.logger.Info("document compiled",
		zap.String("document_id", documentID),
		zap.Int("attachments", len(req.Attachments)),
		zap.Int("pages", pages),
		zap.Duration("duration", time.Since(start)),
	)
	return out, pages, nil
}

// loadRequest reads the document, its body and main attachments from storage.
func (s *CompileService) loadRequest(ctx context.Context, documentID string) (*assembly.Request, error) {
	doc, err := loadDocument(ctx, s.docs, documentID)
	if err != nil {
		return nil, err
	}
	req := &assembly.Request{Kind: doc.Kind, Year: doc.Year}
	if doc.HasBody() {
		body, err := s.files.Read(*doc.BodyFilePath)
		if err != nil {
			return nil, fmt.Errorf("read body file: %w", err)
		}
		req.Body = body
	}
	rows, err := s.mains.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	req.Attachments = make([]assembly.Attachment, 0, len(rows))
	for _, row := range rows {
		content, err := s.files.Read(row.FilePath)
		if err != nil {
			return nil, fmt.Errorf("read lampiran %s: %w", row.RomanLabel, err)
		}
		req.Attachments = append(req.Attachments, assembly.NewAttachment(row, content))
	}
	return req, nil
}

// RecoverPendingJobs replays jobs left QUEUED or PROCESSING by a previous
// process. Interrupted jobs are put back to QUEUED first.
func (s *CompileService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.jobs.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover queued compile jobs", "error", err)
		return
	}
	for _, job := range pending {
		if job.Status == models.CompileStatusProcessing {
			queued := models.CompileStatusQueued
			reset := 0
			if err := s.jobs.Update(ctx, job.ID, repository.UpdateCompileJobParams{Status: &queued, Progress: &reset}); err != nil {
				s.logger.Sugar().Warnw("failed to reset interrupted job", "job_id", job.ID, "error", err)
				continue
			}
		}
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: CompileJobType}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue pending job", "job_id", job.ID, "error", err)
		}
	}
}

// StartCleanup boots a goroutine that purges expired results periodically.
func (s *CompileService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *CompileService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	for {
		finished, err := s.jobs.ListFinishedBefore(ctx, cutoff, 100)
		if err != nil {
			s.logger.Sugar().Warnw("cleanup list failed", "error", err)
			return
		}
		for _, job := range finished {
			if job.ResultURL == nil {
				continue
			}
			token := extractToken(*job.ResultURL)
			if token == "" {
				continue
			}
			_, relPath, _, err := s.results.ParseToken(token, true)
			if err != nil {
				continue
			}
			if err := s.results.Delete(relPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "error", err)
			}
		}
		if len(finished) < 100 {
			break
		}
	}
	if _, err := s.results.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

func publicCompileError(err error) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, assembly.ErrInvalidRequest) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "document cannot be compiled")
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "compilation cancelled")
	}
	return decodeError(err)
}

type compileGenerator interface {
	Generate(ctx context.Context, job *models.CompileJob) (*CompileResult, error)
}

// CompileWorker bridges queue jobs to CompileService.
type CompileWorker struct {
	repo       compileJobStore
	generator  compileGenerator
	logger     *zap.Logger
	maxRetries int
}

// NewCompileWorker constructs a worker.
func NewCompileWorker(repo compileJobStore, generator compileGenerator, maxRetries int, logger *zap.Logger) *CompileWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &CompileWorker{
		repo:       repo,
		generator:  generator,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Handle processes a queue job. Unreadable PDFs, invalid documents and panics
// fail the job at once; other errors are retried by the queue. Status writes
// outlive ctx so a job interrupted by shutdown goes back to QUEUED.
func (w *CompileWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return jobs.Permanent(err)
		}
		return err
	}
	processing := models.CompileStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateCompileJobParams{
		Status:   &processing,
		Progress: &progress,
	}); err != nil {
		return err
	}
	result, err := w.generate(ctx, record)
	if err != nil {
		msg := err.Error()
		permanent := isPermanentCompileError(err)
		statusCtx := context.WithoutCancel(ctx)
		if permanent || job.Attempt >= w.maxRetries {
			failed := models.CompileStatusFailed
			progress = 100
			now := time.Now().UTC()
			if updateErr := w.repo.Update(statusCtx, job.ID, repository.UpdateCompileJobParams{
				Status:       &failed,
				Progress:     &progress,
				ErrorMessage: &msg,
				FinishedAt:   &now,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark job failed", "job_id", job.ID, "error", updateErr)
			}
		} else {
			queued := models.CompileStatusQueued
			reset := 0
			if updateErr := w.repo.Update(statusCtx, job.ID, repository.UpdateCompileJobParams{
				Status:       &queued,
				Progress:     &reset,
				ErrorMessage: &msg,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark job queued", "job_id", job.ID, "error", updateErr)
			}
		}
		if permanent {
			return jobs.Permanent(err)
		}
		return err
	}
	finished := models.CompileStatusFinished
	progress = 100
	now := time.Now().UTC()
	url := result.URL
	pages := result.PageCount
	clear := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateCompileJobParams{
		Status:       &finished,
		Progress:     &progress,
		PageCount:    &pages,
		ResultURL:    &url,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark job finished", "job_id", job.ID, "error", err)
		return err
	}
	return nil
}

func (w *CompileWorker) generate(ctx context.Context, record *models.CompileJob) (result *CompileResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("compile panicked", zap.String("job_id", record.ID), zap.Any("panic", r), zap.Stack("stack"))
			result, err = nil, fmt.Errorf("%w: %v", errCompilePanic, r)
		}
	}()
	return w.generator.Generate(ctx, record)
}

func isPermanentCompileError(err error) bool {
	if errors.Is(err, pdfdoc.ErrDecode) || errors.Is(err, assembly.ErrInvalidRequest) || errors.Is(err, errCompilePanic) {
		return true
	}
	return appErrors.StatusOf(err) < http.StatusInternalServerError
}
