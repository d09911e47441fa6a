package service

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/noah-isme/perda-lpj-api/pkg/storage"
)

// CompiledFilename is the name under which compiled reports are served.
const CompiledFilename = "hasil_gabungan.pdf"

type resultStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ResultConfig tunes where results are linked and how long they live.
type ResultConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// CompileResult captures a stored compiled report.
type CompileResult struct {
	RelativePath string
	Token        string
	URL          string
	PageCount    int
	ExpiresAt    time.Time
}

// ResultService persists compiled reports and issues signed download links.
type ResultService struct {
	storage resultStorage
	signer  *storage.SignedURLSigner
	cfg     ResultConfig
}

// NewResultService constructs a ResultService.
func NewResultService(store resultStorage, signer *storage.SignedURLSigner, cfg ResultConfig) *ResultService {
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ResultService{storage: store, signer: signer, cfg: cfg}
}

// Store saves payload for the job and signs a download token for it.
func (s *ResultService) Store(jobID, documentID string, payload []byte) (*CompileResult, error) {
	relPath, err := s.storage.Save(resultFilename(documentID, time.Now().UTC()), payload)
	if err != nil {
		return nil, fmt.Errorf("store compiled report: %w", err)
	}
	token, expiresAt, err := s.signer.Generate(jobID, relPath)
	if err != nil {
		_ = s.storage.Delete(relPath)
		return nil, fmt.Errorf("sign compiled report: %w", err)
	}
	return &CompileResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token),
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ResultService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ResultService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored result.
func (s *ResultService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to the configured ResultTTL when ttl <= 0).
func (s *ResultService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func resultFilename(documentID string, at time.Time) string {
	return fmt.Sprintf("hasil_gabungan_%s_%s.pdf", sanitizeFilename(documentID), at.Format("20060102_150405"))
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
