package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perda-lpj-api/internal/models"
	"github.com/noah-isme/perda-lpj-api/internal/repository"
	"github.com/noah-isme/perda-lpj-api/pkg/storage"
)

type documentStoreStub struct {
	docs map[string]*models.Document
}

func newDocumentStoreStub(docs ...models.Document) *documentStoreStub {
	s := &documentStoreStub{docs: map[string]*models.Document{}}
	for i := range docs {
		doc := docs[i]
		s.docs[doc.ID] = &doc
	}
	return s
}

func (s *documentStoreStub) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	copyDoc := *doc
	s.docs[doc.ID] = &copyDoc
	return nil
}

func (s *documentStoreStub) GetByID(ctx context.Context, id string) (*models.Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (s *documentStoreStub) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	var out []models.Document
	for _, doc := range s.docs {
		if filter.Kind != "" && doc.Kind != filter.Kind {
			continue
		}
		if filter.Year != 0 && doc.Year != filter.Year {
			continue
		}
		out = append(out, *doc)
	}
	return out, len(out), nil
}

func (s *documentStoreStub) Update(ctx context.Context, doc *models.Document) error {
	if _, ok := s.docs[doc.ID]; !ok {
		return sql.ErrNoRows
	}
	copyDoc := *doc
	s.docs[doc.ID] = &copyDoc
	return nil
}

func (s *documentStoreStub) SetBody(ctx context.Context, id string, path *string, sizeBytes int64, pageCount int) error {
	doc, ok := s.docs[id]
	if !ok {
		return sql.ErrNoRows
	}
	doc.BodyFilePath = path
	doc.BodySizeBytes = sizeBytes
	doc.BodyPageCount = pageCount
	return nil
}

func (s *documentStoreStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.docs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.docs, id)
	return nil
}

// mainStoreStub keeps urutan dense the way the SQL repository does.
type mainStoreStub struct {
	rows    map[string]*models.MainAttachment
	failOn  string
	reorder [][]models.SequenceUpdate
}

func newMainStoreStub(rows ...models.MainAttachment) *mainStoreStub {
	s := &mainStoreStub{rows: map[string]*models.MainAttachment{}}
	for i := range rows {
		row := rows[i]
		s.rows[row.ID] = &row
	}
	return s
}

func (s *mainStoreStub) Create(ctx context.Context, att *models.MainAttachment) error {
	switch s.failOn {
	case "create":
		return sql.ErrConnDone
	case "conflict":
		return fmt.Errorf("commit create main attachment: %w", repository.ErrSequenceConflict)
	}
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	att.Urutan = len(s.byDocument(att.DocumentID)) + 1
	row := *att
	s.rows[att.ID] = &row
	return nil
}

func (s *mainStoreStub) GetByID(ctx context.Context, id string) (*models.MainAttachment, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *row
	return &out, nil
}

func (s *mainStoreStub) ListByDocument(ctx context.Context, documentID string) ([]models.MainAttachment, error) {
	return s.byDocument(documentID), nil
}

func (s *mainStoreStub) Update(ctx context.Context, att *models.MainAttachment) error {
	row, ok := s.rows[att.ID]
	if !ok {
		return sql.ErrNoRows
	}
	urutan := row.Urutan
	updated := *att
	updated.Urutan = urutan
	s.rows[att.ID] = &updated
	return nil
}

func (s *mainStoreStub) Delete(ctx context.Context, id string) error {
	row, ok := s.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	delete(s.rows, id)
	for i, rest := range s.byDocument(row.DocumentID) {
		s.rows[rest.ID].Urutan = i + 1
	}
	return nil
}

func (s *mainStoreStub) Reorder(ctx context.Context, documentID string, updates []models.SequenceUpdate) error {
	s.reorder = append(s.reorder, updates)
	for _, u := range updates {
		row, ok := s.rows[u.ID]
		if !ok || row.DocumentID != documentID {
			return sql.ErrNoRows
		}
		row.Urutan = u.Urutan
	}
	return nil
}

func (s *mainStoreStub) byDocument(documentID string) []models.MainAttachment {
	var out []models.MainAttachment
	for _, row := range s.rows {
		if row.DocumentID == documentID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Urutan < out[j].Urutan })
	return out
}

type supportingStoreStub struct {
	rows map[string]*models.SupportingAttachment
}

func newSupportingStoreStub() *supportingStoreStub {
	return &supportingStoreStub{rows: map[string]*models.SupportingAttachment{}}
}

func (s *supportingStoreStub) Create(ctx context.Context, att *models.SupportingAttachment) error {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	att.Urutan = len(s.byDocument(att.DocumentID)) + 1
	row := *att
	s.rows[att.ID] = &row
	return nil
}

func (s *supportingStoreStub) GetByID(ctx context.Context, id string) (*models.SupportingAttachment, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *row
	return &out, nil
}

func (s *supportingStoreStub) ListByDocument(ctx context.Context, documentID string) ([]models.SupportingAttachment, error) {
	return s.byDocument(documentID), nil
}

func (s *supportingStoreStub) Update(ctx context.Context, att *models.SupportingAttachment) error {
	row, ok := s.rows[att.ID]
	if !ok {
		return sql.ErrNoRows
	}
	updated := *att
	updated.Urutan = row.Urutan
	s.rows[att.ID] = &updated
	return nil
}

func (s *supportingStoreStub) Delete(ctx context.Context, id string) error {
	row, ok := s.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	delete(s.rows, id)
	for i, rest := range s.byDocument(row.DocumentID) {
		s.rows[rest.ID].Urutan = i + 1
	}
	return nil
}

func (s *supportingStoreStub) Reorder(ctx context.Context, documentID string, updates []models.SequenceUpdate) error {
	for _, u := range updates {
		row, ok := s.rows[u.ID]
		if !ok || row.DocumentID != documentID {
			return sql.ErrNoRows
		}
		row.Urutan = u.Urutan
	}
	return nil
}

func (s *supportingStoreStub) byDocument(documentID string) []models.SupportingAttachment {
	var out []models.SupportingAttachment
	for _, row := range s.rows {
		if row.DocumentID == documentID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Urutan < out[j].Urutan })
	return out
}

// detailCacheStub stores JSON like the Redis-backed cache does.
type detailCacheStub struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
}

func newDetailCacheStub() *detailCacheStub {
	return &detailCacheStub{entries: map[string][]byte{}}
}

func (c *detailCacheStub) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *detailCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *detailCacheStub) Invalidate(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, pattern)
	delete(c.entries, pattern)
	return nil
}

func newTestStorage(t *testing.T) *storage.LocalStorage {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return store
}

func pdfUpload(data []byte) PDFUpload {
	return PDFUpload{Filename: "upload.pdf", Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func testDocument(id string, kind models.ReportKind) models.Document {
	return models.Document{ID: id, Kind: kind, Year: 2024, Title: "LPJ APBD 2024"}
}
