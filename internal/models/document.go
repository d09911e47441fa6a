package models

import "time"

// ReportKind is one of the four sequential legal-document types of the
// regional budget accountability cycle.
type ReportKind string

const (
	ReportKindRaperda  ReportKind = "RAPERDA"
	ReportKindPerda    ReportKind = "PERDA"
	ReportKindRaperbup ReportKind = "RAPERBUP"
	ReportKindPerbup   ReportKind = "PERBUP"
)

// Valid reports whether k is a known kind.
func (k ReportKind) Valid() bool {
	switch k {
	case ReportKindRaperda, ReportKindPerda, ReportKindRaperbup, ReportKindPerbup:
		return true
	default:
		return false
	}
}

// IsRegionalRegulation is true for Raperda/Perda (regional regulations) and
// false for Raperbup/Perbup (head-of-region regulations).
func (k ReportKind) IsRegionalRegulation() bool {
	return k == ReportKindRaperda || k == ReportKindPerda
}

// IsDraft is true for the draft ("rancangan") kinds.
func (k ReportKind) IsDraft() bool {
	return k == ReportKindRaperda || k == ReportKindRaperbup
}

// UsesChapterHeadings reports whether CALK chapter ("BAB") lines appear in the
// table of contents. Head-of-region regulations list sub-chapters only.
func (k ReportKind) UsesChapterHeadings() bool {
	return k.IsRegionalRegulation()
}

// Document is one accountability report being compiled.
type Document struct {
	ID            string     `db:"id" json:"id"`
	Kind          ReportKind `db:"kind" json:"kind"`
	Year          int        `db:"year" json:"tahun"`
	Title         string     `db:"title" json:"title"`
	BodyFilePath  *string    `db:"body_file_path" json:"bodyFilePath,omitempty"`
	BodySizeBytes int64      `db:"body_size_bytes" json:"bodySizeBytes"`
	BodyPageCount int        `db:"body_page_count" json:"bodyPageCount"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// HasBody reports whether a batang tubuh file is attached.
func (d *Document) HasBody() bool {
	return d != nil && d.BodyFilePath != nil && *d.BodyFilePath != ""
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	Kind   ReportKind
	Year   int
	Search string
	Limit  int
	Offset int
}
