package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CalkStartPageCeiling is the editorial maximum accepted for a CALK chapter or
// sub-chapter starting page. Inputs above it are clamped, not rejected.
const CalkStartPageCeiling = 206

// ClampStartPage applies CalkStartPageCeiling to an operator-entered page number.
func ClampStartPage(page int) int {
	if page > CalkStartPageCeiling {
		return CalkStartPageCeiling
	}
	return page
}

// FooterGeometry positions the footer stamped on attachment pages. All values are
// operator-tuned per attachment; WidthPercent is relative to the page width.
type FooterGeometry struct {
	WidthPercent float64 `db:"footer_width" json:"footerWidth"`
	OffsetX      float64 `db:"footer_x" json:"footerX"`
	OffsetY      float64 `db:"footer_y" json:"footerY"`
	Height       float64 `db:"footer_height" json:"footerHeight"`
	FontSize     float64 `db:"footer_font_size" json:"footerFontSize"`
}

// DefaultFooterGeometry is applied to size fields left at zero and to an unset
// vertical offset.
var DefaultFooterGeometry = FooterGeometry{
	WidthPercent: 90,
	OffsetX:      0,
	OffsetY:      20,
	Height:       20,
	FontSize:     8,
}

// WithDefaults fills zero-valued size fields from DefaultFooterGeometry.
// Offsets are kept as given since zero is a meaningful offset.
func (g FooterGeometry) WithDefaults() FooterGeometry {
	if g.WidthPercent <= 0 {
		g.WidthPercent = DefaultFooterGeometry.WidthPercent
	}
	if g.Height <= 0 {
		g.Height = DefaultFooterGeometry.Height
	}
	if g.FontSize <= 0 {
		g.FontSize = DefaultFooterGeometry.FontSize
	}
	return g
}

// CalkSubChapter is a numbered sub-chapter of a CALK chapter.
type CalkSubChapter struct {
	Numeral   string `json:"subbab"`
	Title     string `json:"judul"`
	StartPage int    `json:"halamanMulai"`
}

// CalkChapter is one BAB of a CALK attachment.
type CalkChapter struct {
	Numeral     string           `json:"bab"`
	Title       string           `json:"judul"`
	StartPage   int              `json:"halamanMulai"`
	SubChapters []CalkSubChapter `json:"subbab"`
}

// CalkChapters is persisted as JSONB.
type CalkChapters []CalkChapter

// Clamped returns a copy with every starting page limited to CalkStartPageCeiling.
func (c CalkChapters) Clamped() CalkChapters {
	out := make(CalkChapters, len(c))
	for i, ch := range c {
		ch.StartPage = ClampStartPage(ch.StartPage)
		subs := make([]CalkSubChapter, len(ch.SubChapters))
		for j, sub := range ch.SubChapters {
			sub.StartPage = ClampStartPage(sub.StartPage)
			subs[j] = sub
		}
		ch.SubChapters = subs
		out[i] = ch
	}
	return out
}

// Value marshals chapters to JSON for persistence.
func (c CalkChapters) Value() (driver.Value, error) {
	if c == nil {
		c = CalkChapters{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal calk chapters: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into chapters.
func (c *CalkChapters) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for CalkChapters", value)
	}
	if len(data) == 0 {
		*c = nil
		return nil
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("unmarshal calk chapters: %w", err)
	}
	return nil
}

// MainAttachment is a lampiran utama row. Exactly one styling applies, picked
// by IsCalk: footer caption + box geometry, or the CALK chapter index. Fields of
// the other styling are zeroed when the row is saved.
type MainAttachment struct {
	ID           string `db:"id" json:"id"`
	DocumentID   string `db:"document_id" json:"documentId"`
	Urutan       int    `db:"urutan" json:"urutan"`
	FilePath     string `db:"file_path" json:"filePath"`
	SizeBytes    int64  `db:"size_bytes" json:"sizeBytes"`
	RomanLabel   string `db:"roman_label" json:"romawiLampiran"`
	DividerTitle string `db:"divider_title" json:"judulPembatas"`
	FooterText   string `db:"footer_text" json:"footerText"`
	FooterGeometry
	// PageCount is jumlahHalaman: pages numbered for footer/TOC purposes. For CALK
	// attachments it is the last CALK page number.
	PageCount   int          `db:"page_count" json:"jumlahHalaman"`
	TotalSheets int          `db:"total_sheets" json:"jumlahTotalLembar"`
	IsCalk      bool         `db:"is_calk" json:"isCalk"`
	Chapters    CalkChapters `db:"calk_chapters" json:"calkBab,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

// SupportingAttachment is a lampiran pendukung: reference-only, never stamped.
type SupportingAttachment struct {
	ID          string    `db:"id" json:"id"`
	DocumentID  string    `db:"document_id" json:"documentId"`
	Urutan      int       `db:"urutan" json:"urutan"`
	Title       string    `db:"title" json:"title"`
	FilePath    string    `db:"file_path" json:"filePath"`
	SizeBytes   int64     `db:"size_bytes" json:"sizeBytes"`
	TotalSheets int       `db:"total_sheets" json:"jumlahTotalLembar"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// SequenceUpdate assigns a new urutan to one row.
type SequenceUpdate struct {
	ID     string
	Urutan int
}
