package assembly

import (
	"github.com/noah-isme/perda-lpj-api/internal/models"
)

// FooterBox is the geometry of the standard footer box.
type FooterBox struct {
	WidthPercent float64
	OffsetX      float64
	OffsetY      float64
	Height       float64
	FontSize     float64
}

// Style selects how an attachment's pages are stamped. It is either a
// StandardStyle or a CalkStyle.
type Style interface {
	isStyle()
}

// StandardStyle stamps a bordered footer with caption and running page number.
type StandardStyle struct {
	Caption string
	Box     FooterBox
}

// CalkStyle stamps bare page numbers up to LastPage and indexes Chapters in the
// table of contents.
type CalkStyle struct {
	OffsetX  float64
	OffsetY  float64
	FontSize float64
	LastPage int
	Chapters models.CalkChapters
}

func (StandardStyle) isStyle() {}
func (CalkStyle) isStyle()     {}

// Attachment is one main attachment as consumed by the assembler.
type Attachment struct {
	Sequence     int
	Label        string
	DividerTitle string
	Content      []byte
	Style        Style
}

// NewAttachment builds the assembler view of a stored attachment row. Only the
// fields of the styling selected by row.IsCalk are carried over.
func NewAttachment(row models.MainAttachment, content []byte) Attachment {
	geom := row.FooterGeometry.WithDefaults()
	att := Attachment{
		Sequence:     row.Urutan,
		Label:        row.RomanLabel,
		DividerTitle: row.DividerTitle,
		Content:      content,
	}
	if row.IsCalk {
		att.Style = CalkStyle{
			OffsetX:  geom.OffsetX,
			OffsetY:  geom.OffsetY,
			FontSize: geom.FontSize,
			LastPage: row.PageCount,
			Chapters: row.Chapters.Clamped(),
		}
		return att
	}
	att.Style = StandardStyle{
		Caption: row.FooterText,
		Box:     FooterBox(geom),
	}
	return att
}
