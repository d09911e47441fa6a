// Package layout holds the fixed page geometry of the compiled report and the
// small text-layout helpers (word wrapping, centering) used by the cover, divider
// and table-of-contents generators.
//
// All coordinates are PDF user space in points: origin at the bottom-left corner,
// y grows upward. Callers move a cursor down the page by decrementing y.
package layout

import "strings"

// CmToPoint is the conversion factor used for the report page size. It must stay
// 28.35, not 72/2.54.
const CmToPoint = 28.35

// Fixed report page size (21cm x 33cm, "F4"/folio).
const (
	PageWidth  = 21 * CmToPoint
	PageHeight = 33 * CmToPoint
)

// LineSpacing is the factor applied to the font size when DrawCentered advances y.
const LineSpacing = 1.5

// Font selects one of the two faces embedded in the output document.
type Font int

const (
	Regular Font = iota
	Bold
)

// String returns the gofpdf style string for the face.
func (f Font) String() string {
	if f == Bold {
		return "B"
	}
	return ""
}

// Measurer reports the rendered width of text for a given face and size.
type Measurer interface {
	TextWidth(text string, font Font, size float64) float64
}

// Surface is anything text can be measured on and drawn onto.
type Surface interface {
	Measurer
	DrawText(text string, x, y float64, font Font, size float64)
}

// WrapText greedily packs words into lines no wider than maxWidth. A single
// word wider than maxWidth is emitted on its own line without being split.
func WrapText(m Measurer, text string, font Font, size, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	lines := make([]string, 0, 2)
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if m.TextWidth(candidate, font, size) > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}

// CenterX returns the x at which text must start to be centered on centerX.
func CenterX(m Measurer, text string, font Font, size, centerX float64) float64 {
	return centerX - m.TextWidth(text, font, size)/2
}

// RightAlignX returns the x at which text must start to end exactly at right.
func RightAlignX(m Measurer, text string, font Font, size, right float64) float64 {
	return right - m.TextWidth(text, font, size)
}

// DrawCentered draws text centered on the report page width at baseline y and
// returns the next baseline one line below.
func DrawCentered(s Surface, text string, y float64, font Font, size float64) float64 {
	s.DrawText(text, CenterX(s, text, font, size, PageWidth/2), y, font, size)
	return y - size*LineSpacing
}
