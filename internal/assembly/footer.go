package assembly

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/perda-lpj-api/pkg/layout"
	"github.com/noah-isme/perda-lpj-api/pkg/pdfdoc"
)

const (
	captionPrefix     = "PERDA"
	footerPadding     = 6.0
	footerBorderWidth = 0.75
	// baseline sits this fraction of the font size below the vertical centre
	footerBaselineRatio = 0.35
)

// StampStandardFooter draws the bordered footer box with the upper-cased caption
// "PERDA {romanLabel}. {caption}" and a right-aligned "Halaman n" on every page.
// Numbering starts at start; the next free number is returned.
func StampStandardFooter(pages []pdfdoc.Canvas, start int, box FooterBox, romanLabel, caption string) int {
	text := strings.ToUpper(fmt.Sprintf("%s %s. %s", captionPrefix, romanLabel, caption))
	n := start
	for _, page := range pages {
		width, _ := page.Size()
		boxWidth := box.WidthPercent / 100 * width
		x := (width-boxWidth)/2 + box.OffsetX
		baseline := box.OffsetY + box.Height/2 - box.FontSize*footerBaselineRatio

		page.DrawRect(x, box.OffsetY, boxWidth, box.Height, footerBorderWidth)
		page.DrawText(text, x+footerPadding, baseline, layout.Regular, box.FontSize)

		label := "Halaman " + strconv.Itoa(n)
		labelX := layout.RightAlignX(page, label, layout.Regular, box.FontSize, x+boxWidth-footerPadding)
		page.DrawText(label, labelX, baseline, layout.Regular, box.FontSize)
		n++
	}
	return n
}

// StampCalkFooter draws a bare centred page number on every page while the running
// counter is at most lastPage. Pages past lastPage are left unnumbered.
func StampCalkFooter(pages []pdfdoc.Canvas, start int, offsetX, offsetY, fontSize float64, lastPage int) int {
	n := start
	for _, page := range pages {
		if n <= lastPage {
			width, _ := page.Size()
			label := strconv.Itoa(n)
			x := layout.CenterX(page, label, layout.Regular, fontSize, width/2) + offsetX
			page.DrawText(label, x, offsetY, layout.Regular, fontSize)
		}
		n++
	}
	return n
}

// stamp applies the footer variant selected by style.
func stamp(pages []pdfdoc.Canvas, start int, att Attachment) int {
	switch style := att.Style.(type) {
	case StandardStyle:
		return StampStandardFooter(pages, start, style.Box, att.Label, style.Caption)
	case CalkStyle:
		return StampCalkFooter(pages, start, style.OffsetX, style.OffsetY, style.FontSize, style.LastPage)
	default:
		return start + len(pages)
	}
}
