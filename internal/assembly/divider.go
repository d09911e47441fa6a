package assembly

import (
	"github.com/noah-isme/perda-lpj-api/internal/models"
	"github.com/noah-isme/perda-lpj-api/pkg/layout"
)

// Divider offsets are visually calibrated.
const (
	dividerStartRatio = 0.68
	dividerLabelSize  = 16.0
	dividerTextSize   = 12.0
	dividerTitleSize  = 14.0
	dividerLabelGap   = 40.0
	dividerLineGap    = 20.0
	dividerSectionGap = 34.0
	dividerTitleGap   = 22.0
	dividerMargin     = 80.0
	dividerMaxWidth   = layout.PageWidth - 2*dividerMargin
)

// GenerateDivider appends the separator page placed before an attachment.
func GenerateDivider(doc PageAdder, profile Profile, kind models.ReportKind, year int, label, title string) {
	page := doc.AddPage(layout.PageWidth, layout.PageHeight)
	y := layout.PageHeight * dividerStartRatio

	layout.DrawCentered(page, "LAMPIRAN "+label, y, layout.Bold, dividerLabelSize)
	y -= dividerLabelGap
	for _, line := range layout.WrapText(page, profile.Heading(kind), layout.Bold, dividerTextSize, dividerMaxWidth) {
		layout.DrawCentered(page, line, y, layout.Bold, dividerTextSize)
		y -= dividerLineGap
	}
	layout.DrawCentered(page, DecreeNumber(year), y, layout.Bold, dividerTextSize)
	y -= dividerLineGap
	layout.DrawCentered(page, "TENTANG", y, layout.Bold, dividerTextSize)
	y -= dividerLineGap
	for _, line := range profile.SubjectLines(kind) {
		layout.DrawCentered(page, line, y, layout.Bold, dividerTextSize)
		y -= dividerLineGap
	}

	y -= dividerSectionGap - dividerLineGap
	for _, line := range layout.WrapText(page, title, layout.Bold, dividerTitleSize, dividerMaxWidth) {
		layout.DrawCentered(page, line, y, layout.Bold, dividerTitleSize)
		y -= dividerTitleGap
	}
	y -= dividerSectionGap - dividerTitleGap
	layout.DrawCentered(page, FiscalYear(year), y, layout.Bold, dividerTextSize)
}
