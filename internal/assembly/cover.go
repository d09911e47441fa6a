package assembly

import (
	"strconv"

	"github.com/noah-isme/perda-lpj-api/internal/models"
	"github.com/noah-isme/perda-lpj-api/pkg/layout"
	"github.com/noah-isme/perda-lpj-api/pkg/pdfdoc"
)

// PageAdder appends fresh pages to the output document.
type PageAdder interface {
	AddPage(width, height float64) pdfdoc.Canvas
}

// Seal is a registered seal image and its height/width ratio.
type Seal struct {
	Name  string
	Ratio float64
}

// Cover offsets are visually calibrated against the printed reports; they do not
// reflow when wording changes.
const (
	coverTop          = 70.0
	coverSealWidth    = 85.0
	coverSealGap      = 35.0
	coverTitleSize    = 14.0
	coverTextSize     = 12.0
	coverRoleGap      = 42.0
	coverHeadingGap   = 26.0
	coverNumberGap    = 44.0
	coverTentangGap   = 26.0
	coverSubjectGap   = 20.0
	coverIssuerY      = 150.0
	coverIssueYearGap = 24.0
	coverMaxLineWidth = layout.PageWidth - 2*85
)

// GenerateCover appends the single cover page.
func GenerateCover(doc PageAdder, profile Profile, seal *Seal, kind models.ReportKind, year int) {
	page := doc.AddPage(layout.PageWidth, layout.PageHeight)
	y := layout.PageHeight - coverTop

	if seal != nil {
		height := coverSealWidth * seal.Ratio
		page.DrawImage(seal.Name, (layout.PageWidth-coverSealWidth)/2, y-height, coverSealWidth, height)
		y -= height + coverSealGap
	}

	layout.DrawCentered(page, profile.Role(), y, layout.Bold, coverTitleSize)
	y -= coverRoleGap
	for _, line := range layout.WrapText(page, profile.Heading(kind), layout.Bold, coverTitleSize, coverMaxLineWidth) {
		layout.DrawCentered(page, line, y, layout.Bold, coverTitleSize)
		y -= coverHeadingGap
	}
	layout.DrawCentered(page, DecreeNumber(year), y, layout.Bold, coverTextSize)
	y -= coverNumberGap
	layout.DrawCentered(page, "TENTANG", y, layout.Bold, coverTextSize)
	y -= coverTentangGap
	for _, line := range append(profile.SubjectLines(kind), FiscalYear(year)) {
		layout.DrawCentered(page, line, y, layout.Bold, coverTextSize)
		y -= coverSubjectGap
	}

	layout.DrawCentered(page, profile.IssuingBody(), coverIssuerY, layout.Bold, coverTitleSize)
	layout.DrawCentered(page, strconv.Itoa(year+1), coverIssuerY-coverIssueYearGap, layout.Bold, coverTitleSize)
}
