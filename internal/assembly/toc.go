package assembly

import (
	"fmt"
	"strconv"

	"github.com/noah-isme/perda-lpj-api/internal/models"
	"github.com/noah-isme/perda-lpj-api/pkg/layout"
	"github.com/noah-isme/perda-lpj-api/pkg/pdfdoc"
)

// Table of contents offsets are visually calibrated.
const (
	tocMargin         = 72.0
	tocTop            = layout.PageHeight - tocMargin
	tocBottom         = tocMargin
	tocLeft           = tocMargin
	tocRight          = layout.PageWidth - tocMargin
	tocHeaderSize     = 12.0
	tocHeaderGap      = 18.0
	tocHeaderRuleGap  = 24.0
	tocTextSize       = 11.0
	tocLineHeight     = 15.0
	tocNumberColumn   = 40.0
	tocRuleOffset     = 4.0
	tocEntryGap       = 12.0
	tocRuleWidth      = 0.5
	tocCalkSize       = 10.0
	tocCalkLineHeight = 14.0
	tocChapterIndent  = 18.0
	tocSubIndent      = 36.0
)

// TOCEntry is one attachment row of the table of contents.
type TOCEntry struct {
	Label     string
	Title     string
	StartPage int
	Calk      *CalkIndex
}

// CalkIndex lists the chapters of a CALK attachment. Page numbers past LastPage
// are not printed.
type CalkIndex struct {
	LastPage int
	Chapters models.CalkChapters
}

// GenerateTOC appends the table of contents and returns the number of pages it
// used. The header is drawn on the first page only.
func GenerateTOC(doc PageAdder, profile Profile, kind models.ReportKind, year int, entries []TOCEntry) int {
	w := &tocWriter{doc: doc}
	w.newPage()

	for _, line := range []string{"DAFTAR ISI", profile.Heading(kind), FiscalYear(year)} {
		layout.DrawCentered(w.page, line, w.y, layout.Bold, tocHeaderSize)
		w.y -= tocHeaderGap
	}
	w.page.DrawLine(tocLeft, w.y+tocHeaderGap/2, tocRight, w.y+tocHeaderGap/2, tocRuleWidth)
	w.y -= tocHeaderRuleGap - tocHeaderGap

	for _, entry := range entries {
		w.entry(entry)
		if entry.Calk != nil {
			w.calk(kind, entry.Calk)
		}
	}
	return w.pages
}

type tocWriter struct {
	doc   PageAdder
	page  pdfdoc.Canvas
	y     float64
	pages int
}

func (w *tocWriter) newPage() {
	w.page = w.doc.AddPage(layout.PageWidth, layout.PageHeight)
	w.y = tocTop
	w.pages++
}

// ensure starts a new page unless needed points fit above the bottom margin.
func (w *tocWriter) ensure(needed float64) {
	if w.y-needed < tocBottom {
		w.newPage()
	}
}

func (w *tocWriter) entry(entry TOCEntry) {
	width := tocRight - tocLeft - tocNumberColumn
	labels := layout.WrapText(w.page, entry.Label, layout.Bold, tocTextSize, width)
	titles := layout.WrapText(w.page, entry.Title, layout.Regular, tocTextSize, width)
	w.ensure(float64(len(labels)+len(titles))*tocLineHeight + tocEntryGap)

	lastBaseline := w.y
	for _, line := range labels {
		w.page.DrawText(line, tocLeft, w.y, layout.Bold, tocTextSize)
		lastBaseline = w.y
		w.y -= tocLineHeight
	}
	for _, line := range titles {
		w.page.DrawText(line, tocLeft, w.y, layout.Regular, tocTextSize)
		lastBaseline = w.y
		w.y -= tocLineHeight
	}
	w.pageNumber(entry.StartPage, lastBaseline, layout.Regular, tocTextSize)

	rule := lastBaseline - tocRuleOffset
	w.page.DrawLine(tocLeft, rule, tocRight, rule, tocRuleWidth)
	w.y = rule - tocEntryGap
}

func (w *tocWriter) calk(kind models.ReportKind, index *CalkIndex) {
	chapterLines := kind.UsesChapterHeadings()
	for _, chapter := range index.Chapters {
		if chapterLines {
			text := fmt.Sprintf("BAB %s. %s", chapter.Numeral, chapter.Title)
			w.calkLine(text, tocChapterIndent, layout.Bold, chapter.StartPage, index.LastPage)
		}
		for _, sub := range chapter.SubChapters {
			text := sub.Title
			if chapterLines {
				text = fmt.Sprintf("%s.%s %s", chapter.Numeral, sub.Numeral, sub.Title)
			}
			w.calkLine(text, tocSubIndent, layout.Regular, sub.StartPage, index.LastPage)
		}
	}
	w.y -= tocEntryGap
}

func (w *tocWriter) calkLine(text string, indent float64, font layout.Font, startPage, lastPage int) {
	lines := layout.WrapText(w.page, text, font, tocCalkSize, tocRight-tocLeft-indent-tocNumberColumn)
	if len(lines) == 0 {
		return
	}
	w.ensure(float64(len(lines)) * tocCalkLineHeight)
	lastBaseline := w.y
	for _, line := range lines {
		w.page.DrawText(line, tocLeft+indent, w.y, font, tocCalkSize)
		lastBaseline = w.y
		w.y -= tocCalkLineHeight
	}
	if startPage > 0 && startPage <= lastPage {
		w.pageNumber(startPage, lastBaseline, font, tocCalkSize)
	}
}

func (w *tocWriter) pageNumber(n int, baseline float64, font layout.Font, size float64) {
	label := strconv.Itoa(n)
	x := layout.RightAlignX(w.page, label, font, size, tocRight)
	w.page.DrawText(label, x, baseline, font, size)
}
