package assembly

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perda-lpj-api/internal/models"
	"github.com/noah-isme/perda-lpj-api/pkg/layout"
)

func testProfile() Profile {
	p := DefaultProfile()
	p.Region = "KABUPATEN CONTOH"
	return p
}

func calkChapters() models.CalkChapters {
	return models.CalkChapters{
		{
			Numeral:   "I",
			Title:     "PENDAHULUAN",
			StartPage: 3,
			SubChapters: []models.CalkSubChapter{
				{Numeral: "1", Title: "Maksud dan Tujuan", StartPage: 4},
				{Numeral: "2", Title: "Landasan Hukum", StartPage: 9},
			},
		},
	}
}

func TestGenerateTOCSinglePage(t *testing.T) {
	doc := &fakeDocument{}
	pages := GenerateTOC(doc, testProfile(), models.ReportKindRaperda, 2024, []TOCEntry{
		{Label: "LAMPIRAN I", Title: "Laporan Realisasi Anggaran", StartPage: 1},
		{Label: "LAMPIRAN II", Title: "Neraca", StartPage: 12},
	})
	require.Equal(t, 1, pages)
	require.Len(t, doc.pages, 1)

	page := doc.pages[0]
	for _, header := range []string{"DAFTAR ISI", "RANCANGAN PERATURAN DAERAH KABUPATEN CONTOH", "TAHUN ANGGARAN 2024"} {
		drawn, ok := page.find(header)
		require.True(t, ok, header)
		require.Equal(t, layout.Bold, drawn.Font)
	}

	label, ok := page.find("LAMPIRAN II")
	require.True(t, ok)
	require.Equal(t, layout.Bold, label.Font)
	title, ok := page.find("Neraca")
	require.True(t, ok)
	require.Equal(t, layout.Regular, title.Font)
	number, ok := page.find("12")
	require.True(t, ok)
	require.Equal(t, title.Y, number.Y)
	require.InDelta(t, tocRight, number.X+page.TextWidth("12", layout.Regular, tocTextSize), 0.001)
}

func TestGenerateTOCAlignsNumberWithLastTitleLine(t *testing.T) {
	doc := &fakeDocument{}
	long := "Laporan Perubahan Saldo Anggaran Lebih dan Laporan Operasional serta Laporan Arus Kas dan Laporan Perubahan Ekuitas Pemerintah Daerah"
	GenerateTOC(doc, testProfile(), models.ReportKindPerda, 2024, []TOCEntry{{Label: "LAMPIRAN III", Title: long, StartPage: 27}})

	page := doc.pages[0]
	lines := layout.WrapText(page, long, layout.Regular, tocTextSize, tocRight-tocLeft-tocNumberColumn)
	require.Greater(t, len(lines), 1)
	last, ok := page.find(lines[len(lines)-1])
	require.True(t, ok)
	number, ok := page.find("27")
	require.True(t, ok)
	require.Equal(t, last.Y, number.Y)
}

func TestGenerateTOCPaginatesWithoutSplittingEntries(t *testing.T) {
	entries := make([]TOCEntry, 60)
	for i := range entries {
		entries[i] = TOCEntry{
			Label:     fmt.Sprintf("LAMPIRAN %d", i+1),
			Title:     fmt.Sprintf("Judul lampiran nomor %d", i+1),
			StartPage: 1000 + i,
		}
	}
	doc := &fakeDocument{}
	pages := GenerateTOC(doc, testProfile(), models.ReportKindRaperda, 2024, entries)
	require.Greater(t, pages, 1)
	require.Len(t, doc.pages, pages)

	for i, page := range doc.pages {
		_, ok := page.find("DAFTAR ISI")
		require.Equal(t, i == 0, ok, "header on page %d", i+1)
		for _, text := range page.texts {
			require.GreaterOrEqual(t, text.Y, tocBottom)
		}
	}

	for _, entry := range entries {
		found := false
		for _, page := range doc.pages {
			title, ok := page.find(entry.Title)
			if !ok {
				continue
			}
			found = true
			_, ok = page.find(entry.Label)
			require.True(t, ok, entry.Label)
			number, ok := page.find(strconv.Itoa(entry.StartPage))
			require.True(t, ok, entry.Title)
			require.Equal(t, title.Y, number.Y)
		}
		require.True(t, found, entry.Title)
	}
}

func TestGenerateTOCChapterLinesForRegionalRegulation(t *testing.T) {
	doc := &fakeDocument{}
	GenerateTOC(doc, testProfile(), models.ReportKindRaperda, 2024, []TOCEntry{{
		Label:     "LAMPIRAN IV",
		Title:     "Catatan atas Laporan Keuangan",
		StartPage: 1,
		Calk:      &CalkIndex{LastPage: 6, Chapters: calkChapters()},
	}})

	page := doc.pages[0]
	chapter, ok := page.find("BAB I. PENDAHULUAN")
	require.True(t, ok)
	require.Equal(t, layout.Bold, chapter.Font)
	require.InDelta(t, tocLeft+tocChapterIndent, chapter.X, 0.001)

	sub, ok := page.find("I.1 Maksud dan Tujuan")
	require.True(t, ok)
	require.InDelta(t, tocLeft+tocSubIndent, sub.X, 0.001)
	_, ok = page.find("I.2 Landasan Hukum")
	require.True(t, ok)
}

func TestGenerateTOCOmitsChapterLinesForHeadRegulation(t *testing.T) {
	doc := &fakeDocument{}
	GenerateTOC(doc, testProfile(), models.ReportKindRaperbup, 2024, []TOCEntry{{
		Label:     "LAMPIRAN IV",
		Title:     "Catatan atas Laporan Keuangan",
		StartPage: 1,
		Calk:      &CalkIndex{LastPage: 6, Chapters: calkChapters()},
	}})

	page := doc.pages[0]
	require.False(t, page.hasPrefix("BAB "))
	sub, ok := page.find("Maksud dan Tujuan")
	require.True(t, ok)
	require.InDelta(t, tocLeft+tocSubIndent, sub.X, 0.001)
	_, ok = page.find("Landasan Hukum")
	require.True(t, ok)
}

func TestGenerateTOCSuppressesCalkNumbersBeyondLastPage(t *testing.T) {
	doc := &fakeDocument{}
	GenerateTOC(doc, testProfile(), models.ReportKindPerda, 2024, []TOCEntry{{
		Label:     "LAMPIRAN IV",
		Title:     "Catatan atas Laporan Keuangan",
		StartPage: 1,
		Calk:      &CalkIndex{LastPage: 6, Chapters: calkChapters()},
	}})

	page := doc.pages[0]
	chapter, _ := page.find("BAB I. PENDAHULUAN")
	three, ok := page.find("3")
	require.True(t, ok)
	require.Equal(t, chapter.Y, three.Y)
	_, ok = page.find("4")
	require.True(t, ok)
	_, ok = page.find("9")
	require.False(t, ok)
	_, ok = page.find("-")
	require.False(t, ok)
}

func TestGenerateTOCPaginatesCalkLines(t *testing.T) {
	chapters := make(models.CalkChapters, 0, 8)
	for i := 1; i <= 8; i++ {
		chapter := models.CalkChapter{Numeral: strconv.Itoa(i), Title: fmt.Sprintf("Bab %d", i), StartPage: i}
		for j := 1; j <= 10; j++ {
			chapter.SubChapters = append(chapter.SubChapters, models.CalkSubChapter{Numeral: strconv.Itoa(j), Title: "Rincian", StartPage: i})
		}
		chapters = append(chapters, chapter)
	}
	doc := &fakeDocument{}
	pages := GenerateTOC(doc, testProfile(), models.ReportKindPerda, 2024, []TOCEntry{{
		Label: "LAMPIRAN I", Title: "Catatan", StartPage: 1,
		Calk: &CalkIndex{LastPage: 200, Chapters: chapters},
	}})
	require.Greater(t, pages, 1)
	for _, page := range doc.pages {
		for _, text := range page.texts {
			require.GreaterOrEqual(t, text.Y, tocBottom)
		}
	}
	_, ok := doc.pages[len(doc.pages)-1].find("8.10 Rincian")
	require.True(t, ok)
}
