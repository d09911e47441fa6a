package pdfdoc_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perda-lpj-api/pkg/layout"
	"github.com/noah-isme/perda-lpj-api/pkg/pdfdoc"
	"github.com/noah-isme/perda-lpj-api/pkg/pdfdoc/pdfdoctest"
)

func TestDecodeCountsPages(t *testing.T) {
	src, err := pdfdoc.Decode(pdfdoctest.Pages(t, 3))
	require.NoError(t, err)
	require.Equal(t, 3, src.PageCount())
	for _, size := range src.Pages() {
		require.InDelta(t, 595.28, size.Width, 1)
		require.InDelta(t, 841.89, size.Height, 1)
	}
}

func TestDecodeRewritesXRefStreams(t *testing.T) {
	raw := pdfdoctest.XRefStreamPages(t, 3)
	require.True(t, pdfdoc.UsesXRefStreams(raw))

	src, err := pdfdoc.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, 3, src.PageCount())
	require.False(t, pdfdoc.UsesXRefStreams(src.Bytes()))
	require.NoError(t, pdfdoc.CheckImport(src))

	b := pdfdoc.New("")
	require.NoError(t, b.Append(b.Prepare(src)))
	out, err := b.Bytes()
	require.NoError(t, err)
	count, err := pdfdoc.CountPages(out)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestDecodeKeepsClassicFilesAsIs(t *testing.T) {
	raw := pdfdoctest.Pages(t, 2)
	require.False(t, pdfdoc.UsesXRefStreams(raw))
	src, err := pdfdoc.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, raw, src.Bytes())
}

func TestDecodeRejectsNonPDF(t *testing.T) {
	_, err := pdfdoc.Decode([]byte("bukan dokumen pdf"))
	require.Error(t, err)
	require.True(t, errors.Is(err, pdfdoc.ErrDecode))

	_, err = pdfdoc.Decode(nil)
	require.True(t, errors.Is(err, pdfdoc.ErrDecode))
}

func TestIsPDF(t *testing.T) {
	require.True(t, pdfdoc.IsPDF(pdfdoctest.Pages(t, 1)))
	require.False(t, pdfdoc.IsPDF(pdfdoctest.PNG(t, 4, 4)))
	require.Equal(t, "image/png", pdfdoc.DetectMIME(pdfdoctest.PNG(t, 4, 4)))
}

func TestBuilderMergesGeneratedAndImportedPages(t *testing.T) {
	b := pdfdoc.New("")
	cover := b.AddPage(layout.PageWidth, layout.PageHeight)
	layout.DrawCentered(cover, "BUPATI", 800, layout.Bold, 14)

	src, err := pdfdoc.Decode(pdfdoctest.Pages(t, 4))
	require.NoError(t, err)
	set := b.Prepare(src)
	pages := set.Pages()
	require.Len(t, pages, 4)
	for _, page := range pages {
		page.DrawRect(20, 20, 100, 20, 1)
		page.DrawText("Halaman", 25, 26, layout.Regular, 8)
	}
	require.NoError(t, b.Append(set))
	require.Equal(t, 5, b.PageCount())

	out, err := b.Bytes()
	require.NoError(t, err)
	count, err := pdfdoc.CountPages(out)
	require.NoError(t, err)
	require.Equal(t, 5, count)
}

func TestBuilderAppendsSameSourceTwice(t *testing.T) {
	b := pdfdoc.New("Helvetica")
	src, err := pdfdoc.Decode(pdfdoctest.Pages(t, 2))
	require.NoError(t, err)
	require.NoError(t, b.Append(b.Prepare(src)))
	other, err := pdfdoc.Decode(pdfdoctest.Pages(t, 3))
	require.NoError(t, err)
	require.NoError(t, b.Append(b.Prepare(other)))

	out, err := b.Bytes()
	require.NoError(t, err)
	count, err := pdfdoc.CountPages(out)
	require.NoError(t, err)
	require.Equal(t, 5, count)
}

func TestBuilderTextWidthGrowsWithSize(t *testing.T) {
	b := pdfdoc.New("")
	page := b.AddPage(layout.PageWidth, layout.PageHeight)
	small := page.TextWidth("DAFTAR ISI", layout.Bold, 10)
	large := page.TextWidth("DAFTAR ISI", layout.Bold, 20)
	require.Greater(t, small, 0.0)
	require.InDelta(t, small*2, large, 0.01)
}

func TestBuilderMeasuresTextInFontEncoding(t *testing.T) {
	b := pdfdoc.New("")
	page := b.AddPage(layout.PageWidth, layout.PageHeight)
	require.InDelta(t, page.TextWidth("e", layout.Regular, 10), page.TextWidth("é", layout.Regular, 10), 0.001)
	require.InDelta(t, 5.0, page.TextWidth("–", layout.Regular, 10), 0.001)
	require.InDelta(t, 3.33, page.TextWidth("-", layout.Regular, 10), 0.001)

	page.DrawText("Catatan – Keuangan é", 50, 50, layout.Regular, 10)
	out, err := b.Bytes()
	require.NoError(t, err)
	count, err := pdfdoc.CountPages(out)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestNormalizeSealKeepsAspectRatio(t *testing.T) {
	png, ratio, err := pdfdoc.NormalizeSeal(pdfdoctest.PNG(t, 40, 60), 20)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	require.InDelta(t, 1.5, ratio, 0.01)

	b := pdfdoc.New("")
	page := b.AddPage(layout.PageWidth, layout.PageHeight)
	require.NoError(t, b.RegisterImage("seal", png))
	page.DrawImage("seal", 100, 700, 60, 90)
	_, err = b.Bytes()
	require.NoError(t, err)
}

func TestNormalizeSealRejectsGarbage(t *testing.T) {
	_, _, err := pdfdoc.NormalizeSeal([]byte("not an image"), 10)
	require.Error(t, err)
}
