package assembly

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perda-lpj-api/internal/models"
	"github.com/noah-isme/perda-lpj-api/pkg/pdfdoc"
	"github.com/noah-isme/perda-lpj-api/pkg/pdfdoc/pdfdoctest"
)

func standardAttachment(t *testing.T, seq int, label string, pages int) Attachment {
	return Attachment{
		Sequence:     seq,
		Label:        label,
		DividerTitle: "Laporan Realisasi Anggaran",
		Content:      pdfdoctest.Pages(t, pages),
		Style: StandardStyle{
			Caption: "Laporan Realisasi Anggaran",
			Box:     FooterBox{WidthPercent: 90, OffsetY: 20, Height: 20, FontSize: 8},
		},
	}
}

func recordingAssembler(rec **recordingDocument, opts ...Option) *Assembler {
	opts = append(opts, WithDocumentFactory(func(family string) Document {
		*rec = &recordingDocument{Builder: pdfdoc.New(family)}
		return *rec
	}))
	return NewAssembler(testProfile(), nil, opts...)
}

func TestAssembleBodyAndStandardAttachment(t *testing.T) {
	var rec *recordingDocument
	a := recordingAssembler(&rec)

	out, err := a.Assemble(context.Background(), Request{
		Kind:        models.ReportKindRaperda,
		Year:        2024,
		Body:        pdfdoctest.Pages(t, 5),
		Attachments: []Attachment{standardAttachment(t, 1, "I", 3)},
	})
	require.NoError(t, err)

	count, err := pdfdoc.CountPages(out)
	require.NoError(t, err)
	require.Equal(t, 11, count)

	require.Len(t, rec.sets, 2)
	require.Empty(t, rec.sets[0].pages[0].texts, "body pages are appended verbatim")
	stamped := rec.sets[1].pages
	require.Len(t, stamped, 3)
	for i, page := range stamped {
		require.Equal(t, []string{"PERDA I. LAPORAN REALISASI ANGGARAN", fmt.Sprintf("Halaman %d", i+1)}, page.texts)
	}
}

func TestAssembleCalkAttachmentNumbersIndexedPagesOnly(t *testing.T) {
	var rec *recordingDocument
	a := recordingAssembler(&rec)

	out, err := a.Assemble(context.Background(), Request{
		Kind: models.ReportKindPerda,
		Year: 2024,
		Attachments: []Attachment{{
			Sequence:     1,
			Label:        "IV",
			DividerTitle: "Catatan atas Laporan Keuangan",
			Content:      pdfdoctest.Pages(t, 10),
			Style:        CalkStyle{OffsetY: 20, FontSize: 10, LastPage: 6, Chapters: calkChapters()},
		}},
	})
	require.NoError(t, err)

	count, err := pdfdoc.CountPages(out)
	require.NoError(t, err)
	require.Equal(t, 13, count)

	stamped := rec.sets[0].pages
	require.Len(t, stamped, 10)
	for i, page := range stamped {
		if i < 6 {
			require.Equal(t, []string{fmt.Sprint(i + 1)}, page.texts)
			continue
		}
		require.Empty(t, page.texts)
	}
}

func TestAssembleImportsXRefStreamFiles(t *testing.T) {
	var rec *recordingDocument
	a := recordingAssembler(&rec)

	att := standardAttachment(t, 1, "I", 3)
	att.Content = pdfdoctest.XRefStreamPages(t, 3)
	att.DividerTitle = "Catatan – Neraca Daerah é"
	out, err := a.Assemble(context.Background(), Request{
		Kind:        models.ReportKindRaperda,
		Year:        2024,
		Body:        pdfdoctest.XRefStreamPages(t, 5),
		Attachments: []Attachment{att},
	})
	require.NoError(t, err)

	count, err := pdfdoc.CountPages(out)
	require.NoError(t, err)
	require.Equal(t, 11, count)
	require.Equal(t, "Halaman 3", rec.sets[1].pages[2].texts[1])
}

func TestAssembleCalkAfterStandardUsesRunningCounter(t *testing.T) {
	var rec *recordingDocument
	a := recordingAssembler(&rec)

	_, err := a.Assemble(context.Background(), Request{
		Kind: models.ReportKindPerda,
		Year: 2024,
		Attachments: []Attachment{
			standardAttachment(t, 1, "I", 3),
			{
				Sequence:     2,
				Label:        "II",
				DividerTitle: "Catatan atas Laporan Keuangan",
				Content:      pdfdoctest.Pages(t, 10),
				Style:        CalkStyle{OffsetY: 20, FontSize: 10, LastPage: 6, Chapters: calkChapters()},
			},
		},
	})
	require.NoError(t, err)

	// The counter continues from 4, so only counters 4..6 are at or below
	// the last CALK page and the remaining seven pages stay unnumbered.
	calk := rec.sets[1].pages
	require.Len(t, calk, 10)
	for i, page := range calk {
		if i < 3 {
			require.Equal(t, []string{fmt.Sprint(i + 4)}, page.texts)
			continue
		}
		require.Empty(t, page.texts)
	}
}

func TestAssembleThreadsCounterAcrossAttachments(t *testing.T) {
	doc := &fakeDocument{}
	a := NewAssembler(testProfile(), nil, WithDocumentFactory(func(string) Document { return doc }))

	_, err := a.Assemble(context.Background(), Request{
		Kind: models.ReportKindRaperda,
		Year: 2024,
		Attachments: []Attachment{
			standardAttachment(t, 2, "II", 2),
			standardAttachment(t, 1, "I", 3),
		},
	})
	require.NoError(t, err)

	// cover, toc, divider I, 3 pages, divider II, 2 pages
	require.Len(t, doc.pages, 9)
	_, ok := doc.pages[2].find("LAMPIRAN I")
	require.True(t, ok)
	_, ok = doc.pages[6].find("LAMPIRAN II")
	require.True(t, ok)
	_, ok = doc.pages[3].find("PERDA I. LAPORAN REALISASI ANGGARAN")
	require.True(t, ok)
	_, ok = doc.pages[7].find("Halaman 4")
	require.True(t, ok)
	_, ok = doc.pages[8].find("Halaman 5")
	require.True(t, ok)

	toc := doc.pages[1]
	_, ok = toc.find("DAFTAR ISI")
	require.True(t, ok)
	first, ok := toc.find("1")
	require.True(t, ok)
	second, ok := toc.find("4")
	require.True(t, ok)
	require.Greater(t, first.Y, second.Y)
}

func TestAssembleWithoutAttachmentsSkipsTOC(t *testing.T) {
	doc := &fakeDocument{}
	a := NewAssembler(testProfile(), nil, WithDocumentFactory(func(string) Document { return doc }))

	_, err := a.Assemble(context.Background(), Request{Kind: models.ReportKindPerbup, Year: 2024, Body: pdfdoctest.Pages(t, 2)})
	require.NoError(t, err)
	require.Len(t, doc.pages, 3)
	_, ok := doc.pages[0].find("PERATURAN BUPATI KABUPATEN CONTOH")
	require.True(t, ok)
}

func TestAssembleCoverEmbedsSeal(t *testing.T) {
	png, ratio, err := pdfdoc.NormalizeSeal(pdfdoctest.PNG(t, 40, 50), 40)
	require.NoError(t, err)

	doc := &fakeDocument{}
	a := NewAssembler(testProfile(), nil,
		WithSeal(png, ratio),
		WithDocumentFactory(func(string) Document { return doc }),
	)
	_, err = a.Assemble(context.Background(), Request{Kind: models.ReportKindRaperda, Year: 2024})
	require.NoError(t, err)
	require.Equal(t, []string{sealImageName}, doc.images)
	require.Equal(t, []string{sealImageName}, doc.pages[0].images)

	cover := doc.pages[0]
	for _, line := range []string{"BUPATI KABUPATEN CONTOH", "NOMOR ... TAHUN 2025", "TENTANG", "TAHUN ANGGARAN 2024", "PEMERINTAH KABUPATEN CONTOH", "2025"} {
		_, ok := cover.find(line)
		require.True(t, ok, line)
	}
}

func TestAssembleRealSealOutput(t *testing.T) {
	png, ratio, err := pdfdoc.NormalizeSeal(pdfdoctest.PNG(t, 40, 50), 40)
	require.NoError(t, err)

	out, err := NewAssembler(testProfile(), nil, WithSeal(png, ratio)).Assemble(context.Background(), Request{
		Kind:        models.ReportKindRaperbup,
		Year:        2024,
		Attachments: []Attachment{standardAttachment(t, 1, "I", 1)},
	})
	require.NoError(t, err)
	count, err := pdfdoc.CountPages(out)
	require.NoError(t, err)
	require.Equal(t, 4, count)
}

func TestAssembleAbortsOnDecodeFailure(t *testing.T) {
	a := NewAssembler(testProfile(), nil)

	bad := standardAttachment(t, 2, "II", 1)
	bad.Content = []byte("bukan pdf")
	out, err := a.Assemble(context.Background(), Request{
		Kind:        models.ReportKindRaperda,
		Year:        2024,
		Attachments: []Attachment{standardAttachment(t, 1, "I", 1), bad},
	})
	require.Nil(t, out)
	require.True(t, errors.Is(err, pdfdoc.ErrDecode))

	out, err = a.Assemble(context.Background(), Request{Kind: models.ReportKindRaperda, Year: 2024, Body: []byte("%PDF-1.4 rusak")})
	require.Nil(t, out)
	require.Error(t, err)
}

func TestAssembleRejectsUnknownKind(t *testing.T) {
	_, err := NewAssembler(testProfile(), nil).Assemble(context.Background(), Request{Kind: "LAINNYA", Year: 2024})
	require.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestAssembleStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAssembler(testProfile(), nil).Assemble(ctx, Request{
		Kind:        models.ReportKindRaperda,
		Year:        2024,
		Attachments: []Attachment{standardAttachment(t, 1, "I", 1)},
	})
	require.True(t, errors.Is(err, context.Canceled))
}

func TestPreviewAttachmentStartsAtPageOne(t *testing.T) {
	var rec *recordingDocument
	a := recordingAssembler(&rec)

	out, err := a.PreviewAttachment(context.Background(), models.ReportKindRaperda, 2024, standardAttachment(t, 5, "V", 3))
	require.NoError(t, err)
	count, err := pdfdoc.CountPages(out)
	require.NoError(t, err)
	require.Equal(t, 4, count)
	require.Equal(t, "Halaman 1", rec.sets[0].pages[0].texts[1])
	require.Equal(t, "PERDA V. LAPORAN REALISASI ANGGARAN", rec.sets[0].pages[0].texts[0])
}

func TestPreviewAttachmentRejectsNonPDF(t *testing.T) {
	att := standardAttachment(t, 1, "I", 1)
	att.Content = pdfdoctest.PNG(t, 4, 4)
	_, err := NewAssembler(testProfile(), nil).PreviewAttachment(context.Background(), models.ReportKindPerda, 2024, att)
	require.True(t, errors.Is(err, pdfdoc.ErrDecode))
}
