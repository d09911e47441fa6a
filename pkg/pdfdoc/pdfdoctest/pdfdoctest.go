// Package pdfdoctest generates small PDF fixtures for tests.
package pdfdoctest

import (
	"bytes"
	"fmt"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Pages returns an A4 PDF with the given number of numbered pages.
func Pages(t testing.TB, count int) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 14)
	for i := 1; i <= count; i++ {
		pdf.AddPage()
		pdf.Text(20, 30, fmt.Sprintf("Halaman sumber %d dari %d", i, count))
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("pdfdoctest: render fixture: %v", err)
	}
	return buf.Bytes()
}

// XRefStreamPages returns the Pages fixture rewritten by pdfcpu with its
// defaults: a cross-reference stream and compressed object streams, the layout
// office suites write for PDF 1.5 and later.
func XRefStreamPages(t testing.TB, count int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := api.Optimize(bytes.NewReader(Pages(t, count)), &buf, model.NewDefaultConfiguration()); err != nil {
		t.Fatalf("pdfdoctest: optimize fixture: %v", err)
	}
	return buf.Bytes()
}

// PNG returns a small solid seal image fixture.
func PNG(t testing.TB, width, height int) []byte {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 180, G: 20, B: 20, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("pdfdoctest: encode png: %v", err)
	}
	return buf.Bytes()
}
