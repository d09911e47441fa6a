// Package pdfdoc wraps the PDF libraries used by the report compiler: pdfcpu to
// decode and validate uploaded files, gofpdf with its gofpdi importer to build the
// compiled document, mimetype to sniff uploads and imaging to prepare the seal.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// MIMEPDF is the only content type accepted for report files.
const MIMEPDF = "application/pdf"

// ErrDecode is returned when bytes cannot be read as a PDF document.
var ErrDecode = errors.New("pdfdoc: cannot decode pdf")

// PageSize is a page's MediaBox size in points.
type PageSize struct {
	Width  float64
	Height float64
}

// Source is a decoded, read-only PDF ready to be appended to a Builder.
type Source struct {
	data  []byte
	pages []PageSize
}

// DetectMIME sniffs the content type of data.
func DetectMIME(data []byte) string {
	return mimetype.Detect(data).String()
}

// IsPDF reports whether data looks like a PDF file.
func IsPDF(data []byte) bool {
	return mimetype.Detect(data).Is(MIMEPDF)
}

// Decode validates data and reads its page geometry. Files written with
// cross-reference or object streams (PDF 1.5+) are rewritten with a classic
// xref table, the only layout the page importer can read; Bytes returns the
// rewritten file.
func Decode(data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}
	if !IsPDF(data) {
		return nil, fmt.Errorf("%w: content is %s", ErrDecode, DetectMIME(data))
	}
	if UsesXRefStreams(data) {
		classic, err := rewriteClassic(data)
		if err != nil {
			return nil, err
		}
		data = classic
	}
	dims, err := api.PageDims(bytes.NewReader(data), relaxedConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrDecode)
	}
	pages := make([]PageSize, len(dims))
	for i, d := range dims {
		pages[i] = PageSize{Width: d.Width, Height: d.Height}
	}
	return &Source{data: data, pages: pages}, nil
}

// UsesXRefStreams reports whether data carries a cross-reference stream or
// compressed object streams.
func UsesXRefStreams(data []byte) bool {
	return bytes.Contains(data, []byte("/XRef")) || bytes.Contains(data, []byte("/ObjStm"))
}

func rewriteClassic(data []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: rewrite: %v", ErrDecode, r)
		}
	}()
	conf := relaxedConfig()
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	var buf bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &buf, conf); err != nil {
		return nil, fmt.Errorf("%w: rewrite: %v", ErrDecode, err)
	}
	return buf.Bytes(), nil
}

func relaxedConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Bytes returns the file as it is imported, which may differ from the input
// given to Decode.
func (s *Source) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.data
}

// PageCount returns the number of physical pages.
func (s *Source) PageCount() int {
	if s == nil {
		return 0
	}
	return len(s.pages)
}

// Pages returns the per-page sizes in document order.
func (s *Source) Pages() []PageSize {
	if s == nil {
		return nil
	}
	out := make([]PageSize, len(s.pages))
	copy(out, s.pages)
	return out
}

// CountPages decodes data and returns its page count.
func CountPages(data []byte) (int, error) {
	src, err := Decode(data)
	if err != nil {
		return 0, err
	}
	return src.PageCount(), nil
}
