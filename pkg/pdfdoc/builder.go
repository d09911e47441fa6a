package pdfdoc

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"github.com/noah-isme/perda-lpj-api/pkg/layout"
)

// DefaultFontFamily is the core font family used for every generated line.
const DefaultFontFamily = "Times"

// Canvas is one page of the output document. Coordinates are bottom-left based.
type Canvas interface {
	layout.Surface
	Size() (width, height float64)
	DrawRect(x, y, width, height, lineWidth float64)
	DrawLine(x1, y1, x2, y2, lineWidth float64)
	DrawImage(name string, x, y, width, height float64)
}

// PageSet is a group of pages taken from a decoded source. Overlays drawn on its
// pages are applied when the set is appended to the document.
type PageSet interface {
	Pages() []Canvas
}

// Builder accumulates the compiled document. It is not safe for concurrent use;
// a Builder is owned by exactly one assembly run.
type Builder struct {
	pdf      *gofpdf.Fpdf
	importer *gofpdi.Importer
	family   string
	pages    int
	// gofpdi keys its readers by the address of the io.ReadSeeker, so every
	// appended stream is kept alive until the document is serialised.
	streams []*io.ReadSeeker
	// encode maps UTF-8 text onto cp1252, the encoding of the core fonts.
	encode func(string) string
}

// New creates an empty document whose default page is the report page size.
func New(family string) *Builder {
	if family == "" {
		family = DefaultFontFamily
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: layout.PageWidth, Ht: layout.PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)
	pdf.SetFont(family, "", 12)
	return &Builder{
		pdf:      pdf,
		importer: gofpdi.NewImporter(),
		family:   family,
		encode:   pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// CheckImport imports every page of src into a scratch document, so files the
// importer cannot read are rejected before they are stored.
func CheckImport(src *Source) error {
	b := New("")
	return b.Append(b.Prepare(src))
}

// AddPage appends a blank page and returns a canvas drawing on it directly.
// Generated pages are drawn completely before the next page is added.
func (b *Builder) AddPage(width, height float64) Canvas {
	b.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: width, Ht: height})
	b.pages++
	return &livePage{b: b, width: width, height: height}
}

// Prepare exposes the pages of src for stamping without appending them yet.
func (b *Builder) Prepare(src *Source) PageSet {
	set := &pendingSet{src: src}
	for _, size := range src.pages {
		set.pages = append(set.pages, &pendingPage{b: b, size: size})
	}
	return set
}

// Append imports every page of set, then replays the overlays drawn on it.
func (b *Builder) Append(set PageSet) (err error) {
	pending, ok := set.(*pendingSet)
	if !ok {
		return fmt.Errorf("pdfdoc: foreign page set %T", set)
	}
	// gofpdi panics on malformed input instead of returning errors.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: import: %v", ErrDecode, r)
		}
	}()
	rs := io.ReadSeeker(bytes.NewReader(pending.src.data))
	b.streams = append(b.streams, &rs)
	for i, page := range pending.pages {
		tpl := b.importer.ImportPageFromStream(b.pdf, &rs, i+1, "/MediaBox")
		b.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: page.size.Width, Ht: page.size.Height})
		b.pages++
		b.importer.UseImportedTemplate(b.pdf, tpl, 0, 0, page.size.Width, page.size.Height)
		live := &livePage{b: b, width: page.size.Width, height: page.size.Height}
		for _, op := range page.ops {
			op(live)
		}
	}
	if b.pdf.Err() {
		return fmt.Errorf("%w: %v", ErrDecode, b.pdf.Error())
	}
	return nil
}

// RegisterImage makes a PNG available to DrawImage under name.
func (b *Builder) RegisterImage(name string, png []byte) error {
	info := b.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	if info == nil || b.pdf.Err() {
		return fmt.Errorf("pdfdoc: register image %s: %v", name, b.pdf.Error())
	}
	return nil
}

// PageCount returns the number of pages appended so far.
func (b *Builder) PageCount() int {
	return b.pages
}

// Bytes serialises the document. The builder cannot be used afterwards.
func (b *Builder) Bytes() ([]byte, error) {
	if b.pdf.Err() {
		return nil, fmt.Errorf("pdfdoc: build: %w", b.pdf.Error())
	}
	var buf bytes.Buffer
	if err := b.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdfdoc: output: %w", err)
	}
	b.streams = nil
	return buf.Bytes(), nil
}

func (b *Builder) textWidth(text string, font layout.Font, size float64) float64 {
	b.pdf.SetFont(b.family, font.String(), size)
	return b.pdf.GetStringWidth(b.encode(text))
}

// livePage draws on the document's current page.
type livePage struct {
	b      *Builder
	width  float64
	height float64
}

func (p *livePage) Size() (float64, float64) { return p.width, p.height }

func (p *livePage) TextWidth(text string, font layout.Font, size float64) float64 {
	return p.b.textWidth(text, font, size)
}

func (p *livePage) DrawText(text string, x, y float64, font layout.Font, size float64) {
	p.b.pdf.SetFont(p.b.family, font.String(), size)
	p.b.pdf.Text(x, p.height-y, p.b.encode(text))
}

func (p *livePage) DrawRect(x, y, width, height, lineWidth float64) {
	p.b.pdf.SetLineWidth(lineWidth)
	p.b.pdf.Rect(x, p.height-y-height, width, height, "D")
}

func (p *livePage) DrawLine(x1, y1, x2, y2, lineWidth float64) {
	p.b.pdf.SetLineWidth(lineWidth)
	p.b.pdf.Line(x1, p.height-y1, x2, p.height-y2)
}

func (p *livePage) DrawImage(name string, x, y, width, height float64) {
	p.b.pdf.ImageOptions(name, x, p.height-y-height, width, height, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

type pendingSet struct {
	src   *Source
	pages []*pendingPage
}

func (s *pendingSet) Pages() []Canvas {
	out := make([]Canvas, len(s.pages))
	for i, p := range s.pages {
		out[i] = p
	}
	return out
}

// pendingPage records overlay operations until its set is appended.
type pendingPage struct {
	b    *Builder
	size PageSize
	ops  []func(Canvas)
}

func (p *pendingPage) Size() (float64, float64) { return p.size.Width, p.size.Height }

func (p *pendingPage) TextWidth(text string, font layout.Font, size float64) float64 {
	return p.b.textWidth(text, font, size)
}

func (p *pendingPage) DrawText(text string, x, y float64, font layout.Font, size float64) {
	p.ops = append(p.ops, func(c Canvas) { c.DrawText(text, x, y, font, size) })
}

func (p *pendingPage) DrawRect(x, y, width, height, lineWidth float64) {
	p.ops = append(p.ops, func(c Canvas) { c.DrawRect(x, y, width, height, lineWidth) })
}

func (p *pendingPage) DrawLine(x1, y1, x2, y2, lineWidth float64) {
	p.ops = append(p.ops, func(c Canvas) { c.DrawLine(x1, y1, x2, y2, lineWidth) })
}

func (p *pendingPage) DrawImage(name string, x, y, width, height float64) {
	p.ops = append(p.ops, func(c Canvas) { c.DrawImage(name, x, y, width, height) })
}
