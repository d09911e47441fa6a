package assembly

import (
	"strings"
	"unicode/utf8"

	"github.com/noah-isme/perda-lpj-api/pkg/layout"
	"github.com/noah-isme/perda-lpj-api/pkg/pdfdoc"
)

type drawnText struct {
	Text string
	X, Y float64
	Font layout.Font
	Size float64
}

type drawnRect struct {
	X, Y, Width, Height float64
}

// fakeCanvas measures every rune as half the font size wide.
type fakeCanvas struct {
	width, height float64
	texts         []drawnText
	rects         []drawnRect
	lines         int
	images        []string
}

func newFakeCanvas() *fakeCanvas {
	return &fakeCanvas{width: layout.PageWidth, height: layout.PageHeight}
}

func (c *fakeCanvas) Size() (float64, float64) { return c.width, c.height }

func (c *fakeCanvas) TextWidth(text string, _ layout.Font, size float64) float64 {
	return float64(utf8.RuneCountInString(text)) * size * 0.5
}

func (c *fakeCanvas) DrawText(text string, x, y float64, font layout.Font, size float64) {
	c.texts = append(c.texts, drawnText{Text: text, X: x, Y: y, Font: font, Size: size})
}

func (c *fakeCanvas) DrawRect(x, y, width, height, _ float64) {
	c.rects = append(c.rects, drawnRect{X: x, Y: y, Width: width, Height: height})
}

func (c *fakeCanvas) DrawLine(_, _, _, _, _ float64) { c.lines++ }

func (c *fakeCanvas) DrawImage(name string, _, _, _, _ float64) {
	c.images = append(c.images, name)
}

func (c *fakeCanvas) find(text string) (drawnText, bool) {
	for _, t := range c.texts {
		if t.Text == text {
			return t, true
		}
	}
	return drawnText{}, false
}

func (c *fakeCanvas) hasPrefix(prefix string) bool {
	for _, t := range c.texts {
		if strings.HasPrefix(t.Text, prefix) {
			return true
		}
	}
	return false
}

func fakePages(n int) ([]pdfdoc.Canvas, []*fakeCanvas) {
	canvases := make([]pdfdoc.Canvas, n)
	fakes := make([]*fakeCanvas, n)
	for i := range canvases {
		fakes[i] = newFakeCanvas()
		canvases[i] = fakes[i]
	}
	return canvases, fakes
}

type fakeSet struct {
	pages []*fakeCanvas
}

func (s *fakeSet) Pages() []pdfdoc.Canvas {
	out := make([]pdfdoc.Canvas, len(s.pages))
	for i, p := range s.pages {
		out[i] = p
	}
	return out
}

// fakeDocument keeps every page as a fakeCanvas so drawn text can be inspected.
type fakeDocument struct {
	pages  []*fakeCanvas
	sets   []*fakeSet
	images []string
}

func (d *fakeDocument) AddPage(width, height float64) pdfdoc.Canvas {
	c := &fakeCanvas{width: width, height: height}
	d.pages = append(d.pages, c)
	return c
}

func (d *fakeDocument) Prepare(src *pdfdoc.Source) pdfdoc.PageSet {
	set := &fakeSet{}
	for _, size := range src.Pages() {
		set.pages = append(set.pages, &fakeCanvas{width: size.Width, height: size.Height})
	}
	d.sets = append(d.sets, set)
	return set
}

func (d *fakeDocument) Append(set pdfdoc.PageSet) error {
	d.pages = append(d.pages, set.(*fakeSet).pages...)
	return nil
}

func (d *fakeDocument) RegisterImage(name string, _ []byte) error {
	d.images = append(d.images, name)
	return nil
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) Bytes() ([]byte, error) { return []byte("%PDF-fake"), nil }

// recordingDocument is a real builder whose imported pages also record the text
// stamped on them.
type recordingDocument struct {
	*pdfdoc.Builder
	sets []*recordingSet
}

type recordingSet struct {
	inner pdfdoc.PageSet
	pages []*recordingCanvas
}

func (s *recordingSet) Pages() []pdfdoc.Canvas {
	out := make([]pdfdoc.Canvas, len(s.pages))
	for i, p := range s.pages {
		out[i] = p
	}
	return out
}

type recordingCanvas struct {
	pdfdoc.Canvas
	texts []string
}

func (c *recordingCanvas) DrawText(text string, x, y float64, font layout.Font, size float64) {
	c.texts = append(c.texts, text)
	c.Canvas.DrawText(text, x, y, font, size)
}

func (d *recordingDocument) Prepare(src *pdfdoc.Source) pdfdoc.PageSet {
	inner := d.Builder.Prepare(src)
	set := &recordingSet{inner: inner}
	for _, page := range inner.Pages() {
		set.pages = append(set.pages, &recordingCanvas{Canvas: page})
	}
	d.sets = append(d.sets, set)
	return set
}

func (d *recordingDocument) Append(set pdfdoc.PageSet) error {
	if rec, ok := set.(*recordingSet); ok {
		return d.Builder.Append(rec.inner)
	}
	return d.Builder.Append(set)
}
