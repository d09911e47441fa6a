// Package assembly composes the compiled accountability report: cover, body of
// text, table of contents, then one divider plus stamped pages per attachment.
package assembly

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/perda-lpj-api/internal/models"
	"github.com/noah-isme/perda-lpj-api/pkg/pdfdoc"
)

const sealImageName = "seal"

// ErrInvalidRequest is returned for requests that cannot describe a report.
var ErrInvalidRequest = errors.New("assembly: invalid request")

// Document is the output document under construction.
type Document interface {
	PageAdder
	Prepare(src *pdfdoc.Source) pdfdoc.PageSet
	Append(set pdfdoc.PageSet) error
	RegisterImage(name string, png []byte) error
	PageCount() int
	Bytes() ([]byte, error)
}

// Request describes one compilation run.
type Request struct {
	Kind        models.ReportKind
	Year        int
	Body        []byte
	Attachments []Attachment
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithSeal embeds png on every cover. ratio is the image height/width ratio.
func WithSeal(png []byte, ratio float64) Option {
	return func(a *Assembler) {
		if len(png) > 0 && ratio > 0 {
			a.seal = png
			a.sealRatio = ratio
		}
	}
}

// WithDocumentFactory replaces the output document constructor.
func WithDocumentFactory(factory func(fontFamily string) Document) Option {
	return func(a *Assembler) {
		if factory != nil {
			a.newDocument = factory
		}
	}
}

// Assembler builds compiled reports. It holds no per-run state and is safe to
// share between goroutines; every run owns its own Document.
type Assembler struct {
	profile     Profile
	seal        []byte
	sealRatio   float64
	newDocument func(fontFamily string) Document
	logger      *zap.Logger
}

// NewAssembler constructs an Assembler.
func NewAssembler(profile Profile, logger *zap.Logger, opts ...Option) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Assembler{
		profile: profile,
		logger:  logger,
		newDocument: func(fontFamily string) Document {
			return pdfdoc.New(fontFamily)
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble produces the compiled report. Any decode failure aborts the run and
// wraps pdfdoc.ErrDecode; no partial output is returned.
func (a *Assembler) Assemble(ctx context.Context, req Request) ([]byte, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown report kind %q", ErrInvalidRequest, req.Kind)
	}
	doc := a.newDocument(a.profile.FontFamily)
	seal, err := a.registerSeal(doc)
	if err != nil {
		return nil, err
	}

	GenerateCover(doc, a.profile, seal, req.Kind, req.Year)

	if len(req.Body) > 0 {
		body, err := pdfdoc.Decode(req.Body)
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		if err := doc.Append(doc.Prepare(body)); err != nil {
			return nil, fmt.Errorf("append body: %w", err)
		}
	}

	attachments := sortedAttachments(req.Attachments)
	if len(attachments) > 0 {
		sources := make([]*pdfdoc.Source, len(attachments))
		entries := make([]TOCEntry, len(attachments))
		start := 1
		for i, att := range attachments {
			src, err := pdfdoc.Decode(att.Content)
			if err != nil {
				return nil, fmt.Errorf("decode lampiran %s: %w", att.Label, err)
			}
			sources[i] = src
			entries[i] = tocEntry(att, start)
			start += src.PageCount()
		}
		tocPages := GenerateTOC(doc, a.profile, req.Kind, req.Year, entries)
		a.logger.Debug("table of contents generated", zap.Int("pages", tocPages), zap.Int("entries", len(entries)))

		counter := 1
		for i, att := range attachments {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			GenerateDivider(doc, a.profile, req.Kind, req.Year, att.Label, att.DividerTitle)
			set := doc.Prepare(sources[i])
			counter = stamp(set.Pages(), counter, att)
			if err := doc.Append(set); err != nil {
				return nil, fmt.Errorf("append lampiran %s: %w", att.Label, err)
			}
		}
	}

	out, err := doc.Bytes()
	if err != nil {
		return nil, err
	}
	a.logger.Info("report assembled",
		zap.String("kind", string(req.Kind)),
		zap.Int("year", req.Year),
		zap.Int("attachments", len(attachments)),
		zap.Int("pages", doc.PageCount()),
	)
	return out, nil
}

// PreviewAttachment renders the divider and stamped pages of a single attachment,
// numbered from 1, so footer geometry can be tuned before compiling.
func (a *Assembler) PreviewAttachment(ctx context.Context, kind models.ReportKind, year int, att Attachment) ([]byte, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown report kind %q", ErrInvalidRequest, kind)
	}
	src, err := pdfdoc.Decode(att.Content)
	if err != nil {
		return nil, fmt.Errorf("decode lampiran %s: %w", att.Label, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := a.newDocument(a.profile.FontFamily)
	GenerateDivider(doc, a.profile, kind, year, att.Label, att.DividerTitle)
	set := doc.Prepare(src)
	stamp(set.Pages(), 1, att)
	if err := doc.Append(set); err != nil {
		return nil, fmt.Errorf("append lampiran %s: %w", att.Label, err)
	}
	return doc.Bytes()
}

func (a *Assembler) registerSeal(doc Document) (*Seal, error) {
	if len(a.seal) == 0 {
		return nil, nil
	}
	if err := doc.RegisterImage(sealImageName, a.seal); err != nil {
		return nil, err
	}
	return &Seal{Name: sealImageName, Ratio: a.sealRatio}, nil
}

func tocEntry(att Attachment, start int) TOCEntry {
	entry := TOCEntry{
		Label:     "LAMPIRAN " + att.Label,
		Title:     att.DividerTitle,
		StartPage: start,
	}
	if calk, ok := att.Style.(CalkStyle); ok {
		entry.Calk = &CalkIndex{LastPage: calk.LastPage, Chapters: calk.Chapters}
	}
	return entry
}

func sortedAttachments(in []Attachment) []Attachment {
	out := make([]Attachment, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sequence < out[j].Sequence
	})
	return out
}
