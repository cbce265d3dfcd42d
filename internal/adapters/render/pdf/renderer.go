// Package pdf renders outfit guide documents as single-page PDF files.
package pdf

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/okian/stylepulse/internal/domain/guide"
)

// Layout constants in millimetres.
const (
	cellWidth  = 200
	cellHeight = 10
	fontSize   = 12
)

// ContentType is the MIME type of rendered guides.
const ContentType = "application/pdf"

// FileName is the suggested download name.
const FileName = "style_guide.pdf"

// Renderer writes a guide.Document as an A4 page: the title, a blank line,
// then one line per bullet.
type Renderer struct {
	font        string
	compression bool
	creator     string
}

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithFont selects one of the PDF core fonts (Helvetica, Courier, Times).
func WithFont(family string) Option {
	return func(r *Renderer) {
		if family != "" {
			r.font = family
		}
	}
}

// WithCompression toggles stream compression.
func WithCompression(on bool) Option {
	return func(r *Renderer) {
		r.compression = on
	}
}

// NewRenderer creates a PDF renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		font:        "Helvetica",
		compression: true,
		creator:     "StylePulse",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes doc to w.
func (r *Renderer) Render(w io.Writer, doc guide.Document) error {
	p := fpdf.New("P", "mm", "A4", "")
	p.SetCompression(r.compression)
	p.SetCreator(r.creator, true)
	p.SetTitle(doc.Title, true)
	p.AddPage()
	p.SetFont(r.font, "", fontSize)

	// Core fonts are cp1252, so text is translated before it is written.
	tr := p.UnicodeTranslatorFromDescriptor("")

	p.CellFormat(cellWidth, cellHeight, tr(doc.Title), "", 1, "L", false, 0, "")
	p.Ln(-1)
	for _, line := range doc.Lines {
		p.CellFormat(cellWidth, cellHeight, tr(line), "", 1, "L", false, 0, "")
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}
