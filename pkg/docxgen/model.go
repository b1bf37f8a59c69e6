package docxgen

import "strings"

// Run is a styled content unit inside a paragraph: *TextRun or *ImageRun.
type Run interface {
	isRun()
}

// TextRun is a run of text with bold/italic toggles.
type TextRun struct {
	Text   string
	Bold   bool
	Italic bool
}

func (*TextRun) isRun() {}

// ImageRun is an embedded raster image. Data is owned by the run; Width and
// Height are display pixels.
type ImageRun struct {
	Data   []byte
	Width  uint32
	Height uint32
}

func (*ImageRun) isRun() {}

// Paragraph is an ordered sequence of runs.
type Paragraph struct {
	Runs []Run
}

// Text returns the concatenated text of the paragraph's text runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		if tr, ok := r.(*TextRun); ok {
			sb.WriteString(tr.Text)
		}
	}
	return sb.String()
}

// Document is an append-only, ordered sequence of paragraphs.
type Document struct {
	paragraphs []*Paragraph
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// AppendParagraph adds p after the last paragraph.
func (d *Document) AppendParagraph(p *Paragraph) {
	d.paragraphs = append(d.paragraphs, p)
}

// Paragraphs returns the paragraphs in document order. The slice must not
// be modified.
func (d *Document) Paragraphs() []*Paragraph {
	return d.paragraphs
}

// Len returns the number of paragraphs.
func (d *Document) Len() int {
	return len(d.paragraphs)
}

// ImageCount returns the number of image runs in the document.
func (d *Document) ImageCount() int {
	n := 0
	for _, p := range d.paragraphs {
		for _, r := range p.Runs {
			if _, ok := r.(*ImageRun); ok {
				n++
			}
		}
	}
	return n
}
