package docxgen

import (
	"bytes"
	"io"
	"os"
)

// Builder accumulates paragraphs and writes them as a .docx package.
// Each AddText or AddImage call appends exactly one paragraph.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	doc    *Document
	config *Config
	title  string
}

// NewBuilder creates a builder using the global configuration.
func NewBuilder() *Builder {
	return NewBuilderWithConfig(GetGlobalConfig())
}

// NewBuilderWithConfig creates a builder with a custom configuration.
func NewBuilderWithConfig(config *Config) *Builder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Builder{
		doc:    NewDocument(),
		config: config,
	}
}

// SetTitle sets the document title written to the core properties.
func (b *Builder) SetTitle(title string) {
	b.title = title
}

// Document returns the document being built.
func (b *Builder) Document() *Document {
	return b.doc
}

// AddText parses a delta and appends its ops as one paragraph, one run per op.
// A malformed delta is logged and returned as a *ParseError; the document is
// left unchanged.
func (b *Builder) AddText(deltaJSON string) error {
	Debug("Adding delta of %d bytes", len(deltaJSON))

	ops, err := ParseDelta(deltaJSON)
	if err != nil {
		WithField("paragraph", b.doc.Len()).Error("Error parsing delta: %v", err)
		return err
	}

	para := &Paragraph{Runs: make([]Run, 0, len(ops))}
	for _, op := range ops {
		para.Runs = append(para.Runs, &TextRun{
			Text:   op.Insert,
			Bold:   op.Bold,
			Italic: op.Italic,
		})
	}
	b.doc.AppendParagraph(para)
	return nil
}

// AddImage reads the image at path and appends it as its own paragraph.
// Width and height are in pixels and are stored exactly as given.
func (b *Builder) AddImage(path string, width, height uint32) error {
	data, err := readImageFile(path)
	if err != nil {
		return err
	}
	b.appendImage(data, width, height)
	return nil
}

// AddImageFrom reads r to EOF and appends the bytes as an image paragraph.
func (b *Builder) AddImageFrom(r io.Reader, width, height uint32) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return NewIOError("read image", "", err)
	}
	b.appendImage(data, width, height)
	return nil
}

// AddImageAutoSize is AddImage with a zero width or height taken from the
// image header. When only one side is zero the aspect ratio is kept.
// Unrecognized formats keep the dimensions given.
func (b *Builder) AddImageAutoSize(path string, width, height uint32) error {
	data, err := readImageFile(path)
	if err != nil {
		return err
	}
	width, height = resolveImageSize(data, width, height)
	b.appendImage(data, width, height)
	return nil
}

// AddImageFromAutoSize is AddImageFrom with the sizing of AddImageAutoSize.
func (b *Builder) AddImageFromAutoSize(r io.Reader, width, height uint32) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return NewIOError("read image", "", err)
	}
	width, height = resolveImageSize(data, width, height)
	b.appendImage(data, width, height)
	return nil
}

func readImageFile(path string) ([]byte, error) {
	Debug("Fetching image file: %s", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, NewIOError("open image", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, NewIOError("read image", path, err)
	}
	return data, nil
}

func (b *Builder) appendImage(data []byte, width, height uint32) {
	b.doc.AppendParagraph(&Paragraph{Runs: []Run{&ImageRun{
		Data:   data,
		Width:  width,
		Height: height,
	}}})
	Debug("Added image of %d bytes (%dx%d)", len(data), width, height)
}

func (b *Builder) packageOptions() packageOptions {
	return packageOptions{
		Title:    b.title,
		Creator:  b.config.Creator,
		Compress: b.config.Compress,
	}
}

// WriteTo writes the package to w. The document is not modified, so repeated
// calls produce identical bytes.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := writePackage(cw, b.doc, b.packageOptions()); err != nil {
		return cw.n, NewIOError("write package", "", err)
	}
	return cw.n, nil
}

// Bytes returns the package as a byte slice.
func (b *Builder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Generate writes the package to the file at path, replacing it if it exists.
// On failure the partially written file is removed.
func (b *Builder) Generate(path string) error {
	Debug("Exporting to %s", path)

	f, err := os.Create(path)
	if err != nil {
		return NewIOError("create", path, err)
	}

	if err := writePackage(f, b.doc, b.packageOptions()); err != nil {
		f.Close()
		os.Remove(path)
		return NewIOError("write", path, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return NewIOError("close", path, err)
	}

	Info("Wrote %d paragraphs to %s", b.doc.Len(), path)
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
