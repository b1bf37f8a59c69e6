package xml

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Document represents the w:document root of word/document.xml
type Document struct {
	Body *Body
}

// MarshalXML writes the root element with every namespace the body may use,
// so nested elements can be emitted with plain prefixed names.
func (doc Document) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:document"}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "xmlns:w"}, Value: NamespaceW},
		{Name: xml.Name{Local: "xmlns:r"}, Value: NamespaceR},
		{Name: xml.Name{Local: "xmlns:wp"}, Value: NamespaceWP},
		{Name: xml.Name{Local: "xmlns:a"}, Value: NamespaceA},
		{Name: xml.Name{Local: "xmlns:pic"}, Value: NamespacePic},
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	body := doc.Body
	if body == nil {
		body = &Body{}
	}
	if err := e.EncodeElement(body, xml.StartElement{Name: xml.Name{Local: "w:body"}}); err != nil {
		return err
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Body represents the document body
type Body struct {
	// Elements maintains the order of all body elements
	Elements []BodyElement
	// SectionProperties at the end of the body (critical for Word compatibility)
	SectionProperties *SectionProperties
}

// MarshalXML implements custom XML marshaling to preserve element order
func (b Body) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:body"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, elem := range b.Elements {
		switch el := elem.(type) {
		case *Paragraph:
			if err := e.EncodeElement(el, xml.StartElement{Name: xml.Name{Local: "w:p"}}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported body element %T", elem)
		}
	}

	if b.SectionProperties != nil {
		if err := e.EncodeElement(b.SectionProperties, xml.StartElement{Name: xml.Name{Local: "w:sectPr"}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// SectionProperties describes the single section of a generated document.
type SectionProperties struct {
	PageSize   PageSize
	PageMargin PageMargin
}

// PageSize is w:pgSz in twentieths of a point.
type PageSize struct {
	Width  int
	Height int
}

// PageMargin is w:pgMar in twentieths of a point.
type PageMargin struct {
	Top, Right, Bottom, Left int
	Header, Footer, Gutter   int
}

// DefaultSectionProperties returns an A4 portrait section.
func DefaultSectionProperties() *SectionProperties {
	return &SectionProperties{
		PageSize: PageSize{Width: 11906, Height: 16838},
		PageMargin: PageMargin{
			Top: 1985, Right: 1701, Bottom: 1701, Left: 1701,
			Header: 851, Footer: 992, Gutter: 0,
		},
	}
}

// MarshalXML implements custom XML marshaling for SectionProperties
func (s SectionProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:sectPr"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	pgSz := xml.StartElement{
		Name: xml.Name{Local: "w:pgSz"},
		Attr: []xml.Attr{
			intAttr("w:w", s.PageSize.Width),
			intAttr("w:h", s.PageSize.Height),
		},
	}
	if err := e.EncodeElement(struct{}{}, pgSz); err != nil {
		return err
	}

	m := s.PageMargin
	pgMar := xml.StartElement{
		Name: xml.Name{Local: "w:pgMar"},
		Attr: []xml.Attr{
			intAttr("w:top", m.Top),
			intAttr("w:right", m.Right),
			intAttr("w:bottom", m.Bottom),
			intAttr("w:left", m.Left),
			intAttr("w:header", m.Header),
			intAttr("w:footer", m.Footer),
			intAttr("w:gutter", m.Gutter),
		},
	}
	if err := e.EncodeElement(struct{}{}, pgMar); err != nil {
		return err
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

func intAttr(name string, v int) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: fmt.Sprintf("%d", v)}
}

// WriteDocument writes doc as a standalone XML part, declaration included.
func WriteDocument(w io.Writer, doc *Document) error {
	if _, err := io.WriteString(w, Declaration); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return enc.Flush()
}
