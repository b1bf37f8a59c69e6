package xml

import (
	"encoding/xml"
	"strings"
)

// Run represents a run of content sharing one set of formatting properties
type Run struct {
	Properties *RunProperties
	// Content keeps text, breaks and drawings in document order
	Content []RunContent
}

// MarshalXML implements custom XML marshaling for Run to ensure proper namespacing
func (r Run) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:r"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if r.Properties != nil && !r.Properties.IsEmpty() {
		if err := e.EncodeElement(r.Properties, xml.StartElement{Name: xml.Name{Local: "w:rPr"}}); err != nil {
			return err
		}
	}

	for _, c := range r.Content {
		var name string
		switch c.(type) {
		case *Text:
			name = "w:t"
		case *Break:
			name = "w:br"
		case *Drawing:
			name = "w:drawing"
		default:
			continue
		}
		if err := e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: name}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// GetText returns the text content of a run, with breaks as newlines
func (r *Run) GetText() string {
	var sb strings.Builder
	for _, c := range r.Content {
		switch v := c.(type) {
		case *Text:
			sb.WriteString(v.Content)
		case *Break:
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// RunProperties represents run formatting properties
type RunProperties struct {
	Bold   *Empty
	Italic *Empty
}

// IsEmpty reports whether no property is set.
func (p *RunProperties) IsEmpty() bool {
	return p.Bold == nil && p.Italic == nil
}

// MarshalXML implements custom XML marshaling for RunProperties
func (p RunProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:rPr"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	// Schema order: b before i
	if p.Bold != nil {
		if err := e.EncodeElement(struct{}{}, xml.StartElement{Name: xml.Name{Local: "w:b"}}); err != nil {
			return err
		}
	}
	if p.Italic != nil {
		if err := e.EncodeElement(struct{}{}, xml.StartElement{Name: xml.Name{Local: "w:i"}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Text represents text content
type Text struct {
	Content string
}

func (t *Text) isRunContent() {}

// MarshalXML implements custom XML marshaling for Text to ensure proper namespacing
func (t Text) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:t"}
	start.Attr = nil
	if needsPreserve(t.Content) {
		// Use the predefined XML namespace
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Space: namespaceXML, Local: "space"},
			Value: "preserve",
		})
	}
	return e.EncodeElement(t.Content, start)
}

// needsPreserve reports whether Word would otherwise collapse whitespace in s.
func needsPreserve(s string) bool {
	if s == "" {
		return false
	}
	return s != strings.TrimSpace(s) || strings.Contains(s, "  ") || strings.ContainsRune(s, '\t')
}

// Break represents a line break
type Break struct {
	Type string
}

func (b *Break) isRunContent() {}

// MarshalXML implements xml.Marshaler to ensure Break is self-closing
func (b Break) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:br"}
	start.Attr = nil
	if b.Type != "" {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: "w:type"},
			Value: b.Type,
		})
	}
	return e.EncodeElement(struct{}{}, start)
}
