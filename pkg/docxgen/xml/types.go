package xml

// Namespace URIs declared on the root of word/document.xml.
const (
	NamespaceW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NamespaceR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NamespaceWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	NamespaceA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NamespacePic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	namespaceXML = "http://www.w3.org/XML/1998/namespace"
)

// Declaration is the XML declaration written at the top of every package part.
const Declaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// BodyElement represents any element that can appear in a document body
type BodyElement interface {
	isBodyElement()
}

// RunContent represents any content that can appear inside a run
type RunContent interface {
	isRunContent()
}

// Empty represents an empty element (used for boolean properties)
type Empty struct{}
