package docxgen

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	wxml "github.com/benjaminschreck/go-docxgen/pkg/docxgen/xml"
)

// packageEpoch is stamped on every archive entry so that equal documents
// produce equal bytes.
var packageEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	mainDocumentContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	stylesContentType       = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	corePropsContentType    = "application/vnd.openxmlformats-package.core-properties+xml"
	appPropsContentType     = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	relsContentType         = "application/vnd.openxmlformats-package.relationships+xml"
	applicationName         = "go-docxgen"
)

// stylesXML is the fixed word/styles.xml: document defaults plus the Normal style.
const stylesXML = `<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:docDefaults><w:rPrDefault><w:rPr>` +
	`<w:rFonts w:ascii="Calibri" w:eastAsia="Calibri" w:hAnsi="Calibri" w:cs="Calibri"/>` +
	`<w:sz w:val="22"/><w:szCs w:val="22"/>` +
	`</w:rPr></w:rPrDefault>` +
	`<w:pPrDefault><w:pPr><w:spacing w:after="160" w:line="259" w:lineRule="auto"/></w:pPr></w:pPrDefault>` +
	`</w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>` +
	`</w:styles>`

// packageOptions control document-independent package content.
type packageOptions struct {
	Title    string
	Creator  string
	Compress bool
}

// mediaPart is a binary image part of the package.
type mediaPart struct {
	Name string
	Data []byte
}

// packagePlan is everything derived from one walk over a Document.
type packagePlan struct {
	document      *wxml.Document
	relationships *Relationships
	contentTypes  *ContentTypes
	media         []mediaPart
}

type coreProperties struct {
	XMLName        xml.Name `xml:"cp:coreProperties"`
	NamespaceCP    string   `xml:"xmlns:cp,attr"`
	NamespaceDC    string   `xml:"xmlns:dc,attr"`
	NamespaceTerms string   `xml:"xmlns:dcterms,attr"`
	NamespaceXSI   string   `xml:"xmlns:xsi,attr"`
	Title          string   `xml:"dc:title,omitempty"`
	Creator        string   `xml:"dc:creator,omitempty"`
	LastModifiedBy string   `xml:"cp:lastModifiedBy,omitempty"`
}

type appProperties struct {
	XMLName     xml.Name `xml:"Properties"`
	Namespace   string   `xml:"xmlns,attr"`
	NamespaceVT string   `xml:"xmlns:vt,attr"`
	Application string   `xml:"Application"`
}

// planPackage walks the document in order. Image relationship IDs and media
// names are handed out in encounter order, after the styles relationship.
func planPackage(doc *Document) *packagePlan {
	rels := &Relationships{
		Namespace: relationshipsNS,
		Relationship: []Relationship{
			{ID: "rId1", Type: stylesRelType, Target: "styles.xml"},
		},
	}

	contentTypes := &ContentTypes{
		Namespace: contentTypesNS,
		Defaults: []ContentTypeDefault{
			{Extension: "rels", ContentType: relsContentType},
			{Extension: "xml", ContentType: "application/xml"},
		},
		Overrides: []ContentTypeOverride{
			{PartName: "/" + documentPart, ContentType: mainDocumentContentType},
			{PartName: "/" + stylesPart, ContentType: stylesContentType},
			{PartName: "/" + corePropsPart, ContentType: corePropsContentType},
			{PartName: "/" + appPropsPart, ContentType: appPropsContentType},
		},
	}
	registered := map[string]bool{"rels": true, "xml": true}

	plan := &packagePlan{relationships: rels, contentTypes: contentTypes}
	body := &wxml.Body{SectionProperties: wxml.DefaultSectionProperties()}

	imageIndex := 0
	for _, para := range doc.Paragraphs() {
		wp := &wxml.Paragraph{}
		for i, run := range para.Runs {
			switch r := run.(type) {
			case *TextRun:
				last := i == len(para.Runs)-1
				wp.Runs = append(wp.Runs, textRunXML(r, last))
			case *ImageRun:
				imageIndex++
				format := detectImageFormat(r.Data)
				name := generateImageFilename(format, imageIndex)
				relID := addImageRelationship(rels, "media/"+name)

				if !registered[format.Extension] {
					registered[format.Extension] = true
					contentTypes.Defaults = append(contentTypes.Defaults, ContentTypeDefault{
						Extension:   format.Extension,
						ContentType: format.MIMEType,
					})
				}

				plan.media = append(plan.media, mediaPart{Name: mediaDir + name, Data: r.Data})
				wp.Runs = append(wp.Runs, &wxml.Run{
					Content: []wxml.RunContent{&wxml.Drawing{
						ID:     imageIndex,
						Name:   name,
						RelID:  relID,
						Width:  wxml.PixelsToEMU(r.Width),
						Height: wxml.PixelsToEMU(r.Height),
					}},
				})
			}
		}
		body.Elements = append(body.Elements, wp)
	}

	plan.document = &wxml.Document{Body: body}
	return plan
}

// textRunXML renders a text run. Newlines become line breaks; a single
// trailing newline on the last run of a paragraph is the delta's paragraph
// terminator and is dropped.
func textRunXML(r *TextRun, lastInParagraph bool) *wxml.Run {
	text := strings.ReplaceAll(r.Text, "\r\n", "\n")
	if lastInParagraph {
		text = strings.TrimSuffix(text, "\n")
	}

	run := &wxml.Run{}
	if r.Bold || r.Italic {
		run.Properties = &wxml.RunProperties{}
		if r.Bold {
			run.Properties.Bold = &wxml.Empty{}
		}
		if r.Italic {
			run.Properties.Italic = &wxml.Empty{}
		}
	}

	for i, segment := range strings.Split(text, "\n") {
		if i > 0 {
			run.Content = append(run.Content, &wxml.Break{})
		}
		if segment != "" {
			run.Content = append(run.Content, &wxml.Text{Content: segment})
		}
	}
	return run
}

// packageWriter writes parts into a zip archive with fixed headers.
type packageWriter struct {
	zw       *zip.Writer
	compress bool
}

func (pw *packageWriter) create(name string) (io.Writer, error) {
	method := zip.Store
	if pw.compress {
		method = zip.Deflate
	}
	w, err := pw.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: packageEpoch,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}
	return w, nil
}

func (pw *packageWriter) writeBytes(name string, data []byte) error {
	w, err := pw.create(name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// writeXML marshals v compactly behind the XML declaration
func (pw *packageWriter) writeXML(name string, v interface{}) error {
	output, err := xml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return pw.writeBytes(name, append([]byte(wxml.Declaration), output...))
}

// writePackage serializes doc as a .docx archive. Parts are written in a
// fixed order; media follow in encounter order.
func writePackage(w io.Writer, doc *Document, opts packageOptions) error {
	plan := planPackage(doc)

	zw := zip.NewWriter(w)
	pw := &packageWriter{zw: zw, compress: opts.Compress}

	if err := pw.writeXML(contentTypesPart, plan.contentTypes); err != nil {
		return err
	}

	if err := pw.writeXML(packageRelsPart, &Relationships{
		Namespace: relationshipsNS,
		Relationship: []Relationship{
			{ID: "rId1", Type: officeDocumentRelType, Target: documentPart},
			{ID: "rId2", Type: corePropsRelType, Target: corePropsPart},
			{ID: "rId3", Type: appPropsRelType, Target: appPropsPart},
		},
	}); err != nil {
		return err
	}

	if err := pw.writeXML(appPropsPart, &appProperties{
		Namespace:   "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties",
		NamespaceVT: "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes",
		Application: applicationName,
	}); err != nil {
		return err
	}

	if err := pw.writeXML(corePropsPart, &coreProperties{
		NamespaceCP:    "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		NamespaceDC:    "http://purl.org/dc/elements/1.1/",
		NamespaceTerms: "http://purl.org/dc/terms/",
		NamespaceXSI:   "http://www.w3.org/2001/XMLSchema-instance",
		Title:          opts.Title,
		Creator:        opts.Creator,
		LastModifiedBy: opts.Creator,
	}); err != nil {
		return err
	}

	docWriter, err := pw.create(documentPart)
	if err != nil {
		return err
	}
	if err := wxml.WriteDocument(docWriter, plan.document); err != nil {
		return fmt.Errorf("failed to write %s: %w", documentPart, err)
	}

	if err := pw.writeBytes(stylesPart, []byte(wxml.Declaration+stylesXML)); err != nil {
		return err
	}

	if err := pw.writeXML(documentRelsPart, plan.relationships); err != nil {
		return err
	}

	for _, m := range plan.media {
		if err := pw.writeBytes(m.Name, m.Data); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zip writer: %w", err)
	}
	return nil
}
