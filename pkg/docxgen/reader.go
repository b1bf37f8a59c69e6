package docxgen

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	wxml "github.com/benjaminschreck/go-docxgen/pkg/docxgen/xml"
)

// runState tracks the w:r element currently being decoded.
type runState struct {
	bold, italic bool
	text         strings.Builder
	relID        string
	cx, cy       int64
}

// ReadDocument reconstructs the paragraphs, runs and images of a package.
// Line breaks read back as "\n" and unknown markup is skipped.
//
// A single newline ending a paragraph's last run is not written to the
// package, so a document built from " both\n" reads back as " both". Newlines
// anywhere else survive the round trip.
func ReadDocument(r io.ReaderAt, size int64) (*Document, error) {
	dr, err := NewDocxReader(r, size)
	if err != nil {
		return nil, err
	}
	return dr.Document()
}

// ReadDocumentFile reads the package at path with ReadDocument.
func ReadDocumentFile(path string) (*Document, error) {
	dr, err := DocxReaderFromFile(path)
	if err != nil {
		return nil, err
	}
	return dr.Document()
}

// Document decodes word/document.xml into a Document.
func (dr *DocxReader) Document() (*Document, error) {
	content, err := dr.GetPart(documentPart)
	if err != nil {
		return nil, err
	}

	rels, err := dr.GetRelationships(documentPart)
	if err != nil {
		return nil, err
	}
	targets := make(map[string]string, len(rels))
	for _, rel := range rels {
		targets[rel.ID] = resolveTarget(documentPart, rel.Target)
	}

	doc := NewDocument()
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var (
		para   *Paragraph
		run    *runState
		inRPr  bool
		inText bool
	)

	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error decoding %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if t.Name.Space == wxml.NamespaceW {
					para = &Paragraph{}
				}
			case "r":
				if t.Name.Space == wxml.NamespaceW && para != nil {
					run = &runState{}
				}
			case "rPr":
				inRPr = run != nil
			case "b":
				if inRPr {
					run.bold = onOffValue(t)
				}
			case "i":
				if inRPr {
					run.italic = onOffValue(t)
				}
			case "t":
				inText = run != nil && t.Name.Space == wxml.NamespaceW
			case "br", "cr":
				if run != nil {
					run.text.WriteString("\n")
				}
			case "tab":
				if run != nil && !inRPr {
					run.text.WriteString("\t")
				}
			case "extent":
				if run != nil {
					run.cx = int64Attr(t, "cx")
					run.cy = int64Attr(t, "cy")
				}
			case "blip":
				if run != nil {
					for _, attr := range t.Attr {
						if attr.Name.Local == "embed" {
							run.relID = attr.Value
						}
					}
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "rPr":
				inRPr = false
			case "t":
				inText = false
			case "r":
				if run != nil && para != nil {
					decoded, err := dr.decodeRun(run, targets)
					if err != nil {
						return nil, err
					}
					para.Runs = append(para.Runs, decoded)
				}
				run = nil
			case "p":
				if para != nil && t.Name.Space == wxml.NamespaceW {
					doc.AppendParagraph(para)
					para = nil
				}
			}
		case xml.CharData:
			if inText {
				run.text.Write(t)
			}
		}
	}

	return doc, nil
}

func (dr *DocxReader) decodeRun(run *runState, targets map[string]string) (Run, error) {
	if run.relID == "" {
		return &TextRun{
			Text:   run.text.String(),
			Bold:   run.bold,
			Italic: run.italic,
		}, nil
	}

	target, ok := targets[run.relID]
	if !ok {
		return nil, fmt.Errorf("image relationship %s not found", run.relID)
	}
	data, err := dr.GetPart(target)
	if err != nil {
		return nil, err
	}
	return &ImageRun{
		Data:   data,
		Width:  uint32(run.cx / wxml.EMUsPerPixel),
		Height: uint32(run.cy / wxml.EMUsPerPixel),
	}, nil
}

// onOffValue reads a WordprocessingML on/off property such as <w:b w:val="0"/>.
func onOffValue(elem xml.StartElement) bool {
	for _, attr := range elem.Attr {
		if attr.Name.Local == "val" {
			switch strings.ToLower(attr.Value) {
			case "0", "false", "off":
				return false
			}
		}
	}
	return true
}

func int64Attr(elem xml.StartElement, name string) int64 {
	for _, attr := range elem.Attr {
		if attr.Name.Local == name {
			n, _ := strconv.ParseInt(attr.Value, 10, 64)
			return n
		}
	}
	return 0
}
