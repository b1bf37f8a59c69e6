package docxgen

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestDocxReader_Read(t *testing.T) {
	tests := []struct {
		name    string
		setup   func() *bytes.Buffer
		wantErr bool
		check   func(t *testing.T, dr *DocxReader)
	}{
		{
			name: "read valid docx with document.xml",
			setup: func() *bytes.Buffer {
				buf := new(bytes.Buffer)
				w := zip.NewWriter(buf)

				f, _ := w.Create("word/document.xml")
				f.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><document>content</document>`))

				f, _ = w.Create("_rels/.rels")
				f.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Relationships></Relationships>`))

				w.Close()
				return buf
			},
			check: func(t *testing.T, dr *DocxReader) {
				if len(dr.Parts) != 2 {
					t.Errorf("got %d parts, want 2", len(dr.Parts))
				}
				parts := dr.ListParts()
				if len(parts) != 2 || parts[0] != "word/document.xml" || parts[1] != "_rels/.rels" {
					t.Errorf("ListParts() = %v, want archive order", parts)
				}
			},
		},
		{
			name: "read empty zip file",
			setup: func() *bytes.Buffer {
				buf := new(bytes.Buffer)
				w := zip.NewWriter(buf)
				w.Close()
				return buf
			},
			wantErr: true,
		},
		{
			name: "read non-zip file",
			setup: func() *bytes.Buffer {
				buf := new(bytes.Buffer)
				buf.WriteString("not a zip file")
				return buf
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := tt.setup()
			reader := bytes.NewReader(buf.Bytes())

			dr, err := NewDocxReader(reader, int64(buf.Len()))
			if (err != nil) != tt.wantErr {
				t.Errorf("NewDocxReader() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && tt.check != nil {
				tt.check(t, dr)
			}
		})
	}
}

func TestDocxReader_GeneratedPackage(t *testing.T) {
	quietLogger(t)

	b := NewBuilderWithConfig(DefaultConfig())
	b.AddText(`{"ops":[{"insert":"Hello"}]}`)
	b.AddImageFrom(bytes.NewReader(pngBytes(t, 2, 2)), 0, 0)
	data, err := b.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	dr, err := NewDocxReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewDocxReader() error = %v", err)
	}

	docXML, err := dr.GetDocumentXML()
	if err != nil {
		t.Fatal(err)
	}
	if len(docXML) == 0 {
		t.Error("empty document.xml")
	}

	rels, err := dr.GetRelationships(documentPart)
	if err != nil {
		t.Fatal(err)
	}
	if len(rels) != 2 || rels[1].ID != "rId2" {
		t.Errorf("document relationships = %+v", rels)
	}

	ct, err := dr.GetContentTypes()
	if err != nil {
		t.Fatal(err)
	}
	if len(ct.Overrides) != 4 {
		t.Errorf("got %d overrides, want 4", len(ct.Overrides))
	}

	if _, err := dr.GetPart("word/media/image1.png"); err != nil {
		t.Errorf("media part missing: %v", err)
	}
	if _, err := dr.GetPart("word/missing.xml"); err == nil {
		t.Error("expected error for missing part")
	}
}

func TestDocxReader_NoRelationships(t *testing.T) {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	f, _ := w.Create("word/document.xml")
	f.Write([]byte(`<document/>`))
	w.Close()

	dr, err := NewDocxReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	rels, err := dr.GetRelationships(documentPart)
	if err != nil {
		t.Fatalf("GetRelationships() error = %v", err)
	}
	if len(rels) != 0 {
		t.Errorf("got %d relationships, want 0", len(rels))
	}
}

func TestPathHelpers(t *testing.T) {
	if got := relationshipsPartFor("word/document.xml"); got != "word/_rels/document.xml.rels" {
		t.Errorf("relationshipsPartFor() = %s", got)
	}
	if got := relationshipsPartFor("[Content_Types].xml"); got != "_rels/[Content_Types].xml.rels" {
		t.Errorf("relationshipsPartFor() = %s", got)
	}

	tests := []struct {
		source, target, want string
	}{
		{"word/document.xml", "media/image1.png", "word/media/image1.png"},
		{"word/document.xml", "../customXml/item1.xml", "customXml/item1.xml"},
		{"word/document.xml", "/word/media/image2.png", "word/media/image2.png"},
	}
	for _, tt := range tests {
		if got := resolveTarget(tt.source, tt.target); got != tt.want {
			t.Errorf("resolveTarget(%s, %s) = %s, want %s", tt.source, tt.target, got, tt.want)
		}
	}
}
