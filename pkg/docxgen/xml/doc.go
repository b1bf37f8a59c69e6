// Package xml provides the WordprocessingML element types written into
// word/document.xml.
//
// The types marshal themselves with conventional prefixes (w:, r:, wp:, a:,
// pic:). Only the root w:document declares the namespaces, which keeps the
// output compact and matches what Word itself emits.
//
// # Structure Organization
//
//   - types.go: namespace constants and the BodyElement/RunContent interfaces
//   - document.go: Document, Body and the single section's properties
//   - paragraph.go: Paragraph
//   - run.go: Run, RunProperties, Text and Break
//   - drawing.go: inline pictures (w:drawing/wp:inline)
//
// Example:
//
//	doc := &xml.Document{
//	    Body: &xml.Body{
//	        Elements: []xml.BodyElement{
//	            &xml.Paragraph{Runs: []*xml.Run{{
//	                Properties: &xml.RunProperties{Bold: &xml.Empty{}},
//	                Content:    []xml.RunContent{&xml.Text{Content: "Hello"}},
//	            }}},
//	        },
//	        SectionProperties: xml.DefaultSectionProperties(),
//	    },
//	}
//	err := xml.WriteDocument(w, doc)
package xml
