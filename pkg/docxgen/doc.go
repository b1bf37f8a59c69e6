// Package docxgen builds Microsoft Word documents (DOCX) from rich-text
// deltas and raster images.
//
// A delta is the JSON interchange format used by browser and mobile rich-text
// editors: an ordered list of insert operations, each with optional
// formatting attributes. Go-docxgen understands bold and italic.
//
// # Quick Start
//
//	b := docxgen.NewBuilder()
//
//	// One paragraph with a plain and a bold run
//	err := b.AddText(`{"ops":[{"insert":"Hello "},{"insert":"world","attributes":{"bold":true}}]}`)
//	if err != nil {
//	    log.Printf("skipping malformed delta: %v", err)
//	}
//
//	// One paragraph holding a 320x240 pixel picture
//	if err := b.AddImage("chart.png", 320, 240); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := b.Generate("output.docx"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Paragraphs and Runs
//
// Every AddText and AddImage call appends exactly one paragraph. Inside a
// delta paragraph each op becomes its own run, so two neighbouring ops with
// the same formatting stay two runs. Newlines inside an op are written as
// line breaks; the single newline a delta ends with is dropped.
//
// # Errors
//
// A malformed delta yields a *ParseError and leaves the document untouched;
// building can continue. Unreadable images and unwritable destinations yield
// an *IOError, which the caller should treat as fatal for that call.
//
// # Output
//
// Generate and WriteTo never modify the document, and the package layout is
// fixed: equal documents produce byte-identical files. Image relationship IDs
// are assigned in document order.
//
// # Configuration
//
// Defaults come from DOCXGEN_* environment variables (see ConfigFromEnvironment)
// or from a YAML file loaded with LoadConfigFile.
package docxgen
