package docxgen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func quietLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	original := GetLogger()
	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, LogDebug))
	t.Cleanup(func() { SetLogger(original) })
	return &buf
}

func TestAddTextOneParagraphPerCall(t *testing.T) {
	quietLogger(t)
	b := NewBuilderWithConfig(DefaultConfig())

	if err := b.AddText(`{"ops":[{"insert":"a"},{"insert":"b"},{"insert":"c","attributes":{"bold":true}}]}`); err != nil {
		t.Fatal(err)
	}
	if err := b.AddText(`{"ops":[{"insert":"same"},{"insert":"same"}]}`); err != nil {
		t.Fatal(err)
	}

	paras := b.Document().Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(paras))
	}
	if len(paras[0].Runs) != 3 {
		t.Errorf("first paragraph has %d runs, want 3", len(paras[0].Runs))
	}
	// Neighbouring runs with equal formatting are not merged
	if len(paras[1].Runs) != 2 {
		t.Errorf("second paragraph has %d runs, want 2", len(paras[1].Runs))
	}

	bold := paras[0].Runs[2].(*TextRun)
	if !bold.Bold || bold.Italic || bold.Text != "c" {
		t.Errorf("third run = %+v", bold)
	}
}

func TestAddTextEmptyOps(t *testing.T) {
	quietLogger(t)
	b := NewBuilderWithConfig(DefaultConfig())

	if err := b.AddText(`{"ops":[]}`); err != nil {
		t.Fatal(err)
	}
	if b.Document().Len() != 1 || len(b.Document().Paragraphs()[0].Runs) != 0 {
		t.Error("empty ops should add one empty paragraph")
	}
}

func TestAddTextMalformedLeavesDocumentUnchanged(t *testing.T) {
	logs := quietLogger(t)
	b := NewBuilderWithConfig(DefaultConfig())

	if err := b.AddText(`{"ops":[{"insert":"kept"}]}`); err != nil {
		t.Fatal(err)
	}

	for _, bad := range []string{
		`{"ops":[{"insert":"x"}`,
		`{"ops":[{"insert":1}]}`,
		`{"ops":[{"insert":"a"},{"attributes":{}}]}`,
		`{}`,
	} {
		err := b.AddText(bad)
		if !IsParseError(err) {
			t.Errorf("AddText(%s) error = %v, want ParseError", bad, err)
		}
	}

	if b.Document().Len() != 1 {
		t.Errorf("document has %d paragraphs, want 1", b.Document().Len())
	}
	if !strings.Contains(logs.String(), "[ERROR] Error parsing delta") {
		t.Errorf("parse failures were not logged:\n%s", logs.String())
	}

	// Building continues after a failure
	if err := b.AddText(`{"ops":[{"insert":"after"}]}`); err != nil {
		t.Fatal(err)
	}
	if b.Document().Len() != 2 {
		t.Errorf("document has %d paragraphs, want 2", b.Document().Len())
	}
}

func TestAddImage(t *testing.T) {
	quietLogger(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.png")
	data := pngBytes(t, 40, 30)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	b := NewBuilderWithConfig(DefaultConfig())
	if err := b.AddImage(path, 80, 60); err != nil {
		t.Fatalf("AddImage() error = %v", err)
	}
	if err := b.AddImage(path, 0, 0); err != nil {
		t.Fatalf("AddImage() error = %v", err)
	}

	paras := b.Document().Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(paras))
	}
	first := paras[0].Runs[0].(*ImageRun)
	if first.Width != 80 || first.Height != 60 || !bytes.Equal(first.Data, data) {
		t.Errorf("first image = %dx%d (%d bytes)", first.Width, first.Height, len(first.Data))
	}
	second := paras[1].Runs[0].(*ImageRun)
	if second.Width != 0 || second.Height != 0 {
		t.Errorf("second image = %dx%d, want 0x0 as given", second.Width, second.Height)
	}
	if b.Document().ImageCount() != 2 {
		t.Errorf("ImageCount() = %d, want 2", b.Document().ImageCount())
	}
}

func TestAddImageFromKeepsZeroSize(t *testing.T) {
	quietLogger(t)
	b := NewBuilderWithConfig(DefaultConfig())

	if err := b.AddImageFrom(bytes.NewReader(pngBytes(t, 40, 30)), 0, 0); err != nil {
		t.Fatal(err)
	}
	img := b.Document().Paragraphs()[0].Runs[0].(*ImageRun)
	if img.Width != 0 || img.Height != 0 {
		t.Errorf("image = %dx%d, want 0x0", img.Width, img.Height)
	}
}

func TestAddImageAutoSize(t *testing.T) {
	quietLogger(t)
	path := filepath.Join(t.TempDir(), "pic.png")
	if err := os.WriteFile(path, pngBytes(t, 40, 30), 0644); err != nil {
		t.Fatal(err)
	}

	b := NewBuilderWithConfig(DefaultConfig())
	if err := b.AddImageAutoSize(path, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.AddImageAutoSize(path, 80, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.AddImageFromAutoSize(strings.NewReader("not an image"), 0, 7); err != nil {
		t.Fatal(err)
	}
	if err := b.AddImageAutoSize(filepath.Join(t.TempDir(), "missing.png"), 0, 0); !IsIOError(err) {
		t.Errorf("AddImageAutoSize(missing) error = %v, want IOError", err)
	}

	want := [][2]uint32{{40, 30}, {80, 60}, {0, 7}}
	paras := b.Document().Paragraphs()
	if len(paras) != len(want) {
		t.Fatalf("got %d paragraphs, want %d", len(paras), len(want))
	}
	for i, w := range want {
		img := paras[i].Runs[0].(*ImageRun)
		if img.Width != w[0] || img.Height != w[1] {
			t.Errorf("image %d = %dx%d, want %dx%d", i, img.Width, img.Height, w[0], w[1])
		}
	}
}

func TestAddImageMissingFile(t *testing.T) {
	quietLogger(t)
	b := NewBuilderWithConfig(DefaultConfig())

	err := b.AddImage(filepath.Join(t.TempDir(), "missing.png"), 10, 10)
	if !IsIOError(err) {
		t.Fatalf("AddImage() error = %v, want IOError", err)
	}
	if !os.IsNotExist(err.(*IOError).Err) {
		t.Errorf("cause = %v, want not-exist", err.(*IOError).Err)
	}
	if b.Document().Len() != 0 {
		t.Error("failed AddImage changed the document")
	}
}

func TestAddImageUnknownFormatIsAccepted(t *testing.T) {
	quietLogger(t)
	b := NewBuilderWithConfig(DefaultConfig())

	if err := b.AddImageFrom(strings.NewReader("not really an image"), 12, 8); err != nil {
		t.Fatal(err)
	}
	img := b.Document().Paragraphs()[0].Runs[0].(*ImageRun)
	if img.Width != 12 || img.Height != 8 {
		t.Errorf("image = %dx%d, want 12x8", img.Width, img.Height)
	}
}

func TestGenerateIsRepeatable(t *testing.T) {
	quietLogger(t)
	dir := t.TempDir()

	b := NewBuilderWithConfig(DefaultConfig())
	b.SetTitle("Repeatable")
	if err := b.AddText(`{"ops":[{"insert":"Hello "},{"insert":"world\n","attributes":{"italic":true}}]}`); err != nil {
		t.Fatal(err)
	}
	if err := b.AddImageFrom(bytes.NewReader(pngBytes(t, 5, 5)), 0, 0); err != nil {
		t.Fatal(err)
	}

	first := filepath.Join(dir, "first.docx")
	second := filepath.Join(dir, "second.docx")
	if err := b.Generate(first); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if err := b.Generate(second); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	a, _ := os.ReadFile(first)
	c, _ := os.ReadFile(second)
	if !bytes.Equal(a, c) {
		t.Error("two Generate calls produced different bytes")
	}
	if b.Document().Len() != 2 {
		t.Error("Generate modified the document")
	}
}

func TestEqualSequencesProduceEqualBytes(t *testing.T) {
	quietLogger(t)
	img := pngBytes(t, 3, 2)

	build := func() []byte {
		b := NewBuilderWithConfig(DefaultConfig())
		b.AddText(`{"ops":[{"insert":"x","attributes":{"bold":true}}]}`)
		b.AddImageFrom(bytes.NewReader(img), 30, 20)
		b.AddText(`{"ops":[{"insert":"y"}]}`)
		out, err := b.Bytes()
		if err != nil {
			t.Fatal(err)
		}
		return out
	}

	if !bytes.Equal(build(), build()) {
		t.Error("equal call sequences produced different packages")
	}
}

func TestGenerateEmptyDocument(t *testing.T) {
	quietLogger(t)
	path := filepath.Join(t.TempDir(), "empty.docx")

	if err := NewBuilderWithConfig(DefaultConfig()).Generate(path); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	doc, err := ReadDocumentFile(path)
	if err != nil {
		t.Fatalf("ReadDocumentFile() error = %v", err)
	}
	if doc.Len() != 0 {
		t.Errorf("read back %d paragraphs, want 0", doc.Len())
	}
}

func TestGenerateUnwritablePath(t *testing.T) {
	quietLogger(t)
	b := NewBuilderWithConfig(DefaultConfig())
	b.AddText(`{"ops":[{"insert":"x"}]}`)

	path := filepath.Join(t.TempDir(), "no", "such", "dir", "out.docx")
	err := b.Generate(path)
	if !IsIOError(err) {
		t.Fatalf("Generate() error = %v, want IOError", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("a failed Generate left a file behind")
	}
}

func TestGenerateOverwrites(t *testing.T) {
	quietLogger(t)
	path := filepath.Join(t.TempDir(), "out.docx")
	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	b := NewBuilderWithConfig(DefaultConfig())
	b.AddText(`{"ops":[{"insert":"fresh"}]}`)
	if err := b.Generate(path); err != nil {
		t.Fatal(err)
	}

	doc, err := ReadDocumentFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Paragraphs()[0].Text() != "fresh" {
		t.Errorf("read back %q", doc.Paragraphs()[0].Text())
	}
}
