package docxgen

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseScript(t *testing.T) {
	data := []byte(`
title: Weekly
output: weekly.docx
blocks:
  - delta: '{"ops":[{"insert":"quoted"}]}'
  - delta:
      ops:
        - insert: "mapped"
          attributes:
            bold: true
  - image: chart.png
    width: 320
`)

	s, err := ParseScript(data, "/scripts")
	if err != nil {
		t.Fatalf("ParseScript() error = %v", err)
	}
	if s.Title != "Weekly" || s.Output != "weekly.docx" || len(s.Blocks) != 3 {
		t.Fatalf("unexpected script %+v", s)
	}

	first, err := s.Blocks[0].DeltaJSON()
	if err != nil || first != `{"ops":[{"insert":"quoted"}]}` {
		t.Errorf("scalar delta = %q, %v", first, err)
	}

	second, err := s.Blocks[1].DeltaJSON()
	if err != nil {
		t.Fatal(err)
	}
	ops, err := ParseDelta(second)
	if err != nil {
		t.Fatalf("mapping delta does not parse: %v (%s)", err, second)
	}
	if len(ops) != 1 || ops[0].Insert != "mapped" || !ops[0].Bold {
		t.Errorf("mapping delta ops = %+v", ops)
	}

	if s.Blocks[2].HasDelta() || s.Blocks[2].Image != "chart.png" || s.Blocks[2].Width != 320 {
		t.Errorf("image block = %+v", s.Blocks[2])
	}
}

func TestParseScriptInvalidYAML(t *testing.T) {
	if _, err := ParseScript([]byte("blocks: [\n"), ""); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestScriptApply(t *testing.T) {
	quietLogger(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "dot.png"), pngBytes(t, 6, 3), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "build.yaml")
	script := `
title: Applied
blocks:
  - delta: '{"ops":[{"insert":"first"}]}'
  - delta: '{"ops":[{"insert":'
  - image: dot.png
    width: 12
    height: 9
  - {}
  - delta: '{"ops":[{"insert":"last"}]}'
`
	if err := os.WriteFile(path, []byte(script), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadScript(path)
	if err != nil {
		t.Fatal(err)
	}

	b := NewBuilderWithConfig(DefaultConfig())
	err = s.Apply(b)

	var multi *MultiError
	if !errors.As(err, &multi) || multi.Len() != 2 {
		t.Fatalf("Apply() error = %v, want two collected errors", err)
	}
	if !IsParseError(multi.Errors()[0]) || !strings.HasPrefix(multi.Errors()[0].Error(), "block 1:") {
		t.Errorf("first error = %v", multi.Errors()[0])
	}
	if !strings.HasPrefix(multi.Errors()[1].Error(), "block 3:") {
		t.Errorf("second error = %v", multi.Errors()[1])
	}

	paras := b.Document().Paragraphs()
	if len(paras) != 3 {
		t.Fatalf("got %d paragraphs, want 3", len(paras))
	}
	img := paras[1].Runs[0].(*ImageRun)
	if img.Width != 12 || img.Height != 9 {
		t.Errorf("image = %dx%d, want the script's 12x9", img.Width, img.Height)
	}
	if b.title != "Applied" {
		t.Errorf("title = %q", b.title)
	}
}

func TestScriptApplyMissingImageStops(t *testing.T) {
	quietLogger(t)
	s, err := ParseScript([]byte(`
blocks:
  - image: missing.png
  - delta: '{"ops":[{"insert":"never"}]}'
`), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	b := NewBuilderWithConfig(DefaultConfig())
	err = s.Apply(b)
	if !IsIOError(err) {
		t.Fatalf("Apply() error = %v, want IOError", err)
	}
	if b.Document().Len() != 0 {
		t.Error("blocks after the failing image were applied")
	}
}

func TestLoadScriptMissing(t *testing.T) {
	if _, err := LoadScript(filepath.Join(t.TempDir(), "none.yaml")); !IsIOError(err) {
		t.Errorf("LoadScript() error = %v, want IOError", err)
	}
}
