package docxgen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Script is a build description read from YAML (or JSON, which YAML accepts):
//
//	title: Weekly report
//	output: report.docx
//	blocks:
//	  - delta: '{"ops":[{"insert":"Hello "},{"insert":"world","attributes":{"bold":true}}]}'
//	  - delta:
//	      ops:
//	        - insert: "inline mapping form\n"
//	  - image: chart.png
//	    width: 320
//	    height: 240
type Script struct {
	Title  string        `yaml:"title"`
	Output string        `yaml:"output"`
	Blocks []ScriptBlock `yaml:"blocks"`

	// dir resolves relative image paths
	dir string
}

// ScriptBlock is one paragraph: either a delta or an image.
type ScriptBlock struct {
	Delta  yaml.Node `yaml:"delta"`
	Image  string    `yaml:"image"`
	Width  uint32    `yaml:"width"`
	Height uint32    `yaml:"height"`
}

// HasDelta reports whether the block carries a delta.
func (sb *ScriptBlock) HasDelta() bool {
	return sb.Delta.Kind != 0
}

// DeltaJSON returns the block's delta as JSON text. A string value is used
// verbatim; a mapping is re-encoded.
func (sb *ScriptBlock) DeltaJSON() (string, error) {
	if sb.Delta.Kind == yaml.ScalarNode {
		return sb.Delta.Value, nil
	}

	var v interface{}
	if err := sb.Delta.Decode(&v); err != nil {
		return "", err
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// LoadScript reads a script file. Relative image paths resolve against the
// script's directory.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewIOError("read script", path, err)
	}
	return ParseScript(data, filepath.Dir(path))
}

// ParseScript decodes a script; dir is used to resolve relative image paths.
func ParseScript(data []byte, dir string) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	s.dir = dir
	return &s, nil
}

// Apply feeds every block to b in order. Delta and layout problems are
// collected and returned together after all blocks ran; an unreadable image
// stops the run immediately.
func (s *Script) Apply(b *Builder) error {
	if s.Title != "" {
		b.SetTitle(s.Title)
	}

	errs := NewMultiError()
	for i := range s.Blocks {
		block := &s.Blocks[i]

		switch {
		case block.HasDelta() && block.Image != "":
			errs.Add(fmt.Errorf("block %d: delta and image are mutually exclusive", i))
		case block.HasDelta():
			deltaJSON, err := block.DeltaJSON()
			if err != nil {
				errs.Add(fmt.Errorf("block %d: %w", i, NewParseError(err.Error(), -1, 0, err)))
				continue
			}
			if err := b.AddText(deltaJSON); err != nil {
				errs.Add(fmt.Errorf("block %d: %w", i, err))
			}
		case block.Image != "":
			path := block.Image
			if !filepath.IsAbs(path) && s.dir != "" {
				path = filepath.Join(s.dir, path)
			}
			if err := b.AddImage(path, block.Width, block.Height); err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
		default:
			errs.Add(fmt.Errorf("block %d: needs a delta or an image", i))
		}
	}

	return errs.Err()
}
