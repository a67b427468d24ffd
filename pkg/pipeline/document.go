package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/layoutfix/pkg/errors"
	"github.com/matzehuels/layoutfix/pkg/imageanalysis"
	"github.com/matzehuels/layoutfix/pkg/layer"
)

// Canvas is the draft's target size in pixels.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document is a draft file: a canvas, its layers and optionally the image
// analysis of the background photo. A bare JSON or YAML array of layers is
// also accepted and yields a zero canvas.
type Document struct {
	Canvas   Canvas                  `json:"canvas"`
	Layers   []layer.Layer           `json:"layers"`
	Analysis *imageanalysis.Analysis `json:"analysis,omitempty"`
	ImageURL string                  `json:"image_url,omitempty"`
	Brand    string                  `json:"brand,omitempty"`
}

// Options returns run options seeded from the document.
func (d Document) Options() Options {
	return Options{
		Width:    d.Canvas.Width,
		Height:   d.Canvas.Height,
		ImageURL: d.ImageURL,
		Brand:    d.Brand,
	}
}

// FormatOf returns the draft format for a path from its extension,
// defaulting to json.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// Decode parses a draft in the given format ("json", "yaml" or "yml").
func Decode(data []byte, format string) (Document, error) {
	if err := errors.ValidateFormat(format); err != nil {
		return Document{}, err
	}
	if format != "json" {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse yaml draft")
		}
		var err error
		if data, err = json.Marshal(raw); err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "convert yaml draft")
		}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return Document{}, errors.New(errors.ErrCodeInvalidInput, "draft is empty")
	}
	var doc Document
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Layers); err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse layers")
		}
		return doc, nil
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse draft")
	}
	return doc, nil
}

// Encode serializes a document. YAML output uses the same keys as JSON.
func Encode(doc Document, format string) ([]byte, error) {
	if err := errors.ValidateFormat(format); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	if format == "json" {
		return append(data, '\n'), nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	return yaml.Marshal(raw)
}

// ReadDocument reads a draft file; the format follows the extension.
func ReadDocument(path string) (Document, error) {
	if err := errors.ValidatePath(path); err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "draft %s not found", path)
		}
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Decode(data, FormatOf(path))
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// WriteDocument writes a draft file; the format follows the extension.
func WriteDocument(path string, doc Document) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	data, err := Encode(doc, FormatOf(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// OutputPath returns where the corrected version of a draft is written:
// "post.json" becomes "post.corrected.json".
func OutputPath(draft string) string {
	ext := filepath.Ext(draft)
	return strings.TrimSuffix(draft, ext) + ".corrected" + ext
}

// IsOutput reports whether path is a corrected output, so batch and watch
// can skip their own results.
func IsOutput(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".corrected") || strings.Contains(base, ".corrected.")
}
