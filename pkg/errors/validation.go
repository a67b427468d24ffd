package errors

import (
	"math"
	"net/url"
	"slices"
	"strings"
	"unicode"
)

// MaxCanvasSide bounds canvas dimensions. Anything larger is almost certainly
// a unit mix-up (millimetres at 300dpi, for example).
const MaxCanvasSide = 10000

// Formats lists the draft encodings accepted on input and output.
var Formats = []string{"json", "yaml", "yml"}

// ValidateCanvas checks that a canvas has finite, positive dimensions no
// larger than MaxCanvasSide.
func ValidateCanvas(width, height float64) error {
	for _, d := range []struct {
		name string
		v    float64
	}{{"width", width}, {"height", height}} {
		switch {
		case math.IsNaN(d.v) || math.IsInf(d.v, 0):
			return New(ErrCodeInvalidCanvas, "canvas %s must be finite", d.name)
		case d.v <= 0:
			return New(ErrCodeInvalidCanvas, "canvas %s must be positive, got %v", d.name, d.v)
		case d.v > MaxCanvasSide:
			return New(ErrCodeInvalidCanvas, "canvas %s %v exceeds %d", d.name, d.v, MaxCanvasSide)
		}
	}
	return nil
}

// ValidatePath validates a draft or output path given on the command line.
// Relative paths may point above the working directory, like absolute ones.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateURL validates an image or provider URL. Only absolute http and
// https URLs with a host are accepted.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}
	return nil
}

// ValidateFormat checks a draft format name, case-insensitively.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, strings.ToLower(format)) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}
