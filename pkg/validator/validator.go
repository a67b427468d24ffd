// Package validator applies template-level house rules to a layout.
//
// It removes decorative blobs, gives CTA buttons a compact pill shape,
// replaces system fonts, detects missing required elements and synthesizes
// placeholders for them, and sorts layers into a fixed z-order.
package validator

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

// DefaultFont replaces forbidden fonts.
const DefaultFont = "Montserrat"

// CTA button geometry.
const (
	CTAWidth         = 220
	CTAMinWidth      = 160
	CTAHeight        = 50
	CTAMinHeight     = 40
	CTAMaxHeight     = 70
	CTAMinRadius     = 20
	CTARadius        = 25
	CTAMaxWidthRatio = 0.3
)

// ForbiddenFonts are system fonts swapped for [DefaultFont].
var ForbiddenFonts = []string{"Arial", "Helvetica", "Times New Roman", "Times", "Courier", "Courier New"}

// CTAKeywords mark a rectangle or textbox as a call to action when found in
// its name or text. Polish and English phrases are both recognized.
var CTAKeywords = []string{
	"cta", "button", "przycisk", "action", "call to action",
	"zamów", "kup", "sprawdź", "dowiedz", "zapisz", "dołącz", "rozpocznij", "pobierz", "zobacz",
	"read more", "learn more", "shop now", "buy now", "get started", "link in bio",
}

var blobKeywords = []string{"blob", "accent", "decoration", "shape", "circle", "background"}

// Validator applies template rules.
type Validator struct {
	defaultFont string
	fallbacks   Fallbacks
	logger      *log.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithFallbacks overrides the placeholder copy used by [Validator.AddMissing].
func WithFallbacks(f Fallbacks) Option {
	return func(v *Validator) { v.fallbacks = f.withDefaults() }
}

// New returns a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		defaultFont: DefaultFont,
		fallbacks:   DefaultFallbacks(),
		logger:      log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Fix records one change made by [Validator.ValidateAndFix].
type Fix struct {
	Layer   string `json:"layer"`
	Fix     string `json:"fix"`
	OldFont string `json:"old_font,omitempty"`
	NewFont string `json:"new_font,omitempty"`
}

// Report lists what [Validator.ValidateAndFix] changed.
type Report struct {
	Fixes   []Fix    `json:"fixes"`
	Removed []string `json:"removed"`
}

// Empty reports whether nothing was changed.
func (r Report) Empty() bool { return len(r.Fixes) == 0 && len(r.Removed) == 0 }

// ValidateAndFix drops decorative blobs, restyles CTA buttons and replaces
// forbidden fonts.
func (v *Validator) ValidateAndFix(ls []layer.Layer, width float64) ([]layer.Layer, Report) {
	var rep Report
	out := make([]layer.Layer, 0, len(ls))
	for _, l := range ls {
		if l.Kind == layer.KindEllipse && IsBlob(l, width) {
			rep.Removed = append(rep.Removed, l.Name)
			continue
		}
		l = layer.Clone(l)
		if IsCTAButton(l) {
			fixed := FixCTAButton(l, width)
			if fixed.Rect() != l.Rect() || fixed.Properties.CornerRadius != l.Properties.CornerRadius {
				rep.Fixes = append(rep.Fixes, Fix{Layer: l.Name, Fix: "cta_style"})
			}
			l = fixed
		}
		if old := l.Properties.FontFamily; isForbidden(old) {
			l.Properties.FontFamily = v.defaultFont
			rep.Fixes = append(rep.Fixes, Fix{Layer: l.Name, Fix: "font_family", OldFont: old, NewFont: v.defaultFont})
		}
		out = append(out, l)
	}
	if !rep.Empty() {
		v.logger.Info("template fixes applied", "fixes", len(rep.Fixes), "removed", len(rep.Removed))
	}
	return out, rep
}

func isForbidden(font string) bool {
	return font != "" && slices.ContainsFunc(ForbiddenFonts, func(f string) bool { return strings.EqualFold(f, font) })
}

// IsBlob reports whether an ellipse is decoration: named like one, large
// and hugging a side edge, or large and faint.
func IsBlob(l layer.Layer, width float64) bool {
	if l.NameHas(blobKeywords...) {
		return true
	}
	edge := width * 0.2
	corner := l.X < edge || l.X > width-edge-l.Width
	large := l.Width > 150 || l.Height > 150
	return large && (corner || l.Properties.Opacity < 0.5)
}

// IsCTAButton reports whether a rectangle or textbox carries a CTA keyword
// in its name or text.
func IsCTAButton(l layer.Layer) bool {
	if l.Kind != layer.KindRectangle && l.Kind != layer.KindTextbox {
		return false
	}
	return l.NameHas(CTAKeywords...) || l.TextHas(CTAKeywords...)
}

// FixCTAButton makes a CTA compact and pill-shaped: wide buttons shrink to
// 220px, narrow ones grow to 160px, heights outside 40 to 70 become 50, and
// the corner radius is at least 20.
func FixCTAButton(l layer.Layer, width float64) layer.Layer {
	switch {
	case l.Width > width*CTAMaxWidthRatio:
		l.Width = CTAWidth
	case l.Width < CTAMinWidth:
		l.Width = CTAMinWidth
	}
	if l.Height < CTAMinHeight || l.Height > CTAMaxHeight {
		l.Height = CTAHeight
	}
	if l.Properties.CornerRadius < CTAMinRadius {
		l.Properties.CornerRadius = CTARadius
	}
	return l
}

// Issue is a rule violation found without fixing it.
type Issue struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Current   string `json:"current,omitempty"`
	Suggested string `json:"suggested,omitempty"`
}

// ValidateLayer reports blob and font violations of a single layer.
func (v *Validator) ValidateLayer(l layer.Layer, width float64) []Issue {
	var issues []Issue
	if l.Kind == layer.KindEllipse && IsBlob(l, width) {
		issues = append(issues, Issue{Type: "decorative_blob", Message: "Decorative ellipse/blob detected - should be removed"})
	}
	if f := l.Properties.FontFamily; isForbidden(f) {
		issues = append(issues, Issue{
			Type:      "forbidden_font",
			Message:   fmt.Sprintf("Font '%s' is not allowed, use Google Fonts instead", f),
			Current:   f,
			Suggested: v.defaultFont,
		})
	}
	return issues
}

// Issues runs [Validator.ValidateLayer] over a layout, keyed by layer name.
func (v *Validator) Issues(ls []layer.Layer, width float64) map[string][]Issue {
	out := map[string][]Issue{}
	for _, l := range ls {
		if is := v.ValidateLayer(l, width); len(is) > 0 {
			out[l.Name] = append(out[l.Name], is...)
		}
	}
	return out
}
