package correction

import (
	"fmt"

	"github.com/matzehuels/layoutfix/pkg/color"
	"github.com/matzehuels/layoutfix/pkg/layer"
	"github.com/matzehuels/layoutfix/pkg/validator"
)

func (c *Corrector) validateTemplate(r *run) {
	out, rep := c.validator.ValidateAndFix(r.layers, r.width)
	for _, name := range rep.Removed {
		r.record(Record{Type: "blob_removed", Layer: name, Reason: "decorative blob"})
	}
	for _, f := range rep.Fixes {
		rec := Record{Type: f.Fix, Layer: f.Layer}
		if f.OldFont != "" {
			rec.Before, rec.After = f.OldFont, f.NewFont
		}
		r.record(rec)
	}
	if missing := c.validator.CheckCompleteness(out, r.width, r.height); len(missing) > 0 {
		out = c.validator.AddMissing(out, missing, r.width, r.height)
		r.record(Record{Type: "elements_added", After: missing})
	}
	r.layers = validator.SortByZOrder(out)
}

func (c *Corrector) calculateHeights(r *run) {
	out, changes := c.text.OptimizeLayers(r.layers)
	for _, ch := range changes {
		r.record(Record{
			Type:   "text_height_calculation",
			Layer:  ch.Layer,
			Before: ch.OldHeight,
			After:  ch.NewHeight,
			Reason: fmt.Sprintf("%d estimated lines", ch.Lines),
		})
	}
	r.layers = out
}

func (c *Corrector) positionText(kind string) func(*run) {
	return func(r *run) {
		out, moved := c.positioner(r).Fix(r.layers, r.width, r.height)
		if moved {
			r.record(Record{Type: kind, Reason: "overlapping text restacked"})
		}
		r.layers = out
	}
}

func (c *Corrector) addGradient(r *run) {
	out, preset := c.overlay.AddGradient(r.layers, r.width, r.height)
	if preset != "" {
		r.record(Record{Type: "gradient_overlay", After: preset})
	}
	r.layers = out
}

func (c *Corrector) fixTypography(r *run) {
	issues := c.typography.Validate(r.layers)
	if len(issues) == 0 {
		return
	}
	out, fixes := c.typography.Fix(r.layers)
	for _, f := range fixes {
		r.record(Record{Type: "typography_hierarchy", Reason: f})
	}
	r.layers = out
}

// TemplateBackground returns the fill of the template background: the first
// rectangle named background/bg or covering at least 1000×1000. White is
// assumed when there is none.
func TemplateBackground(ls []layer.Layer) string {
	for _, l := range ls {
		if l.Kind != layer.KindRectangle {
			continue
		}
		if l.NameHas("background", "bg") || (l.Width >= 1000 && l.Height >= 1000) {
			if l.Properties.Fill != "" {
				return l.Properties.Fill
			}
			break
		}
	}
	return color.DefaultBackground
}

func (c *Corrector) fixContrast(r *run) {
	bg := TemplateBackground(r.layers)
	if len(color.ValidateLayers(r.layers, bg)) == 0 {
		return
	}
	out, fixes := color.FixContrastIssues(r.layers, bg)
	for _, f := range fixes {
		r.record(Record{Type: "contrast", Layer: f.Layer, Before: f.OldColor, After: f.NewColor})
	}
	r.layers = out
}

func (c *Corrector) snapGrid(r *run) {
	r.layers = c.grid.SnapLayers(r.layers)
}

func (c *Corrector) snapTokens(r *run) {
	r.layers = c.tokens.SnapLayers(r.layers)
}

func (c *Corrector) applySoftGlow(r *run) {
	out, n := c.elevation.ApplySoftGlow(r.layers, c.cfg.SoftGlowIntensity)
	if n > 0 {
		r.record(Record{Type: "soft_glow_applied", After: n})
	}
	r.layers = out
}
