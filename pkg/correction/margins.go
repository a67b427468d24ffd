package correction

import (
	"github.com/matzehuels/layoutfix/pkg/grid"
	"github.com/matzehuels/layoutfix/pkg/layer"
)

// marginExempt reports layers the margin fix leaves alone: photos,
// backgrounds, overlays and full-bleed shapes.
func marginExempt(l layer.Layer, width float64) bool {
	if l.Kind == layer.KindImage {
		return true
	}
	if l.NameHas("background", "bg", "photo", "image", "overlay", "gradient") {
		return true
	}
	return l.X <= 0 && l.Right() >= width
}

// fixMargins applies the 80% rule: every content layer is pulled inside the
// safe margin of the canvas width, keeping right-zone layers in their zone.
func (c *Corrector) fixMargins(r *run) {
	p := c.positioner(r)
	out := layer.CloneAll(r.layers)
	for i, l := range out {
		if marginExempt(l, r.width) {
			continue
		}
		fixed := p.FitMargins(l, r.width)
		if fixed.Rect() == l.Rect() {
			continue
		}
		out[i] = fixed
		r.record(Record{Type: "margin_fix", Layer: l.Name, Before: l.Rect(), After: fixed.Rect()})
	}
	r.layers = out
}

// hardMarginSubject reports whether the final margin pass applies to l.
// Only content text is held to it; images, overlays and decoration are not.
func hardMarginSubject(l layer.Layer) bool {
	if !l.IsText() || l.Kind == layer.KindImage {
		return false
	}
	if l.NameHas("background", "gradient", "overlay") {
		return false
	}
	return l.Role != layer.RoleDecoration
}

// enforceHardMargins is the last step. Text may not start left of or above
// the safe margins nor end right of them; a layer too wide to fit is
// narrowed. The bottom limit is the safe margin, or CTABottomTolerance for
// CTAs. When height forces a choice, the top margin wins.
func (c *Corrector) enforceHardMargins(r *run) {
	m := c.tokens.SafeMargins(int(r.width), int(r.height))
	minX, minY := float64(m.Left), float64(m.Top)
	maxX, maxY := r.width-float64(m.Right), r.height-float64(m.Bottom)

	out := layer.CloneAll(r.layers)
	for i := range out {
		l := &out[i]
		if !hardMarginSubject(*l) {
			continue
		}
		before := l.Rect()
		l.X = max(l.X, minX)
		l.Y = max(l.Y, minY)
		if l.Right() > maxX {
			if maxX-l.Width >= minX {
				l.X = maxX - l.Width
			} else {
				l.X, l.Width = minX, max(maxX-minX, grid.Unit)
			}
		}
		bottom := maxY
		if l.Kind == layer.KindTextbox || l.NameHas("cta", "button") {
			bottom = r.height - CTABottomTolerance
		}
		if l.Bottom() > bottom {
			l.Y = max(minY, bottom-l.Height)
		}
		if l.Rect() != before {
			c.logger.Debug("hard margin enforced", "layer", l.Name, "x", l.X, "y", l.Y)
			r.record(Record{Type: "hard_margin_enforced", Layer: l.Name, Before: before, After: l.Rect()})
		}
	}
	r.layers = out
}
