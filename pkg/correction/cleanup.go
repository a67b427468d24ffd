package correction

import (
	"slices"
	"strings"

	"github.com/matzehuels/layoutfix/pkg/layer"
	"github.com/matzehuels/layoutfix/pkg/typography"
)

// solidFills are the flat fills an AI draft uses for "readability" scrims.
var solidFills = []string{"#FFFFFF", "#FFF", "#000000", "#000", "WHITE", "BLACK"}

// IsSolidOverlay reports whether l is a flat semi-transparent scrim that
// the gradient overlay replaces: a rectangle named like an overlay, or a
// translucent white or black rectangle larger than 500×200. Backgrounds
// and gradients are never solid overlays.
func IsSolidOverlay(l layer.Layer) bool {
	if l.Kind != layer.KindRectangle || l.NameHas("background", "bg") {
		return false
	}
	if strings.HasSuffix(strings.ToLower(l.Properties.FillType), layer.FillGradient) || l.NameHas("gradient") {
		return false
	}
	if l.NameHas("overlay") {
		return true
	}
	op := l.Properties.Opacity
	return l.Width > 500 && l.Height > 200 && op > 0 && op < 1 &&
		slices.Contains(solidFills, strings.ToUpper(l.Properties.Fill))
}

func (c *Corrector) removeSolidOverlays(r *run) {
	out := make([]layer.Layer, 0, len(r.layers))
	for _, l := range r.layers {
		if IsSolidOverlay(l) {
			c.logger.Debug("removing solid overlay", "layer", l.Name)
			r.record(Record{Type: "solid_overlays_removed", Layer: l.Name, Before: l.Rect()})
			continue
		}
		out = append(out, layer.Clone(l))
	}
	r.layers = out
}

// balanceVisualWeight lifts subtext one step up the font scale when the
// headline dominates. Subtext that would pass the headline cap is left
// alone.
func (c *Corrector) balanceVisualWeight(r *run) {
	d := typography.VisualWeight(r.layers).Distribution
	if d.Headline <= HeadlineDominance || d.Subtext >= SubtextFloor {
		return
	}
	out := layer.CloneAll(r.layers)
	for i := range out {
		l := &out[i]
		if !l.IsText() || l.Role != layer.RoleSubtext {
			continue
		}
		cur := l.Properties.FontSize
		next := c.tokens.NextFontSize(cur, 0)
		if next == 0 || next > typography.MaxHeadlineSize {
			continue
		}
		l.Properties.FontSize = float64(next)
		l.Properties.FontWeight = "500"
		l.Properties.LetterSpacing += 0.5
		r.record(Record{
			Type:   "visual_weight_balanced",
			Layer:  l.Name,
			Before: cur,
			After:  next,
			Reason: "headline dominates visual weight",
		})
	}
	r.layers = out
}
