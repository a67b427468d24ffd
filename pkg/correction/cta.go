package correction

import (
	"math"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

// CTA geometry enforced late in the sequence.
const (
	CTAMinFontSize     = 20
	CTAMaxFontSize     = 25
	CTAMinWidth        = 280
	CTAHeight          = 60
	CTABottomOffset    = 120
	CTAPlacementRatio  = 0.6
	CTACenterTolerance = 50

	// CTABottomTolerance is how close to the canvas bottom a CTA may end.
	CTABottomTolerance = 40
)

// DefaultCTAText labels a synthesized CTA.
const DefaultCTAText = "Sprawdź Teraz"

// IsCTA reports whether l acts as a call to action: any textbox, or a layer
// whose name or text mentions cta, button or action.
func IsCTA(l layer.Layer) bool {
	return l.Kind == layer.KindTextbox ||
		l.NameHas("cta", "button", "action") ||
		l.TextHas("cta", "button", "action")
}

// HasCTA reports whether any layer is a CTA.
func HasCTA(ls []layer.Layer) bool {
	for _, l := range ls {
		if IsCTA(l) {
			return true
		}
	}
	return false
}

func (c *Corrector) ensureCTAProminent(r *run) {
	out := layer.CloneAll(r.layers)
	for i := range out {
		l := &out[i]
		if !IsCTA(*l) {
			continue
		}
		before := l.Rect()
		if l.Y < r.height*CTAPlacementRatio {
			l.Y = r.height - CTABottomOffset
		}
		if l.IsText() {
			c.sizeCTAText(l, r)
		}
		if l.Width < CTAMinWidth {
			l.Width = CTAMinWidth
		}
		if cx := float64(int((r.width - l.Width) / 2)); math.Abs(l.X-cx) > CTACenterTolerance {
			l.X = cx
		}
		if l.Rect() != before {
			r.record(Record{Type: "cta_prominence", Layer: l.Name, Before: before, After: l.Rect()})
		}
	}
	r.layers = out
}

// sizeCTAText clamps the label into [CTAMinFontSize, CTAMaxFontSize], sets
// padding equal to the font size and keeps the height within 1.5× of the
// proportional 2×padding+fontSize.
func (c *Corrector) sizeCTAText(l *layer.Layer, r *run) {
	fs := l.Properties.FontSize
	switch {
	case fs < CTAMinFontSize:
		l.Properties.FontSize = CTAMinFontSize
		r.record(Record{Type: "cta_fontSize_enforced", Layer: l.Name, Before: fs, After: CTAMinFontSize})
	case fs > CTAMaxFontSize:
		l.Properties.FontSize = CTAMinFontSize
		r.record(Record{Type: "cta_fontSize_reduced", Layer: l.Name, Before: fs, After: CTAMinFontSize})
	}
	fs = l.Properties.FontSize
	pad := math.Trunc(fs)
	l.Properties.Padding = pad
	if h := 2*pad + fs; l.Height < h || l.Height > h*1.5 {
		l.Height = h
	}
}

// MissingCTA builds the CTA added when a layout has none.
func MissingCTA(width, height float64) layer.Layer {
	return layer.New("cta_button", layer.KindTextbox,
		float64(int((width-CTAMinWidth)/2)), height-CTAHeight-CTABottomTolerance,
		CTAMinWidth, CTAHeight,
		layer.Properties{
			Text:         DefaultCTAText,
			FontFamily:   "Montserrat",
			FontSize:     20,
			FontWeight:   "600",
			Fill:         "#D4AF37",
			TextColor:    "#FFFFFF",
			Align:        "center",
			Padding:      20,
			CornerRadius: 500,
		})
}

func (c *Corrector) ensureCTA(r *run) {
	if HasCTA(r.layers) {
		return
	}
	cta := MissingCTA(r.width, r.height)
	c.logger.Info("layout has no CTA, adding one", "x", cta.X, "y", cta.Y)
	r.layers = append(layer.CloneAll(r.layers), cta)
	r.record(Record{Type: "cta_added", Layer: cta.Name, After: cta.Rect()})
}
