package archetype

import (
	"github.com/matzehuels/layoutfix/pkg/layer"
)

// SubtextOffset is how far below the top of the text zone displaced subtext
// is placed.
const SubtextOffset = 100

// Constrain fits layers to the archetype scaled onto a width×height canvas:
// headline and subtext are pulled into the text zone, CTAs move to the
// archetype's CTA position, non-background images fill the photo zone, and a
// full-canvas overlay is inserted after the last image when the archetype
// requires one and none exists.
func (a Archetype) Constrain(ls []layer.Layer, width, height int) []layer.Layer {
	arch := a.Scale(width, height)
	tz, pz := arch.TextZone, arch.PhotoZone
	cta := arch.CTARect(width, height)

	out := make([]layer.Layer, 0, len(ls)+1)
	for _, l := range ls {
		l = layer.Clone(l)
		switch {
		case l.IsText() && (l.Role == layer.RoleHeadline || l.Role == layer.RoleSubtext):
			if l.X < tz.X || l.X > tz.Right() {
				l.X = tz.X
			}
			if l.Width > tz.Width {
				l.Width = tz.Width
			}
			if l.Y < tz.Y || l.Y > tz.Bottom() {
				if l.Role == layer.RoleHeadline {
					l.Y = tz.Y
				} else {
					l.Y = tz.Y + SubtextOffset
				}
			}
		case l.IsText() && l.Role == layer.RoleCTA:
			l.X = float64(int(cta.X))
			l.Y = float64(int(cta.Y))
		case l.Kind == layer.KindImage && l.Role != layer.RoleBackground:
			l.X, l.Y, l.Width, l.Height = pz.X, pz.Y, pz.Width, pz.Height
		}
		out = append(out, l)
	}

	if !a.OverlayRequired || hasNamed(out, "overlay") {
		return out
	}
	overlay := layer.New("overlay", layer.KindRectangle, 0, 0, float64(width), float64(height), layer.Properties{
		Fill:    "#000000",
		Opacity: a.Overlay(),
	})
	insert := 1
	for i, l := range out {
		if l.Kind == layer.KindImage {
			insert = i + 1
		}
	}
	insert = min(insert, len(out))
	out = append(out[:insert], append([]layer.Layer{overlay}, out[insert:]...)...)
	return out
}

func hasNamed(ls []layer.Layer, kw string) bool {
	for _, l := range ls {
		if l.NameHas(kw) {
			return true
		}
	}
	return false
}
