package validator

import (
	"slices"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

// Z-order bands, bottom to top.
const (
	ZBackground  = 0
	ZPhoto       = 10
	ZGradient    = 20
	ZOverlay     = 25
	ZAccent      = 30
	ZDefault     = 35
	ZTextOverlay = 40
	ZSubtext     = 50
	ZText        = 52
	ZHeadline    = 55
	ZCTA         = 100
)

// ZPriority places a layer in a z-order band. Higher values are drawn on
// top.
func ZPriority(l layer.Layer) int {
	switch {
	case l.NameHas("background", "bg"):
		return ZBackground
	case l.Kind == layer.KindImage || l.NameHas("photo"):
		return ZPhoto
	case l.NameHas("gradient"):
		return ZGradient
	case l.Kind == layer.KindLine || l.NameHas("accent", "decoration"):
		return ZAccent
	case l.NameHas("overlay_for_", "text_overlay"):
		return ZTextOverlay
	case l.NameHas("overlay") && l.Kind == layer.KindRectangle:
		return ZOverlay
	case l.Kind == layer.KindText:
		switch {
		case l.NameHas("sub"):
			return ZSubtext
		case l.NameHas("headline", "title"):
			return ZHeadline
		}
		return ZText
	case l.Kind == layer.KindTextbox || l.NameHas("cta", "button"):
		return ZCTA
	}
	return ZDefault
}

// SortByZOrder returns ls stably sorted by [ZPriority].
func SortByZOrder(ls []layer.Layer) []layer.Layer {
	out := layer.CloneAll(ls)
	slices.SortStableFunc(out, func(a, b layer.Layer) int { return ZPriority(a) - ZPriority(b) })
	return out
}
