// Package archetype holds the catalog of composition archetypes and selects
// the one that best fits a photo's focal point.
//
// Archetype geometry is defined on a 1080×1080 reference canvas. Use
// [Archetype.Scale] to map it onto another canvas size.
package archetype

import "github.com/matzehuels/layoutfix/pkg/layer"

// ReferenceSize is the width and height of the canvas the catalog is
// defined on.
const ReferenceSize = 1080

// CTA placement within the canvas.
const (
	BottomLeft   = "bottom-left"
	BottomRight  = "bottom-right"
	BottomCenter = "bottom-center"
)

// Range is a closed interval over normalized focal coordinates.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Distance returns the distance from v to the nearer bound.
func (r Range) Distance(v float64) float64 {
	return min(abs(v-r.Min), abs(v-r.Max))
}

// Archetype is a named canonical arrangement of text, photo and CTA.
type Archetype struct {
	Name            string      `json:"name"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	TextZone        layer.Rect  `json:"text_zone"`
	PhotoZone       layer.Rect  `json:"photo_zone"`
	BackgroundZone  *layer.Rect `json:"background_zone,omitempty"`
	CTAPosition     string      `json:"cta_position"`
	HeadlineAlign   string      `json:"headline_align"`
	IdealFocalX     *Range      `json:"ideal_focal_x,omitempty"`
	IdealFocalY     *Range      `json:"ideal_focal_y,omitempty"`
	OverlayRequired bool        `json:"overlay_required"`
	OverlayOpacity  float64     `json:"overlay_opacity,omitempty"`
	NoTextOnPhoto   bool        `json:"no_text_on_photo,omitempty"`
}

// Overlay returns the overlay opacity, defaulting to 0.5 when the archetype
// requires an overlay but does not specify one.
func (a Archetype) Overlay() float64 {
	if a.OverlayOpacity > 0 {
		return a.OverlayOpacity
	}
	return 0.5
}

// Scale maps the archetype geometry from the reference canvas onto a
// width×height canvas.
func (a Archetype) Scale(width, height int) Archetype {
	sx := float64(width) / ReferenceSize
	sy := float64(height) / ReferenceSize
	scale := func(r layer.Rect) layer.Rect {
		return layer.Rect{X: r.X * sx, Y: r.Y * sy, Width: r.Width * sx, Height: r.Height * sy}
	}
	out := a
	out.TextZone = scale(a.TextZone)
	out.PhotoZone = scale(a.PhotoZone)
	if a.BackgroundZone != nil {
		bz := scale(*a.BackgroundZone)
		out.BackgroundZone = &bz
	}
	return out
}

// CTA dimensions used for archetype placement.
const (
	CTAWidth  = 220
	CTAHeight = 50
	CTAMargin = 80
)

// CTARect returns where the CTA button sits on a width×height canvas.
func (a Archetype) CTARect(width, height int) layer.Rect {
	w, h := float64(width), float64(height)
	y := h - CTAHeight - CTAMargin
	var x float64
	switch a.CTAPosition {
	case BottomLeft:
		x = CTAMargin
	case BottomRight:
		x = w - CTAWidth - CTAMargin
	default:
		x = (w - CTAWidth) / 2
	}
	return layer.Rect{X: x, Y: y, Width: CTAWidth, Height: CTAHeight}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
