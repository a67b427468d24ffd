// Package layer defines the positioned visual primitives that flow through the
// correction pipeline.
//
// A [Layer] is a value type. Every stage receives a slice of layers and returns
// a new slice; use [Clone] or [CloneAll] before modifying a layer that came from
// another stage so nested properties are never shared.
//
// # Roles
//
// The semantic role of a layer (headline, CTA, photo, ...) is inferred exactly
// once by [InferRole] when the layer is constructed with [New] or decoded from
// JSON/YAML. Stages read [Layer.Role] instead of re-matching names, so every
// stage agrees on which layer is the headline.
//
// # Defaults
//
// Missing properties are defaulted at construction time: text layers get a
// 16px font size and a #000000 fill, every layer gets opacity 1 and a solid
// fill type. Consumers never have to guess a fallback.
package layer

import (
	"maps"
	"slices"
	"strings"
)

// Kind is the primitive type of a layer.
type Kind string

// Supported layer kinds.
const (
	KindText      Kind = "text"
	KindTextbox   Kind = "textbox"
	KindImage     Kind = "image"
	KindRectangle Kind = "rectangle"
	KindEllipse   Kind = "ellipse"
	KindLine      Kind = "line"
)

// Kinds lists every supported kind in declaration order.
var Kinds = []Kind{KindText, KindTextbox, KindImage, KindRectangle, KindEllipse, KindLine}

// IsText reports whether k renders text (text or textbox).
func (k Kind) IsText() bool { return k == KindText || k == KindTextbox }

// Default property values applied at construction.
const (
	DefaultFontSize = 16.0
	DefaultFill     = "#000000"
	DefaultOpacity  = 1.0
	FillSolid       = "solid"
	FillGradient    = "gradient"
)

// Layer is a positioned visual primitive on the canvas.
// Coordinates are canvas pixels with the origin at the top-left corner.
type Layer struct {
	Name       string     `json:"name"`
	Kind       Kind       `json:"type"`
	Role       Role       `json:"role,omitempty"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Properties Properties `json:"properties"`
}

// New builds a layer, applies property defaults and infers its role.
// A zero Opacity in props is treated as unset.
func New(name string, kind Kind, x, y, width, height float64, props Properties) Layer {
	l := Layer{
		Name:       name,
		Kind:       kind,
		X:          x,
		Y:          y,
		Width:      width,
		Height:     height,
		Properties: props,
	}
	if l.Properties.Opacity == 0 {
		l.Properties.Opacity = DefaultOpacity
	}
	l.applyDefaults()
	l.Role = InferRole(l)
	return l
}

// applyDefaults fills kind-dependent property defaults.
func (l *Layer) applyDefaults() {
	p := &l.Properties
	if l.Kind.IsText() {
		if p.FontSize <= 0 {
			p.FontSize = DefaultFontSize
		}
		if l.Kind == KindText && p.Fill == "" {
			p.Fill = DefaultFill
		}
	}
	if p.FillType == "" {
		p.FillType = FillSolid
	}
}

// Clone returns a deep copy of l.
func Clone(l Layer) Layer {
	c := l
	c.Properties.Points = slices.Clone(l.Properties.Points)
	if l.Properties.Extra != nil {
		c.Properties.Extra = maps.Clone(l.Properties.Extra)
	}
	return c
}

// CloneAll deep-copies a slice of layers.
func CloneAll(ls []Layer) []Layer {
	out := make([]Layer, len(ls))
	for i, l := range ls {
		out[i] = Clone(l)
	}
	return out
}

// IsText reports whether the layer renders text.
func (l Layer) IsText() bool { return l.Kind.IsText() }

// Rect returns the bounding rectangle of the layer.
func (l Layer) Rect() Rect { return Rect{X: l.X, Y: l.Y, Width: l.Width, Height: l.Height} }

// Right returns the x coordinate of the right edge.
func (l Layer) Right() float64 { return l.X + l.Width }

// Bottom returns the y coordinate of the bottom edge.
func (l Layer) Bottom() float64 { return l.Y + l.Height }

// Lower returns the lowercased layer name.
func (l Layer) Lower() string { return strings.ToLower(l.Name) }

// NameHas reports whether the lowercased name contains any of the keywords.
func (l Layer) NameHas(keywords ...string) bool {
	return containsAny(l.Lower(), keywords)
}

// TextHas reports whether the lowercased text content contains any of the keywords.
func (l Layer) TextHas(keywords ...string) bool {
	return containsAny(strings.ToLower(l.Properties.Text), keywords)
}

// TextLayers returns the text and textbox layers of ls, preserving order.
func TextLayers(ls []Layer) []Layer {
	var out []Layer
	for _, l := range ls {
		if l.IsText() {
			out = append(out, l)
		}
	}
	return out
}

// CountText counts text and textbox layers.
func CountText(ls []Layer) int {
	n := 0
	for _, l := range ls {
		if l.IsText() {
			n++
		}
	}
	return n
}

// FindRole returns the index of the first layer with role r, or -1.
func FindRole(ls []Layer, r Role) int {
	for i, l := range ls {
		if l.Role == r {
			return i
		}
	}
	return -1
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
