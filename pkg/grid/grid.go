// Package grid quantizes layer geometry to an 8pt grid.
package grid

import (
	"math"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

// Unit is the default grid unit in pixels.
const Unit = 8

// Grid snaps values to multiples of its unit.
type Grid struct {
	unit int
}

// New returns a grid with the given unit. A non-positive unit uses [Unit].
func New(unit int) Grid {
	if unit <= 0 {
		unit = Unit
	}
	return Grid{unit: unit}
}

// Default returns the 8pt grid.
func Default() Grid { return New(Unit) }

// Unit returns the grid unit.
func (g Grid) Unit() int { return g.unitOrDefault() }

func (g Grid) unitOrDefault() int {
	if g.unit <= 0 {
		return Unit
	}
	return g.unit
}

// Snap rounds v to the nearest multiple of the unit. Halves round away from
// zero.
func (g Grid) Snap(v float64) float64 {
	u := float64(g.unitOrDefault())
	return math.Round(v/u) * u
}

// SnapSize snaps a dimension and floors it at one unit.
func (g Grid) SnapSize(v float64) float64 {
	return math.Max(float64(g.unitOrDefault()), g.Snap(v))
}

// SnapLayer snaps position, size, corner radius and padding of l.
func (g Grid) SnapLayer(l layer.Layer) layer.Layer {
	out := layer.Clone(l)
	out.X = g.Snap(l.X)
	out.Y = g.Snap(l.Y)
	out.Width = g.SnapSize(l.Width)
	out.Height = g.SnapSize(l.Height)
	if out.Properties.CornerRadius != 0 {
		out.Properties.CornerRadius = g.Snap(out.Properties.CornerRadius)
	}
	if out.Properties.Padding != 0 {
		out.Properties.Padding = g.Snap(out.Properties.Padding)
	}
	return out
}

// SnapLayers snaps every layer.
func (g Grid) SnapLayers(ls []layer.Layer) []layer.Layer {
	out := make([]layer.Layer, len(ls))
	for i, l := range ls {
		out[i] = g.SnapLayer(l)
	}
	return out
}

// Values lists the grid values from Snap(min) up to max inclusive.
func (g Grid) Values(min, max int) []int {
	u := g.unitOrDefault()
	var out []int
	for v := int(g.Snap(float64(min))); v <= max; v += u {
		out = append(out, v)
	}
	return out
}

// IsOnGrid reports whether v is a whole multiple of the unit.
func (g Grid) IsOnGrid(v float64) bool {
	return v == math.Trunc(v) && int64(v)%int64(g.unitOrDefault()) == 0
}
