// Package positioning resolves overlapping text layers and keeps text
// inside the canvas margins.
//
// Repositioning only ever changes Y and width. X is preserved so that an
// archetype's left or right text zone survives the repair.
package positioning

import (
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutfix/pkg/grid"
	"github.com/matzehuels/layoutfix/pkg/layer"
)

// Layout constants in pixels.
const (
	Spacing    = 16
	Margin     = 80
	RightZoneX = 400

	// CTABottomOffset is the distance from the canvas bottom to the top of a
	// repositioned CTA.
	CTABottomOffset = 120
	CTADefaultWidth = 220

	// BottomFocusRatio is the canvas height fraction below which a headline
	// marks the layout as bottom-focused.
	BottomFocusRatio = 0.4
)

// Positioner repairs text placement on a canvas.
type Positioner struct {
	spacing float64
	margin  float64
	top     float64
	logger  *log.Logger
}

// Option configures a Positioner.
type Option func(*Positioner)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Positioner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMargin overrides the standard edge margin.
func WithMargin(px float64) Option {
	return func(p *Positioner) {
		if px >= 0 {
			p.margin = px
		}
	}
}

// WithTopMargin sets where restacked text starts. It defaults to the edge
// margin.
func WithTopMargin(px float64) Option {
	return func(p *Positioner) {
		if px >= 0 {
			p.top = px
		}
	}
}

// New returns a Positioner with the standard 16px spacing and 80px margin.
func New(opts ...Option) *Positioner {
	p := &Positioner{
		spacing: Spacing,
		margin:  Margin,
		top:     -1,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.top < 0 {
		p.top = p.margin
	}
	return p
}

// Rank orders text layers: headlines first, then large text, subtext, and
// finally CTAs. Other text sorts by descending font size.
func Rank(l layer.Layer) int {
	fs := l.Properties.FontSize
	if fs == 0 {
		fs = layer.DefaultFontSize
	}
	switch {
	case l.Role == layer.RoleCTA:
		return 100
	case l.Role == layer.RoleHeadline:
		return 1
	case fs >= layer.HeadlineMinFontSize:
		return 2
	case l.Role == layer.RoleSubtext:
		return 50
	}
	return 100 - int(fs)
}

// HasOverlap reports whether any two text layers overlap.
func HasOverlap(ls []layer.Layer) bool {
	text := layer.TextLayers(ls)
	for i := range text {
		for j := i + 1; j < len(text); j++ {
			if text[i].Rect().Overlaps(text[j].Rect()) {
				return true
			}
		}
	}
	return false
}

// Fix sorts text layers by rank, restacks them when any overlap, and
// enforces margins. Non-text layers keep their relative order and come
// first; text layers follow in rank order. The second result reports
// whether a restack happened.
func (p *Positioner) Fix(ls []layer.Layer, width, height float64) ([]layer.Layer, bool) {
	var text, other []layer.Layer
	for _, l := range ls {
		if l.IsText() {
			text = append(text, layer.Clone(l))
		} else {
			other = append(other, layer.Clone(l))
		}
	}
	if len(text) < 2 {
		return layer.CloneAll(ls), false
	}

	slices.SortStableFunc(text, func(a, b layer.Layer) int { return Rank(a) - Rank(b) })

	moved := HasOverlap(text)
	if moved {
		p.logger.Warn("text overlap detected, repositioning", "layers", len(text))
		p.restack(text, width, height)
	}
	p.ensureMargins(text, width)

	return append(other, text...), moved
}

func (p *Positioner) restack(text []layer.Layer, width, height float64) {
	origX := make([]float64, len(text))
	for i, l := range text {
		origX[i] = l.X
	}

	cta := -1
	bottomFocused := false
	for i, l := range text {
		if cta < 0 && l.Role == layer.RoleCTA {
			cta = i
		}
		if !bottomFocused && l.Role == layer.RoleHeadline && l.Y > height*BottomFocusRatio {
			bottomFocused = true
		}
	}

	zoneX := p.margin
	if lo := slices.Min(origX); lo > RightZoneX {
		zoneX = lo
	}
	maxWidth := math.Max(grid.Unit, width-zoneX-p.margin)
	p.logger.Debug("restacking text", "bottom_focused", bottomFocused, "zone_x", zoneX)

	if cta >= 0 {
		c := &text[cta]
		w := c.Width
		if w == 0 {
			w = CTADefaultWidth
		}
		c.Y = height - CTABottomOffset
		c.X = (width - w) / 2
	}

	place := func(i int, y float64) {
		l := &text[i]
		l.Y = y
		l.X = origX[i]
		if l.Width > maxWidth {
			l.Width = maxWidth
		}
	}
	gap := p.spacing * 2

	if bottomFocused {
		y := height
		if cta >= 0 {
			y = height - CTABottomOffset
		}
		y -= 40
		for i := len(text) - 1; i >= 0; i-- {
			if i == cta {
				continue
			}
			y -= text[i].Height
			place(i, math.Max(p.top, math.Trunc(y)))
			y -= gap
		}
		return
	}

	limit := math.Min(height-100, height-p.top)
	if cta >= 0 {
		limit = height - 200
	}
	var stack []int
	total := 0.0
	for i := range text {
		if i != cta {
			stack = append(stack, i)
			total += text[i].Height
		}
	}
	if len(stack) == 0 {
		return
	}

	// A stack taller than the space shrinks its gaps first, then its
	// heights, so layers never land on each other.
	avail := limit - p.top
	if n := float64(len(stack) - 1); n > 0 && total+gap*n > avail {
		gap = math.Max(0, math.Floor((avail-total)/n))
	}
	if total > avail && avail > 0 {
		scale := avail / total
		p.logger.Warn("text stack taller than canvas, shrinking layers", "needed", total, "available", avail)
		for _, i := range stack {
			text[i].Height = math.Max(1, math.Floor(text[i].Height*scale))
		}
	}

	y := p.top
	for _, i := range stack {
		place(i, math.Trunc(y))
		y += text[i].Height + gap
	}
}

// EnsureMargins applies margin enforcement to every text layer of ls.
func (p *Positioner) EnsureMargins(ls []layer.Layer, width float64) []layer.Layer {
	out := layer.CloneAll(ls)
	for i := range out {
		if out[i].IsText() {
			out[i] = p.FitMargins(out[i], width)
		}
	}
	return out
}

func (p *Positioner) ensureMargins(text []layer.Layer, width float64) {
	for i := range text {
		text[i] = p.FitMargins(text[i], width)
	}
}

// FitMargins pulls a layer inside the left and right margins.
//
// A layer starting at or beyond [RightZoneX] belongs to a right text zone:
// it keeps its X and gives up width, down to one grid unit, and only moves
// left when even that still overflows. Left-zone layers are moved right of
// the left margin and then shifted or narrowed to clear the right one.
func (p *Positioner) FitMargins(l layer.Layer, width float64) layer.Layer {
	right := l.X >= RightZoneX
	if !right && l.X > 0 && l.X < p.margin {
		l.X = p.margin
	}
	if width-l.Right() >= p.margin {
		return l
	}
	limit := width - p.margin
	if right {
		l.Width = math.Max(grid.Unit, limit-l.X)
		if l.Right() > limit {
			l.X = limit - l.Width
		}
		return l
	}
	if l.Width > width-2*p.margin {
		l.Width = math.Max(grid.Unit, width-2*p.margin)
		l.X = p.margin
	} else {
		l.X = limit - l.Width
	}
	return l
}

// CenterHorizontally centers l on a canvas of the given width.
func CenterHorizontally(l layer.Layer, width float64) layer.Layer {
	w := l.Width
	if w == 0 {
		w = 200
	}
	l.X = math.Trunc((width - w) / 2)
	return l
}

// AlignLeft moves every text layer to x.
func AlignLeft(ls []layer.Layer, x float64) []layer.Layer {
	out := layer.CloneAll(ls)
	for i := range out {
		if out[i].IsText() {
			out[i].X = x
		}
	}
	return out
}

// NextY returns the Y below the lowest text layer plus spacing.
func NextY(ls []layer.Layer, spacing float64) float64 {
	var bottom float64
	for _, l := range ls {
		if l.IsText() {
			bottom = math.Max(bottom, l.Bottom())
		}
	}
	return bottom + spacing
}
