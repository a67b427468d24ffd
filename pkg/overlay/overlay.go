// Package overlay adds scrims between a photo and the text placed on it.
//
// The automatic gradient is the default treatment: one fade per layout,
// sized from the topmost text layer. Per-text solid overlays are kept for
// callers that ask for them explicitly.
package overlay

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

const (
	// GradientBuffer is the space left above the topmost text layer.
	GradientBuffer = 20

	// SolidOpacity and SolidPadding shape the per-text solid overlays.
	SolidOpacity = 0.6
	SolidPadding = 24

	// NamePrefix starts the name of every automatic gradient layer.
	NamePrefix = "gradient_overlay_"
)

// Overlayer builds and inserts overlay layers.
type Overlayer struct {
	presets Presets
	logger  *log.Logger
}

// New returns an Overlayer over the given presets. Nil presets use the
// defaults and a nil logger discards output.
func New(presets Presets, logger *log.Logger) *Overlayer {
	if presets == nil {
		presets = DefaultPresets()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Overlayer{presets: presets, logger: logger}
}

// Presets returns the preset table.
func (o *Overlayer) Presets() Presets { return o.presets }

func isPhoto(l layer.Layer) bool {
	return l.Kind == layer.KindImage || l.Role == layer.RolePhoto
}

func hasPhoto(ls []layer.Layer) bool {
	for _, l := range ls {
		if isPhoto(l) {
			return true
		}
	}
	return false
}

func rgba(alpha float64) string {
	return "rgba(0,0,0," + strconv.FormatFloat(alpha, 'f', -1, 64) + ")"
}

// Gradient builds the named gradient layer for a canvas. Vertical fades
// start GradientBuffer pixels above topmostY; side fades span the preset
// coverage of the canvas width; the vignette covers the whole canvas.
func (o *Overlayer) Gradient(name string, width, height, topmostY float64) layer.Layer {
	p := o.presets.Get(name)
	name = NamePrefix + p.Name
	props := layer.Properties{FillType: layer.FillGradient, GradientAngle: p.Angle}

	switch {
	case p.Radial:
		props.FillType = "radialGradient"
		props.GradientStartColor = rgba(p.StartOpacity)
		props.GradientEndColor = rgba(p.EndOpacity)
		return layer.New(name, layer.KindRectangle, 0, 0, width, height, props)

	case p.Vertical():
		// Vertical fades run transparent-to-dark toward the text edge.
		props.GradientStartColor = rgba(p.EndOpacity)
		props.GradientEndColor = rgba(p.StartOpacity)
		if p.Angle == 0 {
			y := max(0, topmostY-GradientBuffer)
			return layer.New(name, layer.KindRectangle, 0, y, width, height-y, props)
		}
		return layer.New(name, layer.KindRectangle, 0, 0, width, min(height, topmostY+GradientBuffer), props)
	}

	props.GradientStartColor = rgba(p.StartOpacity)
	props.GradientEndColor = rgba(p.EndOpacity)
	w := float64(int(width * p.Coverage))
	x := 0.0
	if p.Angle != 90 {
		x = width - w
	}
	return layer.New(name, layer.KindRectangle, x, 0, w, height, props)
}

// AddGradient inserts an automatic gradient chosen from the average text
// position. Layouts without both a photo and text are returned unchanged
// with an empty preset name.
func (o *Overlayer) AddGradient(ls []layer.Layer, width, height float64) ([]layer.Layer, string) {
	text := layer.TextLayers(ls)
	if len(text) == 0 || !hasPhoto(ls) {
		o.logger.Debug("skipping gradient", "text", len(text))
		return layer.CloneAll(ls), ""
	}

	var sumX, sumY float64
	top := text[0].Y
	for _, t := range text {
		sumX += t.X
		sumY += t.Y
		top = min(top, t.Y)
	}
	n := float64(len(text))
	preset := Detect(sumX/n, sumY/n, width, height)
	g := o.Gradient(preset, width, height, top)
	o.logger.Debug("gradient overlay", "preset", preset, "y", g.Y, "height", g.Height)
	return InsertAfterPhoto(ls, g), preset
}

// InsertAfterPhoto places ov directly above the first image or photo
// layer, or at index 1 when there is none.
func InsertAfterPhoto(ls []layer.Layer, ov layer.Layer) []layer.Layer {
	out := make([]layer.Layer, 0, len(ls)+1)
	inserted := false
	for _, l := range ls {
		out = append(out, layer.Clone(l))
		if !inserted && (l.Kind == layer.KindImage || l.NameHas("photo")) {
			out = append(out, ov)
			inserted = true
		}
	}
	if !inserted {
		at := min(1, len(out))
		out = append(out[:at], append([]layer.Layer{ov}, out[at:]...)...)
	}
	return out
}

// Simple returns a fixed 40%-height gradient at the top or bottom of the
// canvas. Any position other than "top" yields the bottom variant.
func Simple(position string, width, height float64) layer.Layer {
	h := float64(int(height * 0.4))
	props := layer.Properties{FillType: layer.FillGradient, GradientAngle: 180}
	if position == "top" {
		props.GradientStartColor = rgba(0.7)
		props.GradientEndColor = rgba(0)
		return layer.New(NamePrefix+"top", layer.KindRectangle, 0, 0, width, h, props)
	}
	props.GradientStartColor = rgba(0)
	props.GradientEndColor = rgba(0.8)
	return layer.New(NamePrefix+"bottom", layer.KindRectangle, 0, height-h, width, h, props)
}

// AddTextOverlays puts a solid dark band behind every text layer that sits
// on a photo and has no background of its own. Each band is inserted
// directly below its text layer. It returns the names of the texts that
// received one.
func (o *Overlayer) AddTextOverlays(ls []layer.Layer, width, height float64) ([]layer.Layer, []string) {
	if !hasPhoto(ls) {
		return layer.CloneAll(ls), nil
	}
	bands := map[string]layer.Layer{}
	var names []string
	for _, t := range ls {
		if !t.IsText() || ownBackground(t) || existingOverlay(t, ls) {
			continue
		}
		for _, p := range ls {
			if isPhoto(p) && t.Rect().Overlaps(p.Rect()) {
				if _, dup := bands[t.Name]; !dup {
					bands[t.Name] = solidBand(t, width, height)
					names = append(names, t.Name)
				}
				break
			}
		}
	}
	if len(bands) == 0 {
		return layer.CloneAll(ls), nil
	}

	out := make([]layer.Layer, 0, len(ls)+len(bands))
	for _, l := range ls {
		if b, ok := bands[l.Name]; ok && l.IsText() {
			out = append(out, b)
			delete(bands, l.Name)
		}
		out = append(out, layer.Clone(l))
	}
	o.logger.Info("text overlays added", "count", len(names))
	return out, names
}

func ownBackground(l layer.Layer) bool {
	return l.Kind == layer.KindTextbox && !l.Properties.IsTransparentFill()
}

func existingOverlay(t layer.Layer, ls []layer.Layer) bool {
	for _, l := range ls {
		if l.Kind != layer.KindRectangle {
			continue
		}
		dy := l.Y - t.Y
		if dy < 0 {
			dy = -dy
		}
		if l.Properties.Opacity < 1 && dy < 100 {
			return true
		}
		if l.NameHas("overlay", "gradient") && dy < 200 {
			return true
		}
	}
	return false
}

func solidBand(t layer.Layer, width, height float64) layer.Layer {
	y := max(0, t.Y-SolidPadding)
	h := t.Height + 2*SolidPadding
	switch {
	case t.Y < 200:
		y, h = 0, t.Y+t.Height+SolidPadding
	case t.Y > 700:
		h = height - y
	}
	return layer.New(fmt.Sprintf("overlay_for_%s", t.Name), layer.KindRectangle, 0, y, width, h, layer.Properties{
		Fill:    "#000000",
		Opacity: SolidOpacity,
	})
}
