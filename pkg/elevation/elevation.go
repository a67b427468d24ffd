// Package elevation assigns layered drop shadows by elevation level.
//
// Levels run from 0 (flat) to 5. Each level is a stack of shadow layers;
// renderers that support a single shadow use the first, most prominent one.
// CTAs additionally get a diffuse zero-offset "soft glow".
package elevation

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

// Elevation bounds.
const (
	MinLevel = 0
	MaxLevel = 5

	// CTALevel is the elevation of floating buttons.
	CTALevel = 3

	ShadowColor = "#000000"
)

// ShadowLayer is one component of a multi-layer shadow.
type ShadowLayer struct {
	Blur    float64 `toml:"blur" json:"blur"`
	OffsetY float64 `toml:"offset_y" json:"offsetY"`
	Opacity float64 `toml:"opacity" json:"opacity"`
}

// Style is a shadow with low, medium and high intensity variants.
type Style struct {
	Blur    [3]float64 `toml:"blur" json:"blur"`
	Opacity [3]float64 `toml:"opacity" json:"opacity"`
	OffsetY [3]float64 `toml:"offset_y" json:"offsetY"`
}

// Presets is the immutable shadow configuration.
type Presets struct {
	Levels   [MaxLevel + 1][]ShadowLayer `json:"levels"`
	SoftGlow Style                       `json:"soft_glow"`
	Ambient  Style                       `json:"ambient"`
}

// DefaultPresets returns Material-style elevation levels and the soft glow
// and ambient styles.
func DefaultPresets() Presets {
	return Presets{
		Levels: [MaxLevel + 1][]ShadowLayer{
			nil,
			{{2, 1, 0.08}, {3, 1, 0.05}},
			{{4, 2, 0.10}, {5, 2, 0.06}},
			{{8, 4, 0.12}, {10, 4, 0.08}},
			{{16, 8, 0.14}, {20, 8, 0.10}},
			{{24, 12, 0.16}, {32, 12, 0.12}},
		},
		SoftGlow: Style{Blur: [3]float64{30, 45, 60}, Opacity: [3]float64{0.10, 0.12, 0.15}},
		Ambient:  Style{Blur: [3]float64{20, 30, 40}, Opacity: [3]float64{0.08, 0.10, 0.12}, OffsetY: [3]float64{2, 4, 6}},
	}
}

// Shadow is a single renderable shadow.
type Shadow struct {
	Enabled bool    `json:"shadowEnabled"`
	Color   string  `json:"shadowColor,omitempty"`
	Blur    float64 `json:"shadowBlur,omitempty"`
	OffsetX float64 `json:"shadowOffsetX"`
	OffsetY float64 `json:"shadowOffsetY"`
	Opacity float64 `json:"shadowOpacity,omitempty"`
}

// Apply writes the shadow into p. A disabled shadow only clears the
// enabled flag.
func (s Shadow) Apply(p layer.Properties) layer.Properties {
	p.ShadowEnabled = s.Enabled
	if !s.Enabled {
		return p
	}
	p.ShadowColor = s.Color
	p.ShadowBlur = s.Blur
	p.ShadowOffsetX = s.OffsetX
	p.ShadowOffsetY = s.OffsetY
	p.ShadowOpacity = s.Opacity
	return p
}

// Elevator applies shadows from a preset table.
type Elevator struct {
	presets Presets
	logger  *log.Logger
}

// New returns an Elevator. A nil logger discards output.
func New(p Presets, logger *log.Logger) *Elevator {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Elevator{presets: p, logger: logger}
}

func clampLevel(level int) int { return max(MinLevel, min(MaxLevel, level)) }

func intensityIndex(intensity int) int { return max(0, min(2, intensity-1)) }

// Layers returns every shadow layer of a level.
func (e *Elevator) Layers(level int) []ShadowLayer {
	return e.presets.Levels[clampLevel(level)]
}

// Shadow returns the primary shadow of a level. Level 0 is disabled.
func (e *Elevator) Shadow(level int) Shadow {
	ls := e.Layers(level)
	if len(ls) == 0 {
		return Shadow{}
	}
	return Shadow{Enabled: true, Color: ShadowColor, Blur: ls[0].Blur, OffsetY: ls[0].OffsetY, Opacity: ls[0].Opacity}
}

// LevelFor returns the recommended elevation of a layer. Names mentioning
// cta or button float at 3, card or panel at 2, accent or highlight at 1;
// otherwise textboxes float at 3 and everything else is flat.
func LevelFor(l layer.Layer) int {
	switch {
	case l.NameHas("cta", "button"):
		return CTALevel
	case l.NameHas("card", "panel"):
		return 2
	case l.NameHas("accent", "highlight"):
		return 1
	}
	if l.Kind == layer.KindTextbox {
		return CTALevel
	}
	return 0
}

// Apply gives l the primary shadow of its recommended level. Flat layers
// are returned unchanged.
func (e *Elevator) Apply(l layer.Layer) layer.Layer {
	level := LevelFor(l)
	if level == 0 {
		return l
	}
	l = layer.Clone(l)
	l.Properties = e.Shadow(level).Apply(l.Properties)
	return l
}

// ApplyAll applies [Elevator.Apply] to every layer.
func (e *Elevator) ApplyAll(ls []layer.Layer) []layer.Layer {
	out := make([]layer.Layer, len(ls))
	for i, l := range ls {
		out[i] = e.Apply(l)
	}
	return out
}

// CSSBoxShadow renders a level as a CSS box-shadow value.
func (e *Elevator) CSSBoxShadow(level int) string {
	ls := e.Layers(level)
	if len(ls) == 0 {
		return "none"
	}
	parts := make([]string, len(ls))
	for i, s := range ls {
		parts[i] = fmt.Sprintf("0 %spx %spx rgba(0, 0, 0, %s)", num(s.OffsetY), num(s.Blur), num(s.Opacity))
	}
	return strings.Join(parts, ", ")
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Floating is the shadow set of an interactive element.
type Floating struct {
	Normal  Shadow `json:"normal"`
	Hover   Shadow `json:"hover"`
	Pressed Shadow `json:"pressed"`
}

// Floating returns shadows for the resting, hovered and pressed states of
// an element at base elevation.
func (e *Elevator) Floating(base int) Floating {
	return Floating{
		Normal:  e.Shadow(base),
		Hover:   e.Shadow(min(MaxLevel, base+1)),
		Pressed: e.Shadow(max(MinLevel, base-1)),
	}
}

// SoftGlow returns the diffuse zero-offset shadow for intensity 1 to 3.
func (e *Elevator) SoftGlow(intensity int) Shadow {
	i := intensityIndex(intensity)
	s := e.presets.SoftGlow
	return Shadow{Enabled: true, Color: ShadowColor, Blur: s.Blur[i], Opacity: s.Opacity[i]}
}

// Ambient returns the subtle offset shadow for intensity 1 to 3.
func (e *Elevator) Ambient(intensity int) Shadow {
	i := intensityIndex(intensity)
	s := e.presets.Ambient
	return Shadow{Enabled: true, Color: ShadowColor, Blur: s.Blur[i], OffsetY: s.OffsetY[i], Opacity: s.Opacity[i]}
}

// IsCTA reports whether a layer is treated as a button for glow purposes.
func IsCTA(l layer.Layer) bool {
	return l.Kind == layer.KindTextbox || l.NameHas("cta", "button")
}

// ApplySoftGlow puts the soft glow on every CTA layer and reports how many
// were updated.
func (e *Elevator) ApplySoftGlow(ls []layer.Layer, intensity int) ([]layer.Layer, int) {
	glow := e.SoftGlow(intensity)
	out := layer.CloneAll(ls)
	n := 0
	for i := range out {
		if IsCTA(out[i]) {
			out[i].Properties = glow.Apply(out[i].Properties)
			n++
		}
	}
	e.logger.Debug("soft glow applied", "layers", n, "intensity", intensity)
	return out, n
}
