package validator

import (
	"math"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

// Element is a required part of a complete layout.
type Element string

// Required elements, in the order they are reported and added.
const (
	Headline Element = "headline"
	CTA      Element = "cta_button"
	Photo    Element = "photo"
	Subtext  Element = "subtext"
	Accent   Element = "accent"
)

// Fallbacks is the placeholder copy for synthesized text elements.
type Fallbacks struct {
	Headline string `toml:"headline" json:"headline"`
	Subtext  string `toml:"subtext" json:"subtext"`
	CTA      string `toml:"cta" json:"cta_text"`
}

// DefaultFallbacks returns the Polish placeholder copy.
func DefaultFallbacks() Fallbacks {
	return Fallbacks{
		Headline: "Twój Nagłówek Tutaj",
		Subtext:  "Twój opis lub tagline",
		CTA:      "Sprawdź Teraz",
	}
}

func (f Fallbacks) withDefaults() Fallbacks {
	d := DefaultFallbacks()
	if f.Headline == "" {
		f.Headline = d.Headline
	}
	if f.Subtext == "" {
		f.Subtext = d.Subtext
	}
	if f.CTA == "" {
		f.CTA = d.CTA
	}
	return f
}

// CheckCompleteness lists the required elements a layout lacks.
func (v *Validator) CheckCompleteness(ls []layer.Layer, width, height float64) []Element {
	var headline, cta, photo, subtext, background, accent bool
	for _, l := range ls {
		fs := l.Properties.FontSize
		if l.Kind == layer.KindRectangle {
			full := l.Width >= width*0.9 && l.Height >= height*0.9
			if full || l.NameHas("background", "bg") {
				background = true
			}
		}
		if (l.Kind == layer.KindText && fs >= layer.HeadlineMinFontSize) || l.NameHas("headline", "title", "header") {
			headline = true
		}
		button := IsCTAButton(l)
		if button || l.NameHas("cta", "button") {
			cta = true
		}
		if l.Kind == layer.KindImage {
			photo = true
		}
		if l.Kind == layer.KindText && fs > 0 && fs < layer.HeadlineMinFontSize && !button {
			subtext = true
		}
		if l.Kind == layer.KindLine {
			accent = true
		}
		if l.Kind == layer.KindRectangle && !background {
			small := l.Width < width*0.5 && l.Height < height*0.3
			if small || l.NameHas("accent", "line", "decoration") {
				accent = true
			}
		}
	}

	var missing []Element
	for _, m := range []struct {
		ok bool
		e  Element
	}{{headline, Headline}, {cta, CTA}, {photo, Photo}, {subtext, Subtext}, {accent, Accent}} {
		if !m.ok {
			missing = append(missing, m.e)
		}
	}
	v.logger.Debug("completeness check", "missing", missing, "background", background, "layers", len(ls))
	return missing
}

// AddMissing appends a placeholder for each missing element. The accent
// line is placed 24px above the first headline-like layer, which may be a
// placeholder added in the same call.
func (v *Validator) AddMissing(ls []layer.Layer, missing []Element, width, height float64) []layer.Layer {
	out := layer.CloneAll(ls)
	f := v.fallbacks
	for _, m := range missing {
		var add layer.Layer
		switch m {
		case Headline:
			add = layer.New("Auto_Headline", layer.KindText, 40, math.Round(height*0.35), width-80, 120, layer.Properties{
				Text: f.Headline, FontFamily: DefaultFont, FontSize: 48, FontWeight: "bold",
				Fill: "#FFFFFF", Align: "center", TextTransform: "uppercase",
			})
		case CTA:
			add = layer.New("Auto_CTA_Button", layer.KindTextbox, (width-CTAWidth)/2, height-120, CTAWidth, CTAHeight, layer.Properties{
				Text: f.CTA, FontFamily: DefaultFont, FontSize: 16, FontWeight: "600",
				Fill: "#D4AF37", TextColor: "#FFFFFF", Align: "center", Padding: 16, CornerRadius: CTARadius,
			})
		case Photo:
			add = layer.New("Auto_Photo_Placeholder", layer.KindRectangle, 0, 0, width, math.Round(height*0.5), layer.Properties{
				Fill: "#2A2A2A",
			})
		case Subtext:
			add = layer.New("Auto_Subtext", layer.KindText, 40, math.Round(height*0.55), width-80, 60, layer.Properties{
				Text: f.Subtext, FontFamily: DefaultFont, FontSize: 18, FontWeight: "normal",
				Fill: "#CCCCCC", Align: "center",
			})
		case Accent:
			add = accentLine(out, width, height)
		default:
			continue
		}
		v.logger.Warn("adding missing element", "element", m, "layer", add.Name)
		out = append(out, add)
	}
	return out
}

func accentLine(ls []layer.Layer, width, height float64) layer.Layer {
	const thickness, length = 4, 120
	x, y := width/2, math.Round(height*0.25)
	for _, l := range ls {
		if l.NameHas("headline", "title") {
			x, y = l.X, math.Max(40, l.Y-24-thickness)
			break
		}
	}
	return layer.New("Auto_Accent_Line", layer.KindLine, math.Trunc(x), math.Trunc(y), length, thickness, layer.Properties{
		Points:      []float64{0, 0, length, 0},
		Stroke:      "#D4AF37",
		StrokeWidth: 3,
		LineCap:     "round",
	})
}
