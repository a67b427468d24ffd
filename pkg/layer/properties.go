package layer

import (
	"encoding/json"
	"maps"
	"strconv"
	"strings"
)

// Properties holds the style attributes of a layer.
//
// Zero values of LineHeight, LetterSpacing, CornerRadius, Padding and
// StrokeWidth mean "unset". Keys the model does not know are kept in Extra and
// written back on encode.
type Properties struct {
	Text          string  `json:"text,omitempty"`
	FontFamily    string  `json:"fontFamily,omitempty"`
	FontWeight    string  `json:"fontWeight,omitempty"`
	FontStyle     string  `json:"fontStyle,omitempty"`
	FontSize      float64 `json:"fontSize,omitempty"`
	Fill          string  `json:"fill,omitempty"`
	TextColor     string  `json:"textColor,omitempty"`
	Align         string  `json:"align,omitempty"`
	TextTransform string  `json:"textTransform,omitempty"`
	LineHeight    float64 `json:"lineHeight,omitempty"`
	LetterSpacing float64 `json:"letterSpacing,omitempty"`
	CornerRadius  float64 `json:"cornerRadius,omitempty"`
	Padding       float64 `json:"padding,omitempty"`
	Opacity       float64 `json:"opacity"`
	FillType      string  `json:"fillType,omitempty"`

	GradientStartColor string  `json:"gradientStartColor,omitempty"`
	GradientEndColor   string  `json:"gradientEndColor,omitempty"`
	GradientAngle      float64 `json:"gradientAngle,omitempty"`

	ShadowEnabled bool    `json:"shadowEnabled,omitempty"`
	ShadowColor   string  `json:"shadowColor,omitempty"`
	ShadowBlur    float64 `json:"shadowBlur,omitempty"`
	ShadowOffsetX float64 `json:"shadowOffsetX,omitempty"`
	ShadowOffsetY float64 `json:"shadowOffsetY,omitempty"`
	ShadowOpacity float64 `json:"shadowOpacity,omitempty"`

	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	LineCap     string    `json:"lineCap,omitempty"`
	Points      []float64 `json:"points,omitempty"`

	Extra map[string]any `json:"-"`
}

// HasShadow reports whether any shadow attribute is active.
func (p Properties) HasShadow() bool {
	return p.ShadowEnabled || p.ShadowBlur > 0
}

// IsTransparentFill reports whether the fill is empty, transparent or none.
func (p Properties) IsTransparentFill() bool {
	f := strings.ToLower(strings.TrimSpace(p.Fill))
	return f == "" || f == "transparent" || f == "none"
}

// knownKeys are decoded into typed fields; everything else goes to Extra.
var knownKeys = map[string]bool{
	"text": true, "fontFamily": true, "fontWeight": true, "fontStyle": true,
	"fontSize": true, "fill": true, "textColor": true, "align": true,
	"textTransform": true, "lineHeight": true, "letterSpacing": true,
	"cornerRadius": true, "padding": true, "opacity": true, "fillType": true,
	"gradientStartColor": true, "gradientEndColor": true, "gradientAngle": true,
	"shadowEnabled": true, "shadowColor": true, "shadowBlur": true,
	"shadowOffsetX": true, "shadowOffsetY": true, "shadowOpacity": true,
	"stroke": true, "strokeWidth": true, "lineCap": true, "points": true,
}

// UnmarshalJSON decodes properties leniently: numbers may arrive as strings,
// font weights as numbers, and an absent opacity means fully opaque.
func (p *Properties) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = propertiesFromMap(raw)
	return nil
}

// MarshalJSON merges Extra back into the encoded object.
func (p Properties) MarshalJSON() ([]byte, error) {
	type plain Properties
	b, err := json.Marshal(plain(p))
	if err != nil || len(p.Extra) == 0 {
		return b, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, v := range p.Extra {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

func propertiesFromMap(raw map[string]any) Properties {
	p := Properties{
		Text:          str(raw["text"]),
		FontFamily:    str(raw["fontFamily"]),
		FontWeight:    str(raw["fontWeight"]),
		FontStyle:     str(raw["fontStyle"]),
		FontSize:      num(raw["fontSize"]),
		Fill:          str(raw["fill"]),
		TextColor:     str(raw["textColor"]),
		Align:         str(raw["align"]),
		TextTransform: str(raw["textTransform"]),
		LineHeight:    num(raw["lineHeight"]),
		LetterSpacing: num(raw["letterSpacing"]),
		CornerRadius:  num(raw["cornerRadius"]),
		Padding:       num(raw["padding"]),
		Opacity:       DefaultOpacity,
		FillType:      str(raw["fillType"]),

		GradientStartColor: str(raw["gradientStartColor"]),
		GradientEndColor:   str(raw["gradientEndColor"]),
		GradientAngle:      num(raw["gradientAngle"]),

		ShadowEnabled: boolean(raw["shadowEnabled"]),
		ShadowColor:   str(raw["shadowColor"]),
		ShadowBlur:    num(raw["shadowBlur"]),
		ShadowOffsetX: num(raw["shadowOffsetX"]),
		ShadowOffsetY: num(raw["shadowOffsetY"]),
		ShadowOpacity: num(raw["shadowOpacity"]),

		Stroke:      str(raw["stroke"]),
		StrokeWidth: num(raw["strokeWidth"]),
		LineCap:     str(raw["lineCap"]),
	}
	if v, ok := raw["opacity"]; ok && v != nil {
		p.Opacity = num(v)
	}
	if pts, ok := raw["points"].([]any); ok {
		for _, v := range pts {
			p.Points = append(p.Points, num(v))
		}
	}
	for k, v := range raw {
		if knownKeys[k] {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[k] = v
	}
	return p
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func num(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "px"), 64)
		if err == nil {
			return f
		}
	case bool:
		if t {
			return 1
		}
	}
	return 0
}

func boolean(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	case float64:
		return t != 0
	}
	return false
}

// Merge overlays the non-zero fields of o onto p. Extra keys are merged too.
func (p Properties) Merge(o Properties) Properties {
	type plain Properties
	base, _ := json.Marshal(plain(p))
	over, _ := json.Marshal(plain(o))
	var bm, om map[string]any
	_ = json.Unmarshal(base, &bm)
	_ = json.Unmarshal(over, &om)
	if o.Opacity == 0 {
		delete(om, "opacity")
	}
	maps.Copy(bm, om)
	out := propertiesFromMap(bm)
	if len(p.Extra) > 0 || len(o.Extra) > 0 {
		out.Extra = make(map[string]any, len(p.Extra)+len(o.Extra))
		maps.Copy(out.Extra, p.Extra)
		maps.Copy(out.Extra, o.Extra)
	}
	return out
}
