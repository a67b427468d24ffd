package elevation

import (
	"testing"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

func TestShadow(t *testing.T) {
	e := New(DefaultPresets(), nil)
	tests := []struct {
		level int
		want  Shadow
	}{
		{0, Shadow{}},
		{-3, Shadow{}},
		{1, Shadow{Enabled: true, Color: "#000000", Blur: 2, OffsetY: 1, Opacity: 0.08}},
		{3, Shadow{Enabled: true, Color: "#000000", Blur: 8, OffsetY: 4, Opacity: 0.12}},
		{9, Shadow{Enabled: true, Color: "#000000", Blur: 24, OffsetY: 12, Opacity: 0.16}},
	}
	for _, tt := range tests {
		if got := e.Shadow(tt.level); got != tt.want {
			t.Errorf("Shadow(%d) = %+v, want %+v", tt.level, got, tt.want)
		}
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name string
		kind layer.Kind
		want int
	}{
		{"cta_button", layer.KindRectangle, 3},
		{"label", layer.KindTextbox, 3},
		{"info_card", layer.KindRectangle, 2},
		{"accent_bar", layer.KindRectangle, 1},
		{"headline", layer.KindText, 0},
		{"photo", layer.KindImage, 0},
	}
	for _, tt := range tests {
		l := layer.New(tt.name, tt.kind, 0, 0, 10, 10, layer.Properties{})
		if got := LevelFor(l); got != tt.want {
			t.Errorf("LevelFor(%s) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestApplyAll(t *testing.T) {
	e := New(DefaultPresets(), nil)
	ls := []layer.Layer{
		layer.New("photo", layer.KindImage, 0, 0, 1080, 1080, layer.Properties{}),
		layer.New("cta", layer.KindTextbox, 400, 900, 280, 60, layer.Properties{Fill: "#D4AF37"}),
	}
	got := e.ApplyAll(ls)
	if got[0].Properties.HasShadow() {
		t.Error("photo should stay flat")
	}
	p := got[1].Properties
	if !p.ShadowEnabled || p.ShadowBlur != 8 || p.ShadowOffsetY != 4 || p.ShadowOpacity != 0.12 {
		t.Errorf("cta shadow = %+v", p)
	}
	if ls[1].Properties.ShadowEnabled {
		t.Error("ApplyAll mutated its input")
	}
}

func TestCSSBoxShadow(t *testing.T) {
	e := New(DefaultPresets(), nil)
	if got := e.CSSBoxShadow(0); got != "none" {
		t.Errorf("CSSBoxShadow(0) = %q", got)
	}
	want := "0 4px 8px rgba(0, 0, 0, 0.12), 0 4px 10px rgba(0, 0, 0, 0.08)"
	if got := e.CSSBoxShadow(3); got != want {
		t.Errorf("CSSBoxShadow(3) = %q, want %q", got, want)
	}
}

func TestFloating(t *testing.T) {
	f := New(DefaultPresets(), nil).Floating(1)
	if f.Normal.Blur != 2 || f.Hover.Blur != 4 || f.Pressed.Enabled {
		t.Errorf("Floating(1) = %+v", f)
	}
}

func TestStyles(t *testing.T) {
	e := New(DefaultPresets(), nil)
	tests := []struct {
		name string
		got  Shadow
		want Shadow
	}{
		{"glow low", e.SoftGlow(1), Shadow{Enabled: true, Color: "#000000", Blur: 30, Opacity: 0.10}},
		{"glow medium", e.SoftGlow(2), Shadow{Enabled: true, Color: "#000000", Blur: 45, Opacity: 0.12}},
		{"glow clamped", e.SoftGlow(7), Shadow{Enabled: true, Color: "#000000", Blur: 60, Opacity: 0.15}},
		{"ambient", e.Ambient(2), Shadow{Enabled: true, Color: "#000000", Blur: 30, OffsetY: 4, Opacity: 0.10}},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %+v, want %+v", tt.name, tt.got, tt.want)
		}
	}
}

func TestApplySoftGlow(t *testing.T) {
	ls := []layer.Layer{
		layer.New("headline", layer.KindText, 0, 0, 10, 10, layer.Properties{}),
		layer.New("cta_bg_button", layer.KindRectangle, 0, 0, 10, 10, layer.Properties{}),
		layer.New("label", layer.KindTextbox, 0, 0, 10, 10, layer.Properties{}),
	}
	got, n := New(DefaultPresets(), nil).ApplySoftGlow(ls, 2)
	if n != 2 {
		t.Fatalf("updated %d layers, want 2", n)
	}
	if got[0].Properties.ShadowEnabled || got[2].Properties.ShadowBlur != 45 || got[2].Properties.ShadowOffsetY != 0 {
		t.Errorf("got %+v", got)
	}
}
