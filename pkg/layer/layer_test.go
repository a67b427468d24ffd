package layer

import (
	"strings"
	"testing"
)

func TestNewAppliesDefaults(t *testing.T) {
	l := New("copy", KindText, 10, 20, 300, 40, Properties{Text: "hello"})

	if l.Properties.FontSize != DefaultFontSize {
		t.Errorf("FontSize = %v, want %v", l.Properties.FontSize, DefaultFontSize)
	}
	if l.Properties.Fill != DefaultFill {
		t.Errorf("Fill = %q, want %q", l.Properties.Fill, DefaultFill)
	}
	if l.Properties.Opacity != 1 {
		t.Errorf("Opacity = %v, want 1", l.Properties.Opacity)
	}
	if l.Properties.FillType != FillSolid {
		t.Errorf("FillType = %q, want %q", l.Properties.FillType, FillSolid)
	}
	if l.Role != RoleBody {
		t.Errorf("Role = %q, want %q", l.Role, RoleBody)
	}
}

func TestNewTextboxKeepsEmptyFill(t *testing.T) {
	l := New("cta", KindTextbox, 0, 0, 280, 60, Properties{})
	if l.Properties.Fill != "" {
		t.Errorf("Fill = %q, want empty", l.Properties.Fill)
	}
	if l.Role != RoleCTA {
		t.Errorf("Role = %q, want %q", l.Role, RoleCTA)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := New("line", KindLine, 0, 0, 120, 4, Properties{
		Points: []float64{0, 0, 120, 0},
		Extra:  map[string]any{"dash": "4 2"},
	})
	c := Clone(orig)
	c.Properties.Points[2] = 60
	c.Properties.Extra["dash"] = "none"

	if orig.Properties.Points[2] != 120 {
		t.Error("Clone shares Points with the original")
	}
	if orig.Properties.Extra["dash"] != "4 2" {
		t.Error("Clone shares Extra with the original")
	}
}

func TestNameHas(t *testing.T) {
	l := New("Main_Headline", KindText, 0, 0, 10, 10, Properties{})
	if !l.NameHas("headline") {
		t.Error("NameHas(headline) = false, want true")
	}
	if l.NameHas("cta", "button") {
		t.Error("NameHas(cta, button) = true, want false")
	}
}

func TestTextLayers(t *testing.T) {
	ls := []Layer{
		New("bg", KindRectangle, 0, 0, 1080, 1080, Properties{}),
		New("headline", KindText, 0, 0, 10, 10, Properties{}),
		New("photo", KindImage, 0, 0, 10, 10, Properties{}),
		New("cta", KindTextbox, 0, 0, 10, 10, Properties{}),
	}
	got := TextLayers(ls)
	if len(got) != 2 || got[0].Name != "headline" || got[1].Name != "cta" {
		t.Errorf("TextLayers() = %v, want [headline cta]", got)
	}
	if n := CountText(ls); n != 2 {
		t.Errorf("CountText() = %d, want 2", n)
	}
	if i := FindRole(ls, RolePhoto); i != 2 {
		t.Errorf("FindRole(photo) = %d, want 2", i)
	}
	if i := FindRole(ls, RoleSubtext); i != -1 {
		t.Errorf("FindRole(subtext) = %d, want -1", i)
	}
}

func TestRectOverlaps(t *testing.T) {
	tests := []struct {
		name       string
		a, b       Rect
		overlaps   bool
		intersects bool
	}{
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 10, 10}, false, false},
		{"touching edge", Rect{0, 0, 10, 10}, Rect{10, 0, 10, 10}, false, true},
		{"overlapping", Rect{0, 0, 10, 10}, Rect{5, 5, 10, 10}, true, true},
		{"contained", Rect{0, 0, 100, 100}, Rect{10, 10, 5, 5}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.overlaps {
				t.Errorf("Overlaps() = %v, want %v", got, tt.overlaps)
			}
			if got := tt.a.Intersects(tt.b); got != tt.intersects {
				t.Errorf("Intersects() = %v, want %v", got, tt.intersects)
			}
		})
	}
}

func TestRectIntersection(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	if got := a.Intersection(Rect{5, 5, 10, 10}); got != 25 {
		t.Errorf("Intersection() = %v, want 25", got)
	}
	if got := a.Intersection(Rect{10, 10, 5, 5}); got != 0 {
		t.Errorf("Intersection() = %v, want 0", got)
	}
}

func TestMerge(t *testing.T) {
	base := Properties{Fill: "#D4AF37", FontSize: 20, Opacity: 1}
	got := base.Merge(Properties{ShadowEnabled: true, ShadowBlur: 45, ShadowOpacity: 0.12})

	if got.Fill != "#D4AF37" || got.FontSize != 20 {
		t.Errorf("Merge() lost base fields: %+v", got)
	}
	if !got.ShadowEnabled || got.ShadowBlur != 45 || got.ShadowOpacity != 0.12 {
		t.Errorf("Merge() did not apply overlay: %+v", got)
	}
	if got.Opacity != 1 {
		t.Errorf("Opacity = %v, want 1", got.Opacity)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		layer   Layer
		wantErr string
	}{
		{"valid", New("a", KindRectangle, 0, 0, 10, 10, Properties{Fill: "#FFF"}), ""},
		{"rgba fill", New("a", KindRectangle, 0, 0, 10, 10, Properties{Fill: "rgba(0, 0, 0, 0.5)"}), ""},
		{"bad kind", Layer{Kind: "circle", Properties: Properties{Opacity: 1}}, "type"},
		{"negative width", New("a", KindRectangle, 0, 0, -1, 10, Properties{}), "width"},
		{"bad color", New("a", KindText, 0, 0, 10, 10, Properties{Fill: "#GGGGGG"}), "fill"},
		{"opacity range", New("a", KindText, 0, 0, 10, 10, Properties{Opacity: 2}), "opacity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layer.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateLayersReportsIndex(t *testing.T) {
	ls := []Layer{
		New("ok", KindText, 0, 0, 10, 10, Properties{}),
		New("broken", KindText, 0, 0, -5, 10, Properties{}),
	}
	err := ValidateLayers(ls)
	if err == nil || !strings.Contains(err.Error(), `layer 1 ("broken")`) {
		t.Errorf("ValidateLayers() = %v", err)
	}
}
