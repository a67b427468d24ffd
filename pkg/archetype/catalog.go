package archetype

import (
	"slices"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

// Archetype names.
const (
	HeroLeft        = "hero_left"
	HeroRight       = "hero_right"
	SplitContent    = "split_content"
	SplitDiagonal   = "split_diagonal"
	BottomFocus     = "bottom_focus"
	CenteredMinimal = "centered_minimal"
)

// Fallback is returned by Get for unknown names.
const Fallback = CenteredMinimal

// Catalog is an ordered, read-only list of archetypes. Order matters: it
// breaks ties during selection.
type Catalog struct {
	items []Archetype
}

// NewCatalog builds a catalog from archetypes in priority order.
func NewCatalog(items ...Archetype) Catalog {
	return Catalog{items: slices.Clone(items)}
}

// DefaultCatalog returns the six standard archetypes.
func DefaultCatalog() Catalog {
	return NewCatalog(
		Archetype{
			Name:          HeroLeft,
			Title:         "Hero Left",
			Description:   "Text in left column (40%), photo on right (60%)",
			TextZone:      layer.Rect{X: 80, Y: 200, Width: 400, Height: 680},
			PhotoZone:     layer.Rect{X: 480, Y: 0, Width: 600, Height: 1080},
			CTAPosition:   BottomLeft,
			HeadlineAlign: "left",
			IdealFocalX:   &Range{0.6, 1.0},
		},
		Archetype{
			Name:          HeroRight,
			Title:         "Hero Right",
			Description:   "Photo on left (60%), text in right column (40%)",
			TextZone:      layer.Rect{X: 600, Y: 200, Width: 400, Height: 680},
			PhotoZone:     layer.Rect{X: 0, Y: 0, Width: 600, Height: 1080},
			CTAPosition:   BottomRight,
			HeadlineAlign: "left",
			IdealFocalX:   &Range{0.0, 0.4},
		},
		Archetype{
			Name:           SplitContent,
			Title:          "Split Content",
			Description:    "Clean 50/50 split, photo left, solid color right with no text on the photo",
			TextZone:       layer.Rect{X: 580, Y: 200, Width: 420, Height: 680},
			PhotoZone:      layer.Rect{X: 0, Y: 0, Width: 540, Height: 1080},
			BackgroundZone: &layer.Rect{X: 540, Y: 0, Width: 540, Height: 1080},
			CTAPosition:    BottomRight,
			HeadlineAlign:  "left",
			IdealFocalX:    &Range{0.0, 0.5},
			NoTextOnPhoto:  true,
		},
		Archetype{
			Name:            SplitDiagonal,
			Title:           "Split Diagonal",
			Description:     "Diagonal split, photo top-left, color bottom-right",
			TextZone:        layer.Rect{X: 400, Y: 500, Width: 600, Height: 500},
			PhotoZone:       layer.Rect{X: 0, Y: 0, Width: 800, Height: 700},
			CTAPosition:     BottomCenter,
			HeadlineAlign:   "left",
			IdealFocalX:     &Range{0.2, 0.6},
			OverlayRequired: true,
		},
		Archetype{
			Name:          BottomFocus,
			Title:         "Bottom Focus",
			Description:   "Photo full width top (60%), colored block with text at bottom (40%)",
			TextZone:      layer.Rect{X: 80, Y: 700, Width: 920, Height: 300},
			PhotoZone:     layer.Rect{X: 0, Y: 0, Width: 1080, Height: 650},
			CTAPosition:   BottomCenter,
			HeadlineAlign: "center",
			IdealFocalY:   &Range{0.0, 0.5},
		},
		Archetype{
			Name:            CenteredMinimal,
			Title:           "Centered Minimal",
			Description:     "Full-bleed photo with overlay, centered text",
			TextZone:        layer.Rect{X: 140, Y: 300, Width: 800, Height: 480},
			PhotoZone:       layer.Rect{X: 0, Y: 0, Width: 1080, Height: 1080},
			CTAPosition:     BottomCenter,
			HeadlineAlign:   "center",
			OverlayRequired: true,
			OverlayOpacity:  0.6,
		},
	)
}

// All returns a copy of the archetypes in catalog order.
func (c Catalog) All() []Archetype { return slices.Clone(c.items) }

// Names returns archetype names in catalog order.
func (c Catalog) Names() []string {
	out := make([]string, len(c.items))
	for i, a := range c.items {
		out[i] = a.Name
	}
	return out
}

// Lookup returns the named archetype and whether it exists.
func (c Catalog) Lookup(name string) (Archetype, bool) {
	for _, a := range c.items {
		if a.Name == name {
			return a, true
		}
	}
	return Archetype{}, false
}

// Get returns the named archetype, or the fallback archetype when the name
// is unknown.
func (c Catalog) Get(name string) Archetype {
	if a, ok := c.Lookup(name); ok {
		return a
	}
	a, _ := c.Lookup(Fallback)
	return a
}
