package tokens

// Margins are per-side safe margins in pixels.
type Margins struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Area is a rectangle in whole pixels.
type Area struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SafeMargin returns max(MinMargin, SafeMarginRatio × dim) for one dimension.
// On a canvas too small for two minimum margins only the ratio applies.
func (t Tokens) SafeMargin(dim int) int {
	ratio := int(float64(dim) * t.SafeMarginRatio)
	if m := max(t.MinMargin, ratio); 2*m < dim {
		return m
	}
	return ratio
}

// SafeMargins applies the 80% rule to a canvas: each side gets 10% of its
// dimension, but never less than the minimum margin.
func (t Tokens) SafeMargins(width, height int) Margins {
	h, v := t.SafeMargin(width), t.SafeMargin(height)
	return Margins{Left: h, Right: h, Top: v, Bottom: v}
}

// UsableArea returns the canvas area inside the safe margins.
func (t Tokens) UsableArea(width, height int) Area {
	m := t.SafeMargins(width, height)
	return Area{
		X:      m.Left,
		Y:      m.Top,
		Width:  width - m.Left - m.Right,
		Height: height - m.Top - m.Bottom,
	}
}
