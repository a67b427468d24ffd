package typography

import (
	"math"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

// Target share of linear font size per role, in percent, with the allowed
// deviation either side.
const (
	TargetHeadline    = 70.0
	TargetSubtext     = 20.0
	TargetCTA         = 10.0
	HeadlineTolerance = 15.0
	SubtextTolerance  = 10.0
	CTATolerance      = 5.0
)

// Distribution is the percentage of total font size held by each role.
type Distribution struct {
	Headline float64 `json:"headline"`
	Subtext  float64 `json:"subtext"`
	CTA      float64 `json:"cta"`
}

// Weight is the outcome of [VisualWeight].
type Weight struct {
	Score        int          `json:"score"`
	Distribution Distribution `json:"distribution"`
	Valid        bool         `json:"valid"`

	HeadlineValid bool `json:"headline_valid"`
	SubtextValid  bool `json:"subtext_valid"`
	CTAValid      bool `json:"cta_valid"`
}

// VisualWeight scores how font size is shared between headline, subtext and
// CTA. Each band met adds 50, 30 and 20 points respectively. A layout with
// none of the three roles scores zero.
func VisualWeight(ls []layer.Layer) Weight {
	r := FindRoles(ls)
	h, s, c := sizeOf(r.Headline, 0), sizeOf(r.Subtext, 0), sizeOf(r.CTA, 0)
	total := h + s + c
	if total == 0 {
		return Weight{}
	}
	pct := func(v float64) float64 { return math.Round(v/total*1000) / 10 }
	d := Distribution{Headline: pct(h), Subtext: pct(s), CTA: pct(c)}

	w := Weight{
		Distribution:  d,
		HeadlineValid: math.Abs(d.Headline-TargetHeadline) <= HeadlineTolerance,
		SubtextValid:  math.Abs(d.Subtext-TargetSubtext) <= SubtextTolerance,
		CTAValid:      math.Abs(d.CTA-TargetCTA) <= CTATolerance,
	}
	if w.HeadlineValid {
		w.Score += 50
	}
	if w.SubtextValid {
		w.Score += 30
	}
	if w.CTAValid {
		w.Score += 20
	}
	w.Valid = w.HeadlineValid && w.SubtextValid && w.CTAValid
	return w
}
