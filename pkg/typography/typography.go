// Package typography enforces the size hierarchy between headline, subtext
// and call-to-action text.
//
// The rule is headline > subtext >= cta. [Validator.Fix] grows undersized
// roles toward a 3.5× headline-to-subtext ratio, caps the headline so it
// does not swamp the composition, and snaps results onto the token font
// scale. [VisualWeight] scores the linear size distribution against a
// 70/20/10 target.
package typography

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutfix/pkg/layer"
	"github.com/matzehuels/layoutfix/pkg/tokens"
)

// Hierarchy defaults.
const (
	HeadlineToSubtextRatio = 3.5
	SubtextToCTARatio      = 1.25
	CappedSubtextRatio     = 3.0
	MaxHeadlineSize        = 61

	// Sizes assumed for roles missing from a layout.
	FallbackCTASize      = 16
	FallbackSubtextSize  = 20
	FallbackHeadlineSize = 48
)

// Validator checks and repairs the font-size hierarchy.
type Validator struct {
	tokens      tokens.Tokens
	ratio       float64
	maxHeadline int
	logger      *log.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger for applied fixes.
func WithLogger(l *log.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithMaxHeadline overrides the headline size cap.
func WithMaxHeadline(px int) Option {
	return func(v *Validator) {
		if px > 0 {
			v.maxHeadline = px
		}
	}
}

// New returns a Validator snapping onto the font scale of t.
func New(t tokens.Tokens, opts ...Option) *Validator {
	v := &Validator{
		tokens:      t,
		ratio:       HeadlineToSubtextRatio,
		maxHeadline: MaxHeadlineSize,
		logger:      log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Fix is a suggested property change attached to an [Issue].
type Fix struct {
	Layer     string `json:"layer"`
	Property  string `json:"property"`
	Suggested int    `json:"suggested"`
}

// Issue is a hierarchy violation.
type Issue struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Fix     Fix    `json:"fix"`
}

// Roles holds the text layers that carry each hierarchy role. A nil entry
// means the role is absent.
type Roles struct {
	Headline *layer.Layer
	Subtext  *layer.Layer
	CTA      *layer.Layer
}

// FindRoles picks the first text layer of each role. When no layer is a
// headline by role, the text layer with the largest font size stands in.
func FindRoles(ls []layer.Layer) Roles {
	var r Roles
	for i := range ls {
		l := &ls[i]
		if !l.IsText() {
			continue
		}
		switch {
		case l.Role == layer.RoleHeadline && r.Headline == nil:
			r.Headline = l
		case l.Role == layer.RoleSubtext && r.Subtext == nil:
			r.Subtext = l
		case l.Role == layer.RoleCTA && r.CTA == nil:
			r.CTA = l
		}
	}
	if r.Headline == nil {
		r.Headline = largestText(ls)
	}
	return r
}

func largestText(ls []layer.Layer) *layer.Layer {
	var best *layer.Layer
	size := 0.0
	for i := range ls {
		if ls[i].IsText() && ls[i].Properties.FontSize > size {
			best, size = &ls[i], ls[i].Properties.FontSize
		}
	}
	return best
}

func sizeOf(l *layer.Layer, fallback float64) float64 {
	if l == nil {
		return fallback
	}
	return l.Properties.FontSize
}

// Validate reports hierarchy violations without modifying ls.
func (v *Validator) Validate(ls []layer.Layer) []Issue {
	r := FindRoles(ls)
	v.logger.Debug("validating hierarchy",
		"headline", sizeOf(r.Headline, 0), "subtext", sizeOf(r.Subtext, 0), "cta", sizeOf(r.CTA, 0))

	var issues []Issue
	if r.Headline != nil && r.Subtext != nil {
		h, s := r.Headline.Properties.FontSize, r.Subtext.Properties.FontSize
		if h <= s {
			issues = append(issues, Issue{
				Type:    "hierarchy_violation",
				Message: fmt.Sprintf("Headline (%gpx) must be larger than subtext (%gpx)", h, s),
				Fix:     Fix{Layer: r.Headline.Name, Property: "fontSize", Suggested: int(s * v.ratio)},
			})
		}
	}
	if r.Subtext != nil && r.CTA != nil {
		s, c := r.Subtext.Properties.FontSize, r.CTA.Properties.FontSize
		if s < c {
			issues = append(issues, Issue{
				Type:    "hierarchy_violation",
				Message: fmt.Sprintf("Subtext (%gpx) should be at least equal to CTA (%gpx)", s, c),
				Fix:     Fix{Layer: r.Subtext.Name, Property: "fontSize", Suggested: int(c)},
			})
		}
	}
	return issues
}

// IdealSizes computes the target headline and subtext sizes for a layout,
// already snapped to the font scale.
func (v *Validator) IdealSizes(ls []layer.Layer) (headline, subtext int) {
	r := FindRoles(ls)
	cta := sizeOf(r.CTA, FallbackCTASize)
	sub := sizeOf(r.Subtext, FallbackSubtextSize)
	head := sizeOf(r.Headline, FallbackHeadlineSize)

	idealSub := math.Max(sub, float64(int(cta*SubtextToCTARatio)))
	idealHead := math.Max(head, float64(int(idealSub*v.ratio)))
	if idealHead > float64(v.maxHeadline) {
		v.logger.Debug("capping headline", "calculated", idealHead, "cap", v.maxHeadline)
		idealHead = float64(v.maxHeadline)
		idealSub = math.Max(sub, float64(int(idealHead/CappedSubtextRatio)))
	}
	return v.tokens.SnapFontSize(idealHead), v.tokens.SnapFontSize(idealSub)
}

// Fix raises undersized headline and subtext layers to their ideal sizes
// and caps oversized headlines. It returns the repaired copy and a
// description of each change.
func (v *Validator) Fix(ls []layer.Layer) ([]layer.Layer, []string) {
	idealHead, idealSub := v.IdealSizes(ls)
	out := layer.CloneAll(ls)
	var fixes []string
	for i := range out {
		l := &out[i]
		if !l.IsText() {
			continue
		}
		fs := l.Properties.FontSize
		switch l.Role {
		case layer.RoleHeadline:
			if fs < float64(idealHead) {
				l.Properties.FontSize = float64(idealHead)
				fixes = append(fixes, fmt.Sprintf("Fixed headline size to %dpx (was too small)", idealHead))
			} else if fs > float64(v.maxHeadline) {
				capped := v.tokens.SnapFontSize(float64(v.maxHeadline))
				l.Properties.FontSize = float64(capped)
				fixes = append(fixes, fmt.Sprintf("Capped headline size to %dpx (was %gpx - too dominant)", capped, fs))
			}
		case layer.RoleSubtext:
			if fs < float64(idealSub) {
				l.Properties.FontSize = float64(idealSub)
				fixes = append(fixes, fmt.Sprintf("Fixed subtext size to %dpx", idealSub))
			}
		}
	}
	if len(fixes) > 0 {
		v.logger.Info("typography hierarchy fixed", "fixes", len(fixes), "headline", idealHead, "subtext", idealSub)
	}
	return out, fixes
}

// Sizes is a recommended size set for the three roles.
type Sizes struct {
	Headline int `json:"headline"`
	Subtext  int `json:"subtext"`
	CTA      int `json:"cta"`
}

// RecommendedSizes derives subtext and headline sizes from a CTA size.
func (v *Validator) RecommendedSizes(cta int) Sizes {
	if cta <= 0 {
		cta = FallbackCTASize
	}
	return Sizes{
		CTA:      cta,
		Subtext:  int(float64(cta) * SubtextToCTARatio),
		Headline: int(float64(cta) * SubtextToCTARatio * v.ratio),
	}
}
