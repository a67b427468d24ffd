package critic

import (
	"strings"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

// suggestion maps an issue substring to a remediation.
type suggestion struct {
	match []string
	text  string
}

var suggestions = []suggestion{
	{[]string{"modular scale"}, "Use font sizes from Major Third scale: 13, 16, 20, 25, 31, 39, 49, 61px"},
	{[]string{"Headline too small"}, "Increase headline to 39px or 49px for scroll-stopping impact"},
	{[]string{"crowded"}, "Remove decorative elements or increase margins to 80-100px"},
	{[]string{"No shadows"}, "Add subtle shadow to CTA button: blur 8px, opacity 12%"},
	{[]string{"focal point", "overlap"}, "Move text to safe zone or add semi-transparent overlay"},
	{[]string{"elevation", "CTA button lacks"}, "Apply elevation level 3 to CTA: shadowBlur=8, shadowOffsetY=4, shadowOpacity=0.12"},
	{[]string{"overlay for readability"}, "Add dark overlay (opacity 0.5-0.6) between image and text"},
	{[]string{"White text without"}, "Add dark background or overlay, or change text color to dark"},
}

// Suggestions returns the deduplicated remediations for issues in the
// order they first apply.
func Suggestions(issues []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, is := range issues {
		for _, s := range suggestions {
			if seen[s.text] || !containsAny(is, s.match) {
				continue
			}
			seen[s.text] = true
			out = append(out, s.text)
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ApplyFixes patches the issues of res that have a mechanical fix: a CTA
// without elevation gets the recommended shadows, and a small headline is
// raised to the premium size. The input is not modified.
func (c *Critic) ApplyFixes(ls []layer.Layer, res Result) []layer.Layer {
	out := layer.CloneAll(ls)
	if res.HasIssue("CTA button lacks elevation") {
		out = c.elevation.ApplyAll(out)
		c.logger.Debug("applied elevation from critique")
	}
	if res.HasIssue("Headline too small") {
		for i := range out {
			l := &out[i]
			if l.Kind == layer.KindText && l.Role == layer.RoleHeadline && fontSize(*l) < c.cfg.PremiumHeadlineSize {
				l.Properties.FontSize = c.cfg.PremiumHeadlineSize
				c.logger.Debug("raised headline from critique", "layer", l.Name, "size", c.cfg.PremiumHeadlineSize)
			}
		}
	}
	return out
}
