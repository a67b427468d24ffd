package correction

import (
	"fmt"
	"strings"

	"github.com/matzehuels/layoutfix/pkg/imageanalysis"
	"github.com/matzehuels/layoutfix/pkg/layer"
)

// avoidBusyZones moves text that sits on a busy region of the photo into a
// safe zone. Busy zones arrive in analysis space and are scaled onto the
// photo first; safe zones are used as reported. Horizontal bounds use the
// safe margin of the analysis canvas.
func (c *Corrector) avoidBusyZones(r *run) {
	if len(r.analysis.BusyZones) == 0 {
		return
	}
	photo, ok := imageanalysis.FindPhoto(r.layers)
	if !ok {
		return
	}
	pr := photo.Rect()
	if ratio := imageanalysis.BusyRatio(r.analysis.BusyZones, pr); ratio > FullOverlayRatio {
		c.logger.Info("busy zones cover most of the photo, leaving text to the overlay", "ratio", ratio)
		r.record(Record{
			Type:   "full_overlay_mode",
			After:  ratio,
			Reason: fmt.Sprintf("busy zones cover %.0f%% of the photo", ratio*100),
		})
		return
	}

	busy := imageanalysis.ScaleToPhoto(r.analysis.BusyZones, pr)
	canvas := float64(imageanalysis.AnalysisSize)
	margin := float64(c.tokens.SafeMargin(imageanalysis.AnalysisSize))
	limit := canvas - margin

	st := imageanalysis.NewStacker()
	out := layer.CloneAll(r.layers)
	for i, l := range out {
		if !l.IsText() || !l.Rect().Overlaps(pr) || !imageanalysis.OverlapsAny(l.Rect(), busy) {
			continue
		}
		zone, ok := bestSafeZone(l, r.analysis.SafeZones)
		if !ok {
			break
		}
		before := l.Rect()
		l.Y = st.Place(zone, l.Height)
		if l.Width <= zone.Width {
			l.X = zone.X + float64(int((zone.Width-l.Width)/2))
		} else {
			l.X = margin
			l.Width = min(l.Width, canvas-2*margin)
		}
		if l.Right() > limit {
			l.X = limit - l.Width
		}
		l.X = max(margin, l.X)
		out[i] = l

		c.logger.Debug("moved text off busy zone", "layer", l.Name, "zone", zone.Position, "x", l.X, "y", l.Y)
		r.record(Record{
			Type:   "text_overlap",
			Layer:  l.Name,
			Before: before,
			After:  l.Rect(),
			Reason: "moved to " + zone.Position + " safe zone",
		})
	}
	r.layers = out
}

// bestSafeZone prefers a top zone for headlines and a bottom zone for CTAs.
// Everything else, and a role without its preferred zone, gets the darkest
// zone; a zone without brightness counts as fully bright.
func bestSafeZone(l layer.Layer, zones []imageanalysis.Zone) (imageanalysis.Zone, bool) {
	if len(zones) == 0 {
		return imageanalysis.Zone{}, false
	}
	var want string
	switch l.Role {
	case layer.RoleHeadline:
		want = "top"
	case layer.RoleCTA:
		want = "bottom"
	}
	if want != "" {
		for _, z := range zones {
			if strings.Contains(z.Position, want) {
				return z, true
			}
		}
	}
	best := zones[0]
	for _, z := range zones[1:] {
		if z.Luma() < best.Luma() {
			best = z
		}
	}
	return best, true
}
