package imageanalysis

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutfix/pkg/layer"
)

// StackSpacing separates layers moved into the same safe zone.
const StackSpacing = 16

// Stacker hands out Y positions inside safe zones so layers moved into the
// same zone stack instead of landing on each other.
type Stacker struct {
	next map[string]float64
}

// NewStacker returns an empty Stacker.
func NewStacker() *Stacker {
	return &Stacker{next: map[string]float64{}}
}

// Place returns the Y for a layer of height h in zone z and reserves the
// space below it.
func (s *Stacker) Place(z Zone, h float64) float64 {
	key := z.Position
	if key == "" {
		key = "default"
	}
	y, ok := s.next[key]
	if !ok {
		y = z.Y
	}
	s.next[key] = y + h + StackSpacing
	return y
}

// Adjuster moves text that sits on a busy region of the photo into a safe
// zone.
type Adjuster struct {
	logger *log.Logger
}

// NewAdjuster returns an Adjuster. A nil logger discards output.
func NewAdjuster(logger *log.Logger) *Adjuster {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Adjuster{logger: logger}
}

// Adjust relocates text layers that overlap the photo and one of its busy
// zones into the safe zone matching the suggested text position, or the
// first safe zone. Text outside the photo, and every layer when the
// analysis did not succeed, is left alone. Zones are compared in canvas
// coordinates as reported.
func (a *Adjuster) Adjust(ls []layer.Layer, an Analysis) []layer.Layer {
	out := layer.CloneAll(ls)
	if !an.Success {
		return out
	}
	photo, ok := FindPhoto(ls)
	if !ok {
		a.logger.Debug("no photo layer, skipping analysis adjustments")
		return out
	}
	pos := an.SuggestedTextPosition
	if pos == "" {
		pos = "bottom"
	}
	target, ok := pickZone(an.SafeZones, pos)
	if !ok {
		return out
	}

	st := NewStacker()
	for i, l := range out {
		if !l.IsText() || !l.Rect().Overlaps(photo.Rect()) {
			continue
		}
		if !OverlapsAny(l.Rect(), an.BusyZones) {
			continue
		}
		l.Y = st.Place(target, l.Height)
		l.X = target.X + float64(int((target.Width-l.Width)/2))
		if l.Width > target.Width {
			l.Width = target.Width
		}
		a.logger.Info("moved layer to avoid busy zone", "layer", l.Name, "zone", target.Position, "x", l.X, "y", l.Y)
		out[i] = l
	}
	return out
}

func pickZone(zones []Zone, position string) (Zone, bool) {
	for _, z := range zones {
		if strings.Contains(z.Position, position) {
			return z, true
		}
	}
	if len(zones) > 0 {
		return zones[0], true
	}
	return Zone{}, false
}
