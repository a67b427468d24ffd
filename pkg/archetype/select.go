package archetype

import "slices"

// Focal is a normalized focal point, both coordinates in [0, 1].
type Focal struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CenterFocal is used when no focal point is known.
var CenterFocal = Focal{X: 0.5, Y: 0.5}

// Scoring weights for Select.
const (
	BaseScore      = 100.0
	RecentPenalty  = 50.0
	InRangeBonus   = 30.0
	DistanceFactor = 40.0
)

// Score is the selection score of one archetype.
type Score struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Scores rates every archetype for a focal point: 100 base, minus 50 when
// recently used, and per axis with an ideal range +30 inside it or
// -40 × distance to the nearer bound outside it. The result keeps catalog
// order.
func (c Catalog) Scores(focal Focal, recent []string) []Score {
	out := make([]Score, 0, len(c.items))
	for _, a := range c.items {
		s := BaseScore
		if slices.Contains(recent, a.Name) {
			s -= RecentPenalty
		}
		s += axisScore(a.IdealFocalX, focal.X)
		s += axisScore(a.IdealFocalY, focal.Y)
		out = append(out, Score{Name: a.Name, Score: s})
	}
	return out
}

func axisScore(r *Range, v float64) float64 {
	if r == nil {
		return 0
	}
	if r.Contains(v) {
		return InRangeBonus
	}
	return -r.Distance(v) * DistanceFactor
}

// Select returns the highest-scoring archetype name. Ties go to the earlier
// catalog entry. An empty catalog returns the fallback name.
func (c Catalog) Select(focal Focal, recent []string) string {
	best, bestScore := Fallback, 0.0
	for i, s := range c.Scores(focal, recent) {
		if i == 0 || s.Score > bestScore {
			best, bestScore = s.Name, s.Score
		}
	}
	return best
}

// Ranked returns the scores sorted best first, ties in catalog order.
func (c Catalog) Ranked(focal Focal, recent []string) []Score {
	scores := c.Scores(focal, recent)
	slices.SortStableFunc(scores, func(a, b Score) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return scores
}

// SelectArchetype picks from the default catalog.
func SelectArchetype(focal Focal, recent []string) string {
	return DefaultCatalog().Select(focal, recent)
}
