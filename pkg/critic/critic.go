// Package critic scores a finished layout against premium design criteria
// and decides whether it ships.
//
// Six criteria are scored from 0 to 100 and combined with fixed weights.
// Independent of the total, three hard gates must pass: the image-text
// integration score must reach its minimum, no issue may match a critical
// pattern, and at most one non-cosmetic issue may be reported.
//
// A rejected layout is a normal result, not an error. Callers decide whether
// to regenerate, patch with [Critic.ApplyFixes], or accept with warnings.
package critic

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/matzehuels/layoutfix/pkg/elevation"
	"github.com/matzehuels/layoutfix/pkg/imageanalysis"
	"github.com/matzehuels/layoutfix/pkg/layer"
	"github.com/matzehuels/layoutfix/pkg/observability"
)

// Criterion names a scored aspect of the layout.
type Criterion string

const (
	Typography   Criterion = "typography_hierarchy"
	Composition  Criterion = "composition_balance"
	ColorHarmony Criterion = "color_harmony"
	Depth        Criterion = "depth_and_shadow"
	Integration  Criterion = "image_text_integration"
	Aesthetic    Criterion = "aesthetic_quality"
)

// Criteria lists every criterion in scoring order.
func Criteria() []Criterion {
	return []Criterion{Typography, Composition, ColorHarmony, Depth, Integration, Aesthetic}
}

// Verdict is the outcome of a critique.
type Verdict string

const (
	Approved      Verdict = "APPROVED"
	NeedsRevision Verdict = "NEEDS_REVISION"
)

// =============================================================================
// Default Values - Single Source of Truth
// =============================================================================

const (
	DefaultMinimumScore            = 75.0
	DefaultMinimumIntegrationScore = 60.0
	DefaultMaximumCriticalIssues   = 1
	DefaultPremiumHeadlineSize     = 39.0
	DefaultMaxCoverage             = 0.7
)

// DefaultWeights returns the criterion weights. They sum to 1.
func DefaultWeights() map[Criterion]float64 {
	return map[Criterion]float64{
		Typography:   0.18,
		Composition:  0.22,
		ColorHarmony: 0.13,
		Depth:        0.12,
		Integration:  0.20,
		Aesthetic:    0.15,
	}
}

// DefaultCriticalPatterns are issue prefixes that fail a layout on their own.
func DefaultCriticalPatterns() []string {
	return []string{"integration:overlap", "color:contrast"}
}

// Config holds the thresholds of a Critic.
type Config struct {
	Weights                 map[Criterion]float64 `toml:"weights" yaml:"weights" json:"weights"`
	MinimumScore            float64               `toml:"minimum_score" yaml:"minimum_score" json:"minimum_score"`
	MinimumIntegrationScore float64               `toml:"minimum_integration_score" yaml:"minimum_integration_score" json:"minimum_integration_score"`
	MaximumCriticalIssues   int                   `toml:"maximum_critical_issues" yaml:"maximum_critical_issues" json:"maximum_critical_issues"`
	CriticalPatterns        []string              `toml:"critical_patterns" yaml:"critical_patterns" json:"critical_patterns"`
	PremiumHeadlineSize     float64               `toml:"premium_headline_size" yaml:"premium_headline_size" json:"premium_headline_size"`
	MaxCoverage             float64               `toml:"max_coverage" yaml:"max_coverage" json:"max_coverage"`
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		Weights:                 DefaultWeights(),
		MinimumScore:            DefaultMinimumScore,
		MinimumIntegrationScore: DefaultMinimumIntegrationScore,
		MaximumCriticalIssues:   DefaultMaximumCriticalIssues,
		CriticalPatterns:        DefaultCriticalPatterns(),
		PremiumHeadlineSize:     DefaultPremiumHeadlineSize,
		MaxCoverage:             DefaultMaxCoverage,
	}
}

// withDefaults fills zero fields from DefaultConfig. A zero
// MaximumCriticalIssues is a valid setting and is kept.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.Weights) == 0 {
		c.Weights = d.Weights
	}
	if c.MinimumScore == 0 {
		c.MinimumScore = d.MinimumScore
	}
	if c.MinimumIntegrationScore == 0 {
		c.MinimumIntegrationScore = d.MinimumIntegrationScore
	}
	if len(c.CriticalPatterns) == 0 {
		c.CriticalPatterns = d.CriticalPatterns
	}
	if c.PremiumHeadlineSize == 0 {
		c.PremiumHeadlineSize = d.PremiumHeadlineSize
	}
	if c.MaxCoverage == 0 {
		c.MaxCoverage = d.MaxCoverage
	}
	return c
}

// Result is the outcome of [Critic.Critique].
type Result struct {
	Passed       bool                  `json:"passed"`
	TotalScore   float64               `json:"total_score"`
	Scores       map[Criterion]float64 `json:"scores"`
	Issues       []string              `json:"issues"`
	GateFailures []string              `json:"gate_failures"`
	Suggestions  []string              `json:"suggestions"`
	Verdict      Verdict               `json:"verdict"`
}

// HasIssue reports whether any issue contains substr.
func (r Result) HasIssue(substr string) bool {
	for _, is := range r.Issues {
		if strings.Contains(is, substr) {
			return true
		}
	}
	return false
}

// Critic scores layouts. It is safe for concurrent use.
type Critic struct {
	cfg       Config
	shadows   elevation.Presets
	elevation *elevation.Elevator
	logger    *log.Logger
}

// Option configures a Critic.
type Option func(*Critic)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Critic) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConfig replaces the thresholds. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(c *Critic) { c.cfg = cfg.withDefaults() }
}

// WithElevationPresets sets the shadows [Critic.ApplyFixes] applies.
func WithElevationPresets(p elevation.Presets) Option {
	return func(c *Critic) { c.shadows = p }
}

// New returns a Critic with the default configuration.
func New(opts ...Option) *Critic {
	c := &Critic{
		cfg:     DefaultConfig(),
		shadows: elevation.DefaultPresets(),
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.elevation = elevation.New(c.shadows, c.logger)
	return c
}

// Config returns the active thresholds.
func (c *Critic) Config() Config { return c.cfg }

type evaluation struct {
	score  float64
	issues []string
}

// Critique scores ls on a width×height canvas. The analysis may be
// [imageanalysis.Default].
func (c *Critic) Critique(ctx context.Context, ls []layer.Layer, an imageanalysis.Analysis, width, height float64) Result {
	start := time.Now()
	ctx, end := observability.StartSpan(ctx, "critic.Critique", attribute.Int("layers", len(ls)))

	evals := map[Criterion]evaluation{
		Typography:   c.evaluateTypography(ls),
		Composition:  c.evaluateComposition(ls, width, height),
		ColorHarmony: c.evaluateColor(ls),
		Depth:        c.evaluateDepth(ls),
		Integration:  c.evaluateIntegration(ls, an, width, height),
		Aesthetic:    c.evaluateAesthetic(ls, width),
	}

	res := Result{Scores: make(map[Criterion]float64, len(evals)), Issues: []string{}}
	var total float64
	for _, cr := range Criteria() {
		e := evals[cr]
		res.Scores[cr] = e.score
		res.Issues = append(res.Issues, e.issues...)
		total += e.score * c.cfg.Weights[cr]
	}

	res.GateFailures = c.checkGates(res.Scores, res.Issues)
	res.Passed = len(res.GateFailures) == 0 && total >= c.cfg.MinimumScore
	res.TotalScore = math.Round(total*10) / 10
	res.Suggestions = Suggestions(res.Issues)
	res.Verdict = NeedsRevision
	if res.Passed {
		res.Verdict = Approved
	}

	d := time.Since(start)
	observability.Pipeline().OnCritiqueComplete(ctx, string(res.Verdict), res.TotalScore, d)
	end(nil)
	c.logger.Info("visual critic review",
		"verdict", res.Verdict,
		"score", res.TotalScore,
		"gate_failures", len(res.GateFailures),
		"issues", len(res.Issues))
	return res
}

// checkGates returns one entry per failed gate. Every issue matching a
// critical pattern is reported.
func (c *Critic) checkGates(scores map[Criterion]float64, issues []string) []string {
	failed := []string{}
	if s := scores[Integration]; s < c.cfg.MinimumIntegrationScore {
		failed = append(failed, fmt.Sprintf("integration_score:%g < %g", s, c.cfg.MinimumIntegrationScore))
	}
	for _, is := range issues {
		for _, p := range c.cfg.CriticalPatterns {
			if strings.Contains(is, p) {
				failed = append(failed, "critical_issue:"+p)
				break
			}
		}
	}
	if n := countNonCosmetic(issues); n > c.cfg.MaximumCriticalIssues {
		failed = append(failed, fmt.Sprintf("issue_count:%d > %d", n, c.cfg.MaximumCriticalIssues))
	}
	return failed
}

// countNonCosmetic counts issues that are neither aesthetic nor about
// missing analysis.
func countNonCosmetic(issues []string) int {
	n := 0
	for _, is := range issues {
		if !strings.Contains(is, "aesthetic:") && !strings.Contains(is, "analysis") {
			n++
		}
	}
	return n
}
