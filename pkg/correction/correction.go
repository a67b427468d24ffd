// Package correction runs the self-correction sequence over a layout.
//
// A [Corrector] applies a fixed list of steps, each consuming the layers the
// previous step produced:
//
//	height-calc → positioning → busy-zone avoidance → gradient overlay →
//	solid-overlay strip → typography → visual weight → contrast → grid →
//	tokens → margins → CTA prominence → CTA presence → soft glow →
//	positioning (second pass) → hard margins
//
// Every step works on a copy. A step that panics is logged at Warn level and
// rolled back, so Correct always returns a usable layout and never fails.
//
// Each change is reported as a [Record]. Records are informational and are
// not needed to reproduce the output.
package correction

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/matzehuels/layoutfix/pkg/elevation"
	"github.com/matzehuels/layoutfix/pkg/grid"
	"github.com/matzehuels/layoutfix/pkg/imageanalysis"
	"github.com/matzehuels/layoutfix/pkg/layer"
	"github.com/matzehuels/layoutfix/pkg/observability"
	"github.com/matzehuels/layoutfix/pkg/overlay"
	"github.com/matzehuels/layoutfix/pkg/positioning"
	"github.com/matzehuels/layoutfix/pkg/textopt"
	"github.com/matzehuels/layoutfix/pkg/tokens"
	"github.com/matzehuels/layoutfix/pkg/typography"
	"github.com/matzehuels/layoutfix/pkg/validator"
)

// Thresholds carried over unchanged from the production tuning.
const (
	// FullOverlayRatio is the busy-zone share of the photo above which text
	// is left in place and the gradient overlay carries legibility.
	FullOverlayRatio = 0.7

	// HeadlineDominance and SubtextFloor trigger the visual weight
	// rebalance: headline above 85% and subtext below 15% of the summed
	// font size.
	HeadlineDominance = 85.0
	SubtextFloor      = 15.0

	DefaultSoftGlowIntensity = 2
)

// Config holds the tunable parts of the sequence.
type Config struct {
	// SoftGlowIntensity is passed to the soft glow step (1-3).
	SoftGlowIntensity int `toml:"soft_glow_intensity" yaml:"soft_glow_intensity" json:"soft_glow_intensity"`

	// ValidateFirst runs the template validator, completeness check and
	// z-order sort before height calculation.
	ValidateFirst bool `toml:"validate_first" yaml:"validate_first" json:"validate_first"`
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{SoftGlowIntensity: DefaultSoftGlowIntensity}
}

// Record describes one correction. Before and After hold whatever the step
// changed: a rectangle, a size, a color or a count.
type Record struct {
	Type   string `json:"type"`
	Layer  string `json:"layer,omitempty"`
	Before any    `json:"before,omitempty"`
	After  any    `json:"after,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Result is the corrected layout and what was done to it.
type Result struct {
	Layers      []layer.Layer `json:"layers"`
	Corrections []Record      `json:"corrections"`
}

// Types reports the distinct correction types in the order they first
// appear.
func (r Result) Types() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range r.Corrections {
		if !seen[c.Type] {
			seen[c.Type] = true
			out = append(out, c.Type)
		}
	}
	return out
}

// Corrector runs the correction sequence. It holds only read-only
// configuration and is safe for concurrent use.
type Corrector struct {
	cfg      Config
	tokens   tokens.Tokens
	overlays overlay.Presets
	shadows  elevation.Presets
	logger   *log.Logger

	grid       grid.Grid
	text       *textopt.Optimizer
	overlay    *overlay.Overlayer
	typography *typography.Validator
	elevation  *elevation.Elevator
	validator  *validator.Validator
}

// Option configures a Corrector.
type Option func(*Corrector)

// WithLogger sets the logger shared by every step.
func WithLogger(l *log.Logger) Option {
	return func(c *Corrector) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConfig replaces the default configuration. A non-positive glow
// intensity keeps the default.
func WithConfig(cfg Config) Option {
	return func(c *Corrector) {
		if cfg.SoftGlowIntensity <= 0 {
			cfg.SoftGlowIntensity = DefaultSoftGlowIntensity
		}
		c.cfg = cfg
	}
}

// WithTokens sets the design tokens used for snapping and margins.
func WithTokens(t tokens.Tokens) Option {
	return func(c *Corrector) { c.tokens = t }
}

// WithOverlayPresets sets the gradient presets.
func WithOverlayPresets(p overlay.Presets) Option {
	return func(c *Corrector) {
		if len(p) > 0 {
			c.overlays = p
		}
	}
}

// WithElevationPresets sets the shadow presets.
func WithElevationPresets(p elevation.Presets) Option {
	return func(c *Corrector) { c.shadows = p }
}

// New returns a Corrector with default tokens, presets and configuration.
func New(opts ...Option) *Corrector {
	c := &Corrector{
		cfg:      DefaultConfig(),
		tokens:   tokens.Default(),
		overlays: overlay.DefaultPresets(),
		shadows:  elevation.DefaultPresets(),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.grid = grid.Default()
	c.text = textopt.New(c.logger)
	c.overlay = overlay.New(c.overlays, c.logger)
	c.typography = typography.New(c.tokens, typography.WithLogger(c.logger))
	c.elevation = elevation.New(c.shadows, c.logger)
	c.validator = validator.New(validator.WithLogger(c.logger))
	return c
}

// Config returns the active configuration.
func (c *Corrector) Config() Config { return c.cfg }

// run is the state threaded through the steps of one Correct call.
type run struct {
	layers   []layer.Layer
	analysis imageanalysis.Analysis
	width    float64
	height   float64
	records  []Record
}

func (r *run) record(rec Record) { r.records = append(r.records, rec) }

// positioner restacks text inside the safe margins of the run's canvas.
func (c *Corrector) positioner(r *run) *positioning.Positioner {
	return positioning.New(
		positioning.WithMargin(float64(c.tokens.SafeMargin(int(r.width)))),
		positioning.WithTopMargin(float64(c.tokens.SafeMargin(int(r.height)))),
		positioning.WithLogger(c.logger),
	)
}

type step struct {
	name string
	fn   func(*run)
}

func (c *Corrector) steps() []step {
	var s []step
	if c.cfg.ValidateFirst {
		s = append(s, step{"template_validation", c.validateTemplate})
	}
	return append(s,
		step{"text_height_calculation", c.calculateHeights},
		step{"text_positioning", c.positionText("text_positioning")},
		step{"busy_zone_avoidance", c.avoidBusyZones},
		step{"gradient_overlay", c.addGradient},
		step{"solid_overlay_strip", c.removeSolidOverlays},
		step{"typography_hierarchy", c.fixTypography},
		step{"visual_weight", c.balanceVisualWeight},
		step{"contrast", c.fixContrast},
		step{"grid_snap", c.snapGrid},
		step{"token_snap", c.snapTokens},
		step{"margins", c.fixMargins},
		step{"cta_prominence", c.ensureCTAProminent},
		step{"cta_presence", c.ensureCTA},
		step{"soft_glow", c.applySoftGlow},
		step{"final_text_positioning", c.positionText("final_text_positioning")},
		step{"hard_margins", c.enforceHardMargins},
	)
}

// Steps lists the step names in execution order.
func (c *Corrector) Steps() []string {
	s := c.steps()
	names := make([]string, len(s))
	for i, st := range s {
		names[i] = st.name
	}
	return names
}

// Correct runs the full sequence on a copy of ls. The analysis may be
// [imageanalysis.Default] when no provider result is available.
func (c *Corrector) Correct(ctx context.Context, ls []layer.Layer, an imageanalysis.Analysis, width, height float64) Result {
	start := time.Now()
	ctx, end := observability.StartSpan(ctx, "correction.Correct",
		attribute.Int("layers", len(ls)),
		attribute.Float64("width", width),
		attribute.Float64("height", height))
	observability.Pipeline().OnCorrectStart(ctx, len(ls))

	r := &run{layers: layer.CloneAll(ls), analysis: an, width: width, height: height}
	for _, s := range c.steps() {
		c.runStep(ctx, s, r)
	}

	d := time.Since(start)
	observability.Pipeline().OnCorrectComplete(ctx, len(r.records), d, nil)
	end(nil)
	c.logger.Info("corrected layout", "layers", len(r.layers), "corrections", len(r.records), "duration", d)
	return Result{Layers: r.layers, Corrections: r.records}
}

func (c *Corrector) runStep(ctx context.Context, s step, r *run) {
	start := time.Now()
	layers, n := r.layers, len(r.records)
	err := guard(func() { s.fn(r) })
	if err != nil {
		r.layers, r.records = layers, r.records[:n]
		c.logger.Warn("correction step skipped", "step", s.name, "err", err)
	}
	d := time.Since(start)
	c.logger.Debug("correction step", "step", s.name, "corrections", len(r.records)-n, "duration", d)
	observability.Pipeline().OnCorrectStep(ctx, s.name, d, err)
}

// guard turns a panic in fn into an error.
func guard(fn func()) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
		}
	}()
	fn()
	return nil
}
