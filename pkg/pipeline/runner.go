package pipeline

import (
	"context"
	"io"
	"reflect"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/layoutfix/pkg/archetype"
	"github.com/matzehuels/layoutfix/pkg/cache"
	"github.com/matzehuels/layoutfix/pkg/correction"
	"github.com/matzehuels/layoutfix/pkg/critic"
	"github.com/matzehuels/layoutfix/pkg/errors"
	"github.com/matzehuels/layoutfix/pkg/imageanalysis"
	"github.com/matzehuels/layoutfix/pkg/layer"
)

// Analyzer produces an image analysis for an image URL at a target size.
// [imageanalysis.Client] implements it.
type Analyzer interface {
	Analyze(ctx context.Context, imageURL string, width, height int, refresh bool) (imageanalysis.Analysis, error)
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, the archetype history and
// the logger: it doesn't store pipeline results. Multiple goroutines can
// safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	catalog     archetype.Catalog
	history     *archetype.History
	analyzer    Analyzer
	correctCfg  correction.Config
	correctOpts []correction.Option
	critic      *critic.Critic
	ttl         time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithAnalyzer sets the image analysis provider used when a run has an
// ImageURL but no analysis.
func WithAnalyzer(a Analyzer) RunnerOption {
	return func(r *Runner) { r.analyzer = a }
}

// WithCorrection sets the orchestrator configuration and any extra
// orchestrator options (tokens, presets).
func WithCorrection(cfg correction.Config, opts ...correction.Option) RunnerOption {
	return func(r *Runner) {
		r.correctCfg = cfg
		r.correctOpts = opts
	}
}

// WithCritic replaces the default critic.
func WithCritic(c *critic.Critic) RunnerOption {
	return func(r *Runner) {
		if c != nil {
			r.critic = c
		}
	}
}

// WithCatalog replaces the default archetype catalog.
func WithCatalog(c archetype.Catalog) RunnerOption {
	return func(r *Runner) { r.catalog = c }
}

// WithHistory replaces the cache-backed archetype history.
func WithHistory(h *archetype.History) RunnerOption {
	return func(r *Runner) { r.history = h }
}

// WithCorrectionTTL sets how long corrected layouts are cached.
func WithCorrectionTTL(ttl time.Duration) RunnerOption {
	return func(r *Runner) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, opts ...RunnerOption) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	r := &Runner{
		Cache:      c,
		Keyer:      keyer,
		Logger:     logger,
		catalog:    archetype.DefaultCatalog(),
		correctCfg: correction.DefaultConfig(),
		ttl:        DefaultCorrectionTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.history == nil {
		r.history = archetype.NewHistory(c, keyer, archetype.WithLogger(logger))
	}
	if r.critic == nil {
		r.critic = critic.New(critic.WithLogger(logger))
	}
	return r
}

// Execute runs analysis → archetype → correct → critique → revise for one
// layout. Errors are returned only for invalid input and cancellation; a
// NEEDS_REVISION verdict is a normal result.
func (r *Runner) Execute(ctx context.Context, layers []layer.Layer, an *imageanalysis.Analysis, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	for i, l := range layers {
		if err := l.Validate(); err != nil {
			return nil, errors.InvalidLayer(i, l.Name, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])

	analysis, err := r.resolveAnalysis(ctx, an, opts)
	if err != nil {
		return nil, err
	}
	result.Analysis = analysis

	result.Archetype = r.selectArchetype(ctx, analysis, opts)
	logger.Debug("selected archetype", "archetype", result.Archetype, "brand", opts.Brand)
	if opts.ApplyArchetype {
		arch := r.catalog.Get(result.Archetype)
		layers = arch.Constrain(layers, int(opts.Width), int(opts.Height))
	}

	// Stage 1: Correct
	correctStart := time.Now()
	corrected, hit := r.CorrectWithCacheInfo(ctx, layers, analysis, opts)
	result.Layers = corrected.Layers
	result.Corrections = corrected.Corrections
	result.Stats.CorrectTime = time.Since(correctStart)
	result.CacheInfo.CorrectHit = hit

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Critique, then revise
	critiqueStart := time.Now()
	var crit critic.Result
	result.Layers, crit, result.Revisions = r.revise(ctx, result.Layers, analysis, opts)
	result.Critique = crit
	result.Stats.CritiqueTime = time.Since(critiqueStart)
	result.Stats.Layers = len(result.Layers)

	logger.Info("pipeline complete",
		"archetype", result.Archetype,
		"corrections", len(result.Corrections),
		"score", crit.TotalScore,
		"verdict", crit.Verdict,
		"revisions", result.Revisions,
		"cached", hit)
	return result, nil
}

// revise critiques ls and applies the critic's fixes until the layout is
// approved, a round changes nothing, or opts.MaxRevisions rounds ran.
func (r *Runner) revise(ctx context.Context, ls []layer.Layer, an imageanalysis.Analysis, opts Options) ([]layer.Layer, critic.Result, int) {
	logger := opts.Logger
	crit := r.critic.Critique(ctx, ls, an, opts.Width, opts.Height)
	revisions := 0
	for revisions < opts.MaxRevisions && !crit.Passed {
		fixed := r.critic.ApplyFixes(ls, crit)
		if reflect.DeepEqual(fixed, ls) {
			logger.Debug("no applicable critic fixes", "issues", len(crit.Issues))
			break
		}
		ls = fixed
		revisions++
		crit = r.critic.Critique(ctx, ls, an, opts.Width, opts.Height)
		logger.Debug("revised layout", "revision", revisions, "score", crit.TotalScore, "verdict", crit.Verdict)
	}
	return ls, crit, revisions
}

// CorrectWithCacheInfo runs the orchestrator with caching and reports
// whether the result came from the cache. Cache failures degrade to a fresh
// correction.
func (r *Runner) CorrectWithCacheInfo(ctx context.Context, layers []layer.Layer, an imageanalysis.Analysis, opts Options) (correction.Result, bool) {
	key, ok := r.correctionKey(layers, an, opts)
	if ok && !opts.Refresh {
		var cached correction.Result
		if hit, err := cache.GetJSON(ctx, r.Cache, key, &cached); err == nil && hit {
			return cached, true
		}
	}

	res := r.corrector(opts).Correct(ctx, layers, an, opts.Width, opts.Height)

	if ok {
		if err := cache.SetJSON(ctx, r.Cache, key, res, r.ttl); err != nil {
			opts.Logger.Debug("cache correction", "err", err)
		}
	}
	return res, false
}

// Correct is a convenience wrapper that discards the cache hit info.
func (r *Runner) Correct(ctx context.Context, layers []layer.Layer, an imageanalysis.Analysis, opts Options) (correction.Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return correction.Result{}, err
	}
	res, _ := r.CorrectWithCacheInfo(ctx, layers, an, opts)
	return res, nil
}

// Critique scores a layout without correcting it.
func (r *Runner) Critique(ctx context.Context, layers []layer.Layer, an imageanalysis.Analysis, opts Options) (critic.Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return critic.Result{}, err
	}
	return r.critic.Critique(ctx, layers, an, opts.Width, opts.Height), nil
}

// SelectArchetype picks an archetype for the focal point, recording the
// choice in the brand history.
func (r *Runner) SelectArchetype(ctx context.Context, an imageanalysis.Analysis, opts Options) string {
	return r.selectArchetype(ctx, an, opts)
}

// Catalog returns the archetype catalog.
func (r *Runner) Catalog() archetype.Catalog { return r.catalog }

// History returns the archetype history.
func (r *Runner) History() *archetype.History { return r.history }

func (r *Runner) selectArchetype(ctx context.Context, an imageanalysis.Analysis, opts Options) string {
	focal := an.Focal()
	if len(opts.RecentArchetypes) > 0 {
		return r.catalog.Select(focal, opts.RecentArchetypes)
	}
	return r.history.SelectFor(ctx, r.catalog, opts.Brand, focal)
}

func (r *Runner) resolveAnalysis(ctx context.Context, an *imageanalysis.Analysis, opts Options) (imageanalysis.Analysis, error) {
	if an != nil {
		return *an, nil
	}
	if opts.ImageURL == "" || r.analyzer == nil {
		return imageanalysis.Default(), nil
	}
	a, err := r.analyzer.Analyze(ctx, opts.ImageURL, int(opts.Width), int(opts.Height), opts.Refresh)
	if err != nil {
		return imageanalysis.Analysis{}, err
	}
	return a, nil
}

func (r *Runner) corrector(opts Options) *correction.Corrector {
	cfg := r.correctCfg
	cfg.ValidateFirst = cfg.ValidateFirst || opts.Validate
	copts := append([]correction.Option{
		correction.WithConfig(cfg),
		correction.WithLogger(opts.Logger),
	}, r.correctOpts...)
	return correction.New(copts...)
}

func (r *Runner) correctionKey(layers []layer.Layer, an imageanalysis.Analysis, opts Options) (string, bool) {
	draft, err := cache.HashJSON(layers)
	if err != nil {
		return "", false
	}
	analysis, err := cache.HashJSON(an)
	if err != nil {
		return "", false
	}
	kopts := opts.CorrectionKeyOpts(analysis)
	kopts.Validate = kopts.Validate || r.correctCfg.ValidateFirst
	return r.Keyer.CorrectionKey(draft, kopts), true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
