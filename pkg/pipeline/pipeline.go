// Package pipeline runs the layoutfix correction pipeline end to end.
//
// This package composes the library stages into the flow used by the CLI,
// the HTTP API and batch jobs, so every entry point behaves the same:
//
//  1. Analysis: use the caller's image analysis, ask the provider for one, or
//     fall back to the documented default
//  2. Archetype: pick a composition archetype from the focal point and the
//     brand's recently used archetypes
//  3. Correct: run the self-correction orchestrator (cached by content hash)
//  4. Critique: score the result, and while the verdict is NEEDS_REVISION
//     apply the critic's targeted fixes and score again, up to MaxRevisions
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	defer runner.Close()
//
//	doc, err := pipeline.ReadDocument("draft.json")
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, doc.Layers, doc.Analysis, pipeline.Options{
//	    Width:  doc.Canvas.Width,
//	    Height: doc.Canvas.Height,
//	    Brand:  "acme",
//	})
//
// Batches of drafts run concurrently with [Runner.Batch].
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutfix/pkg/cache"
	"github.com/matzehuels/layoutfix/pkg/correction"
	"github.com/matzehuels/layoutfix/pkg/critic"
	"github.com/matzehuels/layoutfix/pkg/errors"
	"github.com/matzehuels/layoutfix/pkg/imageanalysis"
	"github.com/matzehuels/layoutfix/pkg/layer"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Batch
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 1080.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 1080.0

	// DefaultMaxRevisions is how many critic fix rounds run when the first
	// critique does not pass.
	DefaultMaxRevisions = 1

	// MaxRevisionsLimit bounds MaxRevisions. ApplyFixes converges after one
	// or two rounds, so more is never useful.
	MaxRevisionsLimit = 5

	// DefaultConcurrency is the default number of concurrent batch jobs.
	DefaultConcurrency = 4

	// DefaultCorrectionTTL is how long corrected layouts stay cached.
	DefaultCorrectionTTL = 24 * time.Hour
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains the per-run configuration. This struct supports JSON
// serialization for API requests.
type Options struct {
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// RecentArchetypes overrides the brand history for archetype selection.
	RecentArchetypes []string `json:"recent_archetypes,omitempty"`
	// Brand keys the archetype history.
	Brand string `json:"brand,omitempty"`
	// ApplyArchetype fits headline, subtext, CTA and photo into the selected
	// archetype's zones before correction.
	ApplyArchetype bool `json:"apply_archetype,omitempty"`

	// ImageURL is analyzed when the caller supplies no analysis.
	ImageURL string `json:"image_url,omitempty"`

	// Validate runs the template validator pass before correction.
	Validate bool `json:"validate,omitempty"`
	// MaxRevisions is the number of critic fix rounds. Zero means
	// DefaultMaxRevisions; a negative value disables revision.
	MaxRevisions int `json:"max_revisions,omitempty"`
	// Refresh bypasses cached analysis and correction results.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks the canvas and image URL and applies
// defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if err := errors.ValidateCanvas(o.Width, o.Height); err != nil {
		return err
	}
	if o.ImageURL != "" {
		if err := errors.ValidateURL(o.ImageURL); err != nil {
			return err
		}
	}
	switch {
	case o.MaxRevisions == 0:
		o.MaxRevisions = DefaultMaxRevisions
	case o.MaxRevisions < 0:
		o.MaxRevisions = 0
	case o.MaxRevisions > MaxRevisionsLimit:
		return errors.New(errors.ErrCodeInvalidInput, "max_revisions %d exceeds %d", o.MaxRevisions, MaxRevisionsLimit)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// CorrectionKeyOpts returns cache key options for the correction stage.
func (o *Options) CorrectionKeyOpts(analysisHash string) cache.CorrectionKeyOpts {
	return cache.CorrectionKeyOpts{
		Width:        int(o.Width),
		Height:       int(o.Height),
		Validate:     o.Validate,
		AnalysisHash: analysisHash,
		Version:      correctionVersion,
	}
}

// correctionVersion changes whenever the orchestrator's step list changes,
// so stale cached corrections are not served.
var correctionVersion = func() string {
	names := correction.New(correction.WithConfig(correction.Config{ValidateFirst: true})).Steps()
	data := []byte{}
	for _, n := range names {
		data = append(data, n...)
		data = append(data, ',')
	}
	return cache.Hash(data)[:12]
}()

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string `json:"run_id"`

	// Archetype is the selected composition archetype.
	Archetype string `json:"archetype"`

	// Analysis is the image analysis the run used.
	Analysis imageanalysis.Analysis `json:"analysis"`

	// Layers is the final layout after correction and revisions.
	Layers []layer.Layer `json:"layers"`

	// Corrections lists what the orchestrator changed.
	Corrections []correction.Record `json:"corrections"`

	// Critique is the verdict on the final layout.
	Critique critic.Result `json:"critique"`

	// Revisions counts the critic fix rounds that were applied.
	Revisions int `json:"revisions"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache_info"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Layers       int           `json:"layers"`
	CorrectTime  time.Duration `json:"correct_time"`
	CritiqueTime time.Duration `json:"critique_time"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	CorrectHit bool `json:"correct_hit"` // Whether the correction came from cache
}
