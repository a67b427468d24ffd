package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/layoutfix/pkg/archetype"
	"github.com/matzehuels/layoutfix/pkg/cache"
	"github.com/matzehuels/layoutfix/pkg/critic"
	lferrors "github.com/matzehuels/layoutfix/pkg/errors"
	"github.com/matzehuels/layoutfix/pkg/imageanalysis"
	"github.com/matzehuels/layoutfix/pkg/layer"
)

func draft() []layer.Layer {
	return []layer.Layer{
		layer.New("background", layer.KindRectangle, 0, 0, 1080, 1080, layer.Properties{Fill: "#1E3A5F"}),
		layer.New("headline", layer.KindText, 100, 500, 700, 60, layer.Properties{Text: "Summer collection", FontSize: 49, Fill: "#FFFFFF"}),
		layer.New("subtext", layer.KindText, 100, 500, 700, 40, layer.Properties{Text: "New arrivals every week", FontSize: 20, Fill: "#CCCCCC"}),
	}
}

type stubAnalyzer struct {
	an    imageanalysis.Analysis
	err   error
	calls int
	w, h  int
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ string, w, h int, _ bool) (imageanalysis.Analysis, error) {
	s.calls++
	s.w, s.h = w, h
	return s.an, s.err
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		code    lferrors.Code
		wantRev int
	}{
		{name: "defaults", opts: Options{}, wantRev: DefaultMaxRevisions},
		{name: "revisions disabled", opts: Options{MaxRevisions: -1}, wantRev: 0},
		{name: "explicit revisions", opts: Options{MaxRevisions: 3}, wantRev: 3},
		{name: "too many revisions", opts: Options{MaxRevisions: 9}, code: lferrors.ErrCodeInvalidInput},
		{name: "negative canvas", opts: Options{Width: -5}, code: lferrors.ErrCodeInvalidCanvas},
		{name: "bad image url", opts: Options{ImageURL: "file:///etc/passwd"}, code: lferrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, lferrors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRev, opts.MaxRevisions)
			assert.NotNil(t, opts.Logger)
			if tt.opts.Width == 0 {
				assert.Equal(t, DefaultWidth, opts.Width)
				assert.Equal(t, DefaultHeight, opts.Height)
			}
			require.NoError(t, opts.ValidateAndSetDefaults(), "must be idempotent")
			assert.Equal(t, tt.wantRev, opts.MaxRevisions)
		})
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), draft(), nil, Options{})
	require.NoError(t, err)

	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err, "RunID should be a UUID")
	assert.Contains(t, r.Catalog().Names(), res.Archetype)
	assert.Equal(t, imageanalysis.Default(), res.Analysis)
	assert.NotEmpty(t, res.Corrections)
	assert.Contains(t, []critic.Verdict{critic.Approved, critic.NeedsRevision}, res.Critique.Verdict)
	assert.LessOrEqual(t, res.Revisions, DefaultMaxRevisions)
	assert.Equal(t, len(res.Layers), res.Stats.Layers)
	assert.False(t, res.CacheInfo.CorrectHit)

	var sawCTA bool
	for _, l := range res.Layers {
		if l.Name == "cta_button" {
			sawCTA = true
		}
	}
	assert.True(t, sawCTA, "missing CTA should be added")
}

func TestExecuteDoesNotMutateInput(t *testing.T) {
	in := draft()
	before := layer.CloneAll(in)
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), in, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, before, in)
}

func TestExecuteCachesCorrection(t *testing.T) {
	mem, err := cache.NewMemoryCache(32)
	require.NoError(t, err)
	r := NewRunner(mem, nil, nil)
	ctx := context.Background()

	first, err := r.Execute(ctx, draft(), nil, Options{})
	require.NoError(t, err)
	second, err := r.Execute(ctx, draft(), nil, Options{})
	require.NoError(t, err)

	assert.False(t, first.CacheInfo.CorrectHit)
	assert.True(t, second.CacheInfo.CorrectHit)
	require.Len(t, second.Layers, len(first.Layers))
	for i := range first.Layers {
		assert.Equal(t, first.Layers[i].Name, second.Layers[i].Name)
		assert.Equal(t, first.Layers[i].Rect(), second.Layers[i].Rect())
	}
	assert.Len(t, second.Corrections, len(first.Corrections))

	refreshed, err := r.Execute(ctx, draft(), nil, Options{Refresh: true})
	require.NoError(t, err)
	assert.False(t, refreshed.CacheInfo.CorrectHit)

	validated, err := r.Execute(ctx, draft(), nil, Options{Validate: true})
	require.NoError(t, err)
	assert.False(t, validated.CacheInfo.CorrectHit, "validate changes the cache key")
}

func TestExecuteRejectsInvalidLayer(t *testing.T) {
	ls := draft()
	ls[1].Width = -10
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), ls, nil, Options{})
	require.Error(t, err)
	assert.True(t, lferrors.Is(err, lferrors.ErrCodeInvalidLayer))
	assert.Contains(t, err.Error(), `"headline"`)
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil, nil, nil).Execute(ctx, draft(), nil, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteUsesAnalyzer(t *testing.T) {
	an := imageanalysis.Default()
	an.Success = true
	an.FocalPoint.Normalized = imageanalysis.Point{X: 0.8, Y: 0.3}
	stub := &stubAnalyzer{an: an}
	r := NewRunner(nil, nil, nil, WithAnalyzer(stub))

	res, err := r.Execute(context.Background(), draft(), nil, Options{ImageURL: "https://cdn.example.com/p.jpg", Height: 1350})
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 1080, stub.w)
	assert.Equal(t, 1350, stub.h)
	assert.True(t, res.Analysis.Success)
	assert.Equal(t, archetype.HeroLeft, res.Archetype)

	// A supplied analysis wins over the provider.
	given := imageanalysis.Default()
	_, err = r.Execute(context.Background(), draft(), &given, Options{ImageURL: "https://cdn.example.com/p.jpg"})
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)

	stub.err = context.DeadlineExceeded
	_, err = r.Execute(context.Background(), draft(), nil, Options{ImageURL: "https://cdn.example.com/p.jpg"})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestExecuteArchetypeHistory(t *testing.T) {
	mem, err := cache.NewMemoryCache(32)
	require.NoError(t, err)
	r := NewRunner(mem, nil, nil)
	ctx := context.Background()
	an := imageanalysis.Default()
	an.FocalPoint.Normalized = imageanalysis.Point{X: 0.8, Y: 0.3}

	first, err := r.Execute(ctx, draft(), &an, Options{Brand: "acme"})
	require.NoError(t, err)
	second, err := r.Execute(ctx, draft(), &an, Options{Brand: "acme"})
	require.NoError(t, err)

	assert.Equal(t, archetype.HeroLeft, first.Archetype)
	assert.Equal(t, archetype.BottomFocus, second.Archetype)
	assert.Equal(t, []string{archetype.BottomFocus, archetype.HeroLeft}, r.History().Recent(ctx, "acme"))

	// Explicit recent archetypes bypass the history.
	third, err := r.Execute(ctx, draft(), &an, Options{Brand: "acme", RecentArchetypes: []string{archetype.BottomFocus}})
	require.NoError(t, err)
	assert.Equal(t, archetype.HeroLeft, third.Archetype)
	assert.Equal(t, []string{archetype.BottomFocus, archetype.HeroLeft}, r.History().Recent(ctx, "acme"))
}

func TestExecuteRevisionDisabled(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), draft(), nil, Options{MaxRevisions: -1})
	require.NoError(t, err)
	assert.Zero(t, res.Revisions)
}

func TestReviseAppliesCriticFixes(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := Options{MaxRevisions: 2}
	require.NoError(t, opts.ValidateAndSetDefaults())

	ls := []layer.Layer{
		layer.New("background", layer.KindRectangle, 0, 0, 1080, 1080, layer.Properties{Fill: "#1E3A5F"}),
		layer.New("headline", layer.KindText, 108, 160, 700, 60, layer.Properties{Text: "Summer collection", FontSize: 20, Fill: "#FFFFFF"}),
		layer.New("cta_button", layer.KindTextbox, 430, 900, 220, 50, layer.Properties{Text: "Shop now", FontSize: 16, Fill: "#E4572E"}),
	}
	revised, crit, n := r.revise(context.Background(), ls, imageanalysis.Default(), opts)

	assert.Positive(t, n)
	assert.LessOrEqual(t, n, opts.MaxRevisions)
	assert.False(t, crit.HasIssue("Headline too small"))
	assert.False(t, crit.HasIssue("CTA button lacks elevation"))
	for _, l := range revised {
		switch l.Name {
		case "headline":
			assert.Equal(t, critic.DefaultConfig().PremiumHeadlineSize, l.Properties.FontSize)
		case "cta_button":
			assert.True(t, l.Properties.ShadowEnabled)
		}
	}
	assert.Equal(t, 20.0, ls[1].Properties.FontSize, "input must not be modified")
}

func TestCorrectAndCritique(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	corrected, err := r.Correct(ctx, draft(), imageanalysis.Default(), Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, corrected.Corrections)

	crit, err := r.Critique(ctx, corrected.Layers, imageanalysis.Default(), Options{})
	require.NoError(t, err)
	assert.Len(t, crit.Scores, 6)

	_, err = r.Critique(ctx, corrected.Layers, imageanalysis.Default(), Options{Width: -1})
	assert.True(t, lferrors.Is(err, lferrors.ErrCodeInvalidCanvas))
}

func TestBatch(t *testing.T) {
	bad := draft()
	bad[0].Kind = "sprite"
	jobs := []Job{
		{Name: "a.json", Layers: draft()},
		{Name: "b.json", Layers: bad},
		{Name: "c.json", Layers: draft(), Options: &Options{Width: 1080, Height: 1920}},
	}
	results, err := NewRunner(nil, nil, nil).Batch(context.Background(), jobs, Options{}, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, j := range jobs {
		assert.Equal(t, j.Name, results[i].Name)
	}
	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Result)
	assert.True(t, lferrors.Is(results[1].Err, lferrors.ErrCodeInvalidLayer))
	assert.Nil(t, results[1].Result)
	require.NoError(t, results[2].Err)
	for _, l := range results[2].Result.Layers {
		if l.IsText() {
			assert.LessOrEqual(t, l.Bottom(), 1920.0)
		}
	}
}

func TestBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil, nil, nil).Batch(ctx, []Job{{Name: "a", Layers: draft()}}, Options{}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
